// Command termdex-cli queries a term dictionary loaded from a data file or
// served by a termdex server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/termdex"
	"github.com/kailas-cloud/termdex/internal/version"
)

const (
	flagLogLevel   = "log-level"
	flagData       = "data"
	flagRemote     = "remote"
	flagID         = "id"
	flagDictID     = "dict-id"
	flagName       = "name"
	flagSort       = "sort"
	flagSortDictID = "sort-dict-id"
	flagPage       = "page"
	flagPerPage    = "per-page"
	flagZ          = "z"
	flagNoZ        = "no-z"
	flagFixed      = "fixed"
	flagNoNumbers  = "no-numbers"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	pageFlags := []cli.Flag{
		&cli.IntFlag{Name: flagPage, Usage: "Page number, starting at 1"},
		&cli.IntFlag{Name: flagPerPage, Usage: "Items per page (default 20, max 100)"},
	}
	zFlags := []cli.Flag{
		&cli.StringSliceFlag{Name: flagZ, Usage: "Keep only these metadata keys"},
		&cli.BoolFlag{Name: flagNoZ, Usage: "Drop all metadata"},
	}

	return &cli.App{
		Name:    "termdex-cli",
		Usage:   "Query a term dictionary",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagLogLevel,
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    flagData,
				Aliases: []string{"d"},
				Usage:   "YAML or JSON data file to load into memory",
				EnvVars: []string{"TERMDEX_DATA"},
			},
			&cli.StringFlag{
				Name:    flagRemote,
				Aliases: []string{"r"},
				Usage:   "Base URL of a termdex server",
				EnvVars: []string{"TERMDEX_REMOTE"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "match",
				Usage:     "Find terms that start with or contain a string",
				ArgsUsage: "STRING",
				Action:    matchCommand,
				Flags: concat(pageFlags, zFlags, []cli.Flag{
					&cli.StringSliceFlag{Name: flagDictID, Usage: "Only match in these dictionaries"},
					&cli.StringSliceFlag{Name: flagSortDictID, Usage: "Rank these dictionaries first"},
					&cli.StringSliceFlag{Name: flagFixed, Usage: "Fixed term as ID or ID=STR"},
					&cli.BoolFlag{Name: flagNoNumbers, Usage: "Disable number matches"},
				}),
			},
			{
				Name:   "entries",
				Usage:  "List entries",
				Action: entriesCommand,
				Flags: concat(pageFlags, zFlags, []cli.Flag{
					&cli.StringSliceFlag{Name: flagID, Usage: "Only these entry ids"},
					&cli.StringSliceFlag{Name: flagDictID, Usage: "Only these dictionaries"},
					&cli.StringFlag{Name: flagSort, Usage: "Sort by dictID, id or str", Value: termdex.SortByDictID},
				}),
			},
			{
				Name:   "dictinfos",
				Usage:  "List dictionaries",
				Action: dictInfosCommand,
				Flags: concat(pageFlags, []cli.Flag{
					&cli.StringSliceFlag{Name: flagID, Usage: "Only these dictionary ids"},
					&cli.StringSliceFlag{Name: flagName, Usage: "Only these names"},
					&cli.StringFlag{Name: flagSort, Usage: "Sort by id or name", Value: termdex.SortByID},
				}),
			},
			{
				Name:   "refterms",
				Usage:  "List referring terms",
				Action: refTermsCommand,
				Flags:  pageFlags,
			},
			{
				Name:      "numexp",
				Usage:     "Print the exponential form of numbers",
				ArgsUsage: "NUMBER...",
				Action:    numExpCommand,
			},
		},
	}
}

func matchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("match takes exactly one STRING argument")
	}
	ctx := c.Context
	var opts []termdex.Option
	if c.Bool(flagNoNumbers) {
		opts = append(opts, termdex.WithoutNumberMatch())
	}
	dict, err := openDictionary(ctx, c, opts...)
	if err != nil {
		return err
	}
	defer dict.Close()

	q := termdex.MatchQuery{
		Filter:  termdex.MatchFilter{DictID: selection(c, flagDictID)},
		Sort:    termdex.MatchSort{DictID: selection(c, flagSortDictID)},
		Page:    c.Int(flagPage),
		PerPage: c.Int(flagPerPage),
		Z:       zspec(c),
		IDTs:    fixedTerms(c.StringSlice(flagFixed)),
	}
	if len(q.IDTs) > 0 {
		if err := dict.LoadFixedTerms(ctx, q.IDTs, q.Z); err != nil {
			return fmt.Errorf("load fixed terms: %w", err)
		}
	}
	ms, err := dict.GetMatchesForString(ctx, c.Args().First(), q)
	if err != nil {
		return err
	}
	return printJSON(c, ms)
}

func entriesCommand(c *cli.Context) error {
	dict, err := openDictionary(c.Context, c)
	if err != nil {
		return err
	}
	defer dict.Close()

	es, err := dict.GetEntries(c.Context, termdex.EntryQuery{
		Filter: termdex.EntryFilter{
			ID:     selection(c, flagID),
			DictID: selection(c, flagDictID),
		},
		Sort:    c.String(flagSort),
		Page:    c.Int(flagPage),
		PerPage: c.Int(flagPerPage),
		Z:       zspec(c),
	})
	if err != nil {
		return err
	}
	return printJSON(c, es)
}

func dictInfosCommand(c *cli.Context) error {
	dict, err := openDictionary(c.Context, c)
	if err != nil {
		return err
	}
	defer dict.Close()

	ds, err := dict.GetDictInfos(c.Context, termdex.DictInfoQuery{
		Filter: termdex.DictInfoFilter{
			ID:   selection(c, flagID),
			Name: selection(c, flagName),
		},
		Sort:    c.String(flagSort),
		Page:    c.Int(flagPage),
		PerPage: c.Int(flagPerPage),
	})
	if err != nil {
		return err
	}
	return printJSON(c, ds)
}

func refTermsCommand(c *cli.Context) error {
	dict, err := openDictionary(c.Context, c)
	if err != nil {
		return err
	}
	defer dict.Close()

	rs, err := dict.GetRefTerms(c.Context, termdex.RefTermQuery{
		Page:    c.Int(flagPage),
		PerPage: c.Int(flagPerPage),
	})
	if err != nil {
		return err
	}
	return printJSON(c, rs)
}

func numExpCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("numexp needs at least one NUMBER argument")
	}
	var bad []string
	for _, s := range c.Args().Slice() {
		exp, ok := termdex.ToExponential(s)
		if !ok {
			bad = append(bad, s)
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", s, exp)
	}
	if len(bad) > 0 {
		return fmt.Errorf("not a number: %s", strings.Join(bad, ", "))
	}
	return nil
}

// openDictionary connects to --remote or loads --data into memory.
func openDictionary(ctx context.Context, c *cli.Context, opts ...termdex.Option) (*termdex.Dictionary, error) {
	opts = append(opts, termdex.WithLogger(slog.Default()))
	remote, data := c.String(flagRemote), c.String(flagData)

	switch {
	case remote != "" && data != "":
		return nil, fmt.Errorf("--%s and --%s are mutually exclusive", flagRemote, flagData)
	case remote != "":
		return termdex.NewRemote(remote, opts...)
	case data != "":
		dict, err := termdex.New(ctx, opts...)
		if err != nil {
			return nil, err
		}
		if err := loadFile(ctx, dict, data); err != nil {
			dict.Close()
			return nil, err
		}
		slog.Debug("data file loaded", "path", data)
		return dict, nil
	default:
		return nil, fmt.Errorf("one of --%s or --%s is required", flagData, flagRemote)
	}
}

func loadFile(ctx context.Context, dict *termdex.Dictionary, path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()
	if err := dict.LoadData(ctx, f); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// selection maps an unset flag to an inactive filter and a set one to the
// listed values.
func selection(c *cli.Context, name string) termdex.Selection {
	if !c.IsSet(name) {
		return termdex.Any()
	}
	return termdex.Of(c.StringSlice(name)...)
}

func zspec(c *cli.Context) termdex.ZSpec {
	switch {
	case c.Bool(flagNoZ):
		return termdex.ZNone()
	case c.IsSet(flagZ):
		return termdex.ZKeys(c.StringSlice(flagZ)...)
	default:
		return termdex.ZAll()
	}
}

// fixedTerms parses "ID" and "ID=STR" values.
func fixedTerms(vals []string) []termdex.IDT {
	var out []termdex.IDT
	for _, v := range vals {
		id, str, _ := strings.Cut(v, "=")
		out = append(out, termdex.IDT{ID: id, Str: str})
	}
	return out
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String(flagLogLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.String(flagLogLevel))
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level})))
	return nil
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
