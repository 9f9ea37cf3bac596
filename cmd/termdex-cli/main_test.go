package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/termdex"
	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/repository/memory"
	chiTransport "github.com/kailas-cloud/termdex/internal/transport/chi"
	dictionaryuc "github.com/kailas-cloud/termdex/internal/usecase/dictionary"
	healthuc "github.com/kailas-cloud/termdex/internal/usecase/health"
)

const seedData = `
dictionaries:
  - id: A
    name: Zoology
    entries:
      - {id: 1, terms: [in]}
      - {id: 2, terms: [inn]}
  - id: C
    name: Chemistry
    entries:
      - {id: e12, terms: [in, Iz, hi], z: {a: 1, b: 2}}
refTerms: [it, that]
`

func writeData(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(path, []byte(seedData), 0o600); err != nil {
		t.Fatalf("write data: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"termdex-cli"}, args...))
	return out.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	return v
}

func matchSummary(ms []termdex.Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m.Type) + ":" + m.ID + ":" + m.Str
	}
	return out
}

func TestMatchCommand(t *testing.T) {
	data := writeData(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"plain", []string{"match", "i"}, []string{"S:A:0001:in", "S:e12:in", "S:A:0002:inn", "S:e12:Iz", "T:e12:hi"}},
		{"dict filter", []string{"match", "--dict-id", "C", "i"}, []string{"S:e12:in", "S:e12:Iz", "T:e12:hi"}},
		{"sort dict", []string{"match", "--sort-dict-id", "C", "--per-page", "2", "i"}, []string{"S:e12:in", "S:e12:Iz"}},
		{"fixed", []string{"match", "--fixed", "e12=hi", "--per-page", "1", "h"}, []string{"F:e12:hi"}},
		{"number", []string{"match", "3.0"}, []string{"N:00:3e+0:3.0"}},
		{"numbers off", []string{"match", "--no-numbers", "3.0"}, []string{}},
		{"referring", []string{"match", "IT"}, []string{"R::it"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"--data", data}, tt.args...)...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			got := matchSummary(decode[[]termdex.Match](t, out))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntriesCommand(t *testing.T) {
	data := writeData(t)

	out, err := run(t, "--data", data, "entries", "--dict-id", "C", "--z", "b")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	es := decode[[]termdex.Entry](t, out)
	if len(es) != 1 || es[0].ID != "e12" {
		t.Fatalf("entries = %+v", es)
	}
	if !reflect.DeepEqual(es[0].Z, map[string]any{"b": float64(2)}) {
		t.Errorf("z = %v, want only b", es[0].Z)
	}

	out, err = run(t, "--data", data, "entries", "--no-z", "--sort", "id", "--per-page", "1", "--page", "3")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	es = decode[[]termdex.Entry](t, out)
	if len(es) != 1 || es[0].ID != "e12" || es[0].Z != nil {
		t.Errorf("entries = %+v", es)
	}
}

func TestDictInfosAndRefTermsCommands(t *testing.T) {
	data := writeData(t)

	out, err := run(t, "--data", data, "dictinfos", "--sort", "name")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	ds := decode[[]termdex.DictInfo](t, out)
	want := []termdex.DictInfo{{ID: "C", Name: "Chemistry"}, {ID: "A", Name: "Zoology"}}
	if !reflect.DeepEqual(ds, want) {
		t.Errorf("dictinfos = %+v, want %+v", ds, want)
	}

	out, err = run(t, "--data", data, "refterms")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rs := decode[[]string](t, out); !reflect.DeepEqual(rs, []string{"it", "that"}) {
		t.Errorf("refterms = %v", rs)
	}
}

func TestNumExpCommand(t *testing.T) {
	out, err := run(t, "numexp", "12", "0.0012")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "12\t1.2e+1\n0.0012\t1.2e-3\n" {
		t.Errorf("output = %q", out)
	}

	out, err = run(t, "numexp", "5", "abc")
	if err == nil || !strings.Contains(err.Error(), "abc") {
		t.Errorf("expected error naming abc, got %v", err)
	}
	if out != "5\t5e+0\n" {
		t.Errorf("output = %q", out)
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, "--version")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "dev (commit unknown") {
		t.Errorf("output = %q", out)
	}
}

func TestSourceErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no source", []string{"entries"}, "required"},
		{"both sources", []string{"--data", "x.yaml", "--remote", "http://localhost:1", "entries"}, "mutually exclusive"},
		{"missing file", []string{"--data", filepath.Join(t.TempDir(), "nope.yaml"), "entries"}, "open data file"},
		{"bad remote", []string{"--remote", "ftp://x", "entries"}, "scheme"},
		{"bad log level", []string{"--log-level", "loud", "numexp", "1"}, "invalid log level"},
		{"match arity", []string{"--data", "x.yaml", "match"}, "exactly one"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRemoteSource(t *testing.T) {
	local := memory.New()
	data, err := entry.DecodeData(strings.NewReader(seedData))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := local.AddDictionaryData(context.Background(), data); err != nil {
		t.Fatalf("seed: %v", err)
	}
	dict := dictionaryuc.New(local)
	ts := httptest.NewServer(chiTransport.NewServer(dict, nil, healthuc.New(nil, dict), zap.NewNop()).Handler())
	defer ts.Close()

	out, err := run(t, "--remote", ts.URL, "match", "--fixed", "A:0002", "in")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got := matchSummary(decode[[]termdex.Match](t, out))
	want := []string{"F:A:0002:inn", "S:A:0001:in", "S:e12:in"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("matches = %v, want %v", got, want)
	}
}
