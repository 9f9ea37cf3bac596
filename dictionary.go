package termdex

import (
	"context"
	"fmt"
	"io"
	"time"

	dbRedis "github.com/kailas-cloud/termdex/internal/db/redis"
	"github.com/kailas-cloud/termdex/internal/domain"
	"github.com/kailas-cloud/termdex/internal/domain/batch"
	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
	"github.com/kailas-cloud/termdex/internal/repository/memory"
	"github.com/kailas-cloud/termdex/internal/repository/rediskv"
	"github.com/kailas-cloud/termdex/internal/repository/remote"
	dictionaryuc "github.com/kailas-cloud/termdex/internal/usecase/dictionary"
	healthuc "github.com/kailas-cloud/termdex/internal/usecase/health"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "termdex:"
)

// Internal interfaces for substitution in tests.
type engine interface {
	GetMatchesForString(ctx context.Context, str string, q query.MatchQuery) ([]match.Match, error)
	LoadFixedTerms(ctx context.Context, idts []query.IDT, q query.EntryQuery) error
	ResetFixedTerms()
	GetEntries(ctx context.Context, q query.EntryQuery) ([]entry.Entry, error)
	GetDictInfos(ctx context.Context, q query.DictInfoQuery) ([]entry.DictInfo, error)
	GetRefTerms(ctx context.Context, q query.RefTermQuery) ([]string, error)
}

// Dictionary is the termdex entry point. It is safe for concurrent use.
type Dictionary struct {
	engine    engine
	writer    dictionaryuc.Writer // nil when read-only
	healthSvc healthUseCase
	closeFn   func()
	obs       *observer
}

// New creates a writable dictionary. It lives in memory unless WithRedis or
// WithValkey is given, in which case ctx bounds the readiness check.
func New(ctx context.Context, opts ...Option) (*Dictionary, error) {
	cfg := newConfig(opts)
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	switch cfg.driver {
	case "":
		s := memory.New().
			WithPagination(cfg.defaultPerPage, cfg.maxPerPage).
			WithIDPolicy(cfg.idPolicy)
		for dictID, p := range cfg.dictPolicies {
			s.WithDictIDPolicy(dictID, p)
		}
		return wire(cfg, s, s, nil, func() {}, obs), nil

	case "valkey", "redis":
		kv, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("termdex: create %s store: %w", cfg.driver, err)
		}
		if err := kv.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			kv.Close()
			return nil, fmt.Errorf("termdex: database not ready: %w", err)
		}
		s := rediskv.New(kv, cfg.keyPrefix).
			WithPagination(cfg.defaultPerPage, cfg.maxPerPage).
			WithIDPolicy(cfg.idPolicy)
		for dictID, p := range cfg.dictPolicies {
			s.WithDictIDPolicy(dictID, p)
		}
		return wire(cfg, s, s, kv, kv.Close, obs), nil

	default:
		return nil, fmt.Errorf("termdex: unknown driver %q", cfg.driver)
	}
}

// NewRemote creates a read-only dictionary served by a termdex server at
// baseURL. Writes fail with ErrReadOnly.
func NewRemote(baseURL string, opts ...Option) (*Dictionary, error) {
	cfg := newConfig(opts)
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	s, err := remote.New(baseURL)
	if err != nil {
		return nil, fmt.Errorf("termdex: %w", err)
	}
	s.WithHTTPClient(cfg.httpClient).WithTimeout(cfg.timeout)
	return wire(cfg, s, nil, s, func() {}, obs), nil
}

func newConfig(opts []Option) *dictConfig {
	cfg := &dictConfig{
		keyPrefix:       defaultKeyPrefix,
		numberDictID:    dictionaryuc.DefaultNumberMatchConfig().DictID,
		conceptIDPrefix: dictionaryuc.DefaultNumberMatchConfig().ConceptIDPrefix,
		idPolicy:        entry.DefaultIDPolicy(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	return cfg
}

func wire(
	cfg *dictConfig,
	store dictionaryuc.Store,
	w dictionaryuc.Writer,
	pinger healthuc.BackendPinger,
	closeFn func(),
	obs *observer,
) *Dictionary {
	svc := dictionaryuc.New(store).
		WithNumberMatch(dictionaryuc.NumberMatchConfig{
			Disabled:        cfg.numbersOff,
			DictID:          cfg.numberDictID,
			ConceptIDPrefix: cfg.conceptIDPrefix,
		}).
		WithPagination(cfg.defaultPerPage, cfg.maxPerPage)
	return &Dictionary{
		engine:    svc,
		writer:    w,
		healthSvc: healthuc.New(pinger, svc),
		closeFn:   closeFn,
		obs:       obs,
	}
}

// Close releases the backend connection, if any.
func (d *Dictionary) Close() {
	if d.closeFn != nil {
		d.closeFn()
	}
}

// ReadOnly reports whether writes are rejected.
func (d *Dictionary) ReadOnly() bool { return d.writer == nil }

// GetMatchesForString returns one page of matches for str: a referring-term
// match heads every page, number and fixed-term matches join it on page 1,
// then come terms that start with str and terms that contain it.
func (d *Dictionary) GetMatchesForString(ctx context.Context, str string, q MatchQuery) (ms []Match, err error) {
	start := time.Now()
	defer func() { d.obs.observe(opGetMatches, start, err) }()
	return d.engine.GetMatchesForString(ctx, str, q)
}

// LoadFixedTerms adds the terms named by idts to the fixed-term cache,
// overwriting cached terms for the same idt. Terms loaded earlier stay until
// ResetFixedTerms. z prunes their metadata once, at load time.
func (d *Dictionary) LoadFixedTerms(ctx context.Context, idts []IDT, z ZSpec) (err error) {
	start := time.Now()
	defer func() { d.obs.observe(opLoadFixedTerms, start, err) }()
	return d.engine.LoadFixedTerms(ctx, idts, query.EntryQuery{Z: z})
}

// ResetFixedTerms empties the fixed-term cache.
func (d *Dictionary) ResetFixedTerms() {
	d.engine.ResetFixedTerms()
}

// GetEntries lists one page of entries.
func (d *Dictionary) GetEntries(ctx context.Context, q EntryQuery) (es []Entry, err error) {
	start := time.Now()
	defer func() { d.obs.observe(opGetEntries, start, err) }()
	return d.engine.GetEntries(ctx, q)
}

// GetDictInfos lists one page of dictionaries.
func (d *Dictionary) GetDictInfos(ctx context.Context, q DictInfoQuery) (ds []DictInfo, err error) {
	start := time.Now()
	defer func() { d.obs.observe(opGetDictInfos, start, err) }()
	return d.engine.GetDictInfos(ctx, q)
}

// GetRefTerms lists one page of referring terms.
func (d *Dictionary) GetRefTerms(ctx context.Context, q RefTermQuery) (rs []string, err error) {
	start := time.Now()
	defer func() { d.obs.observe(opGetRefTerms, start, err) }()
	return d.engine.GetRefTerms(ctx, q)
}

// AddDictInfos adds dictionaries. Each item reports its own outcome; the
// error is only set when the dictionary is read-only.
func (d *Dictionary) AddDictInfos(ctx context.Context, ds ...DictInfo) ([]BatchResult, error) {
	return write(ctx, d, opAddDictInfos, ds, dictionaryuc.Writer.AddDictInfos)
}

// UpdateDictInfos renames dictionaries.
func (d *Dictionary) UpdateDictInfos(ctx context.Context, ds ...DictInfo) ([]BatchResult, error) {
	return write(ctx, d, opUpdateDictInfos, ds, dictionaryuc.Writer.UpdateDictInfos)
}

// DeleteDictInfos removes dictionaries that own no entries.
func (d *Dictionary) DeleteDictInfos(ctx context.Context, ids ...string) ([]BatchResult, error) {
	return write(ctx, d, opDeleteDictInfos, ids, dictionaryuc.Writer.DeleteDictInfos)
}

// AddEntries adds entries. Numeric ids are resolved by the IDPolicy.
func (d *Dictionary) AddEntries(ctx context.Context, es ...Input) ([]BatchResult, error) {
	return write(ctx, d, opAddEntries, es, dictionaryuc.Writer.AddEntries)
}

// UpdateEntries applies partial changes to entries.
func (d *Dictionary) UpdateEntries(ctx context.Context, us ...Update) ([]BatchResult, error) {
	return write(ctx, d, opUpdateEntries, us, dictionaryuc.Writer.UpdateEntries)
}

// DeleteEntries removes entries by id.
func (d *Dictionary) DeleteEntries(ctx context.Context, ids ...string) ([]BatchResult, error) {
	return write(ctx, d, opDeleteEntries, ids, dictionaryuc.Writer.DeleteEntries)
}

// AddRefTerms adds referring terms.
func (d *Dictionary) AddRefTerms(ctx context.Context, terms ...string) ([]BatchResult, error) {
	return write(ctx, d, opAddRefTerms, terms, dictionaryuc.Writer.AddRefTerms)
}

// DeleteRefTerms removes referring terms.
func (d *Dictionary) DeleteRefTerms(ctx context.Context, terms ...string) ([]BatchResult, error) {
	return write(ctx, d, opDeleteRefTerms, terms, dictionaryuc.Writer.DeleteRefTerms)
}

// AddDictionaryData loads dictionaries with their entries, then referring
// terms. Existing items are updated. Invalid items are reported together in
// the returned error while the rest still load.
func (d *Dictionary) AddDictionaryData(ctx context.Context, data Data) (err error) {
	start := time.Now()
	defer func() { d.obs.observe(opAddData, start, err) }()
	if d.writer == nil {
		return domain.ErrReadOnly
	}
	return d.writer.AddDictionaryData(ctx, data)
}

// LoadData decodes a YAML or JSON data document and adds it.
func (d *Dictionary) LoadData(ctx context.Context, r io.Reader) error {
	data, err := entry.DecodeData(r)
	if err != nil {
		return err
	}
	return d.AddDictionaryData(ctx, data)
}

func write[T any](
	ctx context.Context,
	d *Dictionary,
	op string,
	items []T,
	fn func(dictionaryuc.Writer, context.Context, []T) []batch.Result,
) ([]BatchResult, error) {
	start := time.Now()
	if d.writer == nil {
		d.obs.observe(op, start, domain.ErrReadOnly)
		return nil, domain.ErrReadOnly
	}
	rs := fn(d.writer, ctx, items)
	d.obs.observe(op, start, batch.Join(rs))
	return rs, nil
}
