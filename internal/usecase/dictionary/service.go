package dictionary

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

// Service is the match engine: it combines a store's normal matches with
// fixed-term and number matches.
type Service struct {
	store   Store
	fixed   *FixedTerms
	numbers NumberMatchConfig
	pager   query.Pager
	chunk   int
	logger  *zap.Logger
	rec     Recorder

	loadMu  sync.Mutex
	loadErr error
}

// New creates a match engine over store with default number matching
// and 20/100 pagination.
func New(store Store) *Service {
	return &Service{
		store:   store,
		fixed:   NewFixedTerms(),
		numbers: DefaultNumberMatchConfig(),
		pager:   query.DefaultPager(),
		chunk:   query.MaxPerPage,
		logger:  zap.NewNop(),
	}
}

// WithNumberMatch sets the number-match configuration.
func (s *Service) WithNumberMatch(cfg NumberMatchConfig) *Service {
	s.numbers = cfg
	return s
}

// WithPagination sets the default and maximum page sizes. The maximum is also
// the chunk size for fixed-term fetches.
func (s *Service) WithPagination(defaultPerPage, maxPerPage int) *Service {
	s.pager = query.Pager{Default: defaultPerPage, Max: maxPerPage}
	if maxPerPage > 0 {
		s.chunk = maxPerPage
	}
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r Recorder) *Service {
	s.rec = r
	return s
}

// Pager returns the engine's pagination limits.
func (s *Service) Pager() query.Pager { return s.pager }

// FixedTerms returns the engine's fixed-term cache.
func (s *Service) FixedTerms() *FixedTerms { return s.fixed }

// GetMatchesForString returns one page of matches for str. Store errors
// abort the query with no partial result.
func (s *Service) GetMatchesForString(ctx context.Context, str string, q query.MatchQuery) ([]match.Match, error) {
	start := time.Now()
	normal, err := s.store.FindMatches(ctx, str, q)
	if err != nil {
		s.storeError("find_matches")
		return nil, fmt.Errorf("find matches: %w", err)
	}
	out := s.AddExtraMatches(str, normal, q)
	if s.rec != nil {
		s.rec.ObserveMatches(out, time.Since(start))
	}
	return out, nil
}

// AddExtraMatches merges fixed-term and number matches into the normal
// matches of page 1. Any backend's matches can be passed in.
func (s *Service) AddExtraMatches(str string, normal []match.Match, q query.MatchQuery) []match.Match {
	fixed := s.fixed.Matches(str, q)
	var number *match.Match
	if n, ok := s.numbers.Match(str); ok {
		number = &n
	}
	return mergeExtras(s.pager, normal, fixed, number, q)
}

// LoadFixedTerms preloads the fixed terms named by idts. q supplies the
// metadata pruning applied at load time; its filter and paging are ignored.
func (s *Service) LoadFixedTerms(ctx context.Context, idts []query.IDT, q query.EntryQuery) error {
	n, err := s.fixed.Load(ctx, s.store, idts, q, s.chunk)
	s.loadMu.Lock()
	s.loadErr = err
	s.loadMu.Unlock()
	if err != nil {
		s.storeError("get_entries")
		return err
	}
	s.logger.Debug("fixed terms loaded",
		zap.Int("requested", len(idts)),
		zap.Int("loaded", n),
		zap.Int("cached", s.fixed.Len()),
	)
	if s.rec != nil {
		s.rec.ObserveFixedTerms(s.fixed.Len())
	}
	return nil
}

// ResetFixedTerms empties the fixed-term cache and clears the last load error.
func (s *Service) ResetFixedTerms() {
	s.fixed.Reset()
	s.loadMu.Lock()
	s.loadErr = nil
	s.loadMu.Unlock()
	s.logger.Debug("fixed terms reset")
	if s.rec != nil {
		s.rec.ObserveFixedTerms(0)
	}
}

// HealthCheck reports the outcome of the last fixed-term load.
func (s *Service) HealthCheck(_ context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if s.loadErr != nil {
		return fmt.Errorf("fixed terms: %w", s.loadErr)
	}
	return nil
}

// GetEntries lists entries from the store.
func (s *Service) GetEntries(ctx context.Context, q query.EntryQuery) ([]entry.Entry, error) {
	es, err := s.store.GetEntries(ctx, q)
	if err != nil {
		s.storeError("get_entries")
		return nil, fmt.Errorf("get entries: %w", err)
	}
	return es, nil
}

// GetDictInfos lists dictionaries from the store.
func (s *Service) GetDictInfos(ctx context.Context, q query.DictInfoQuery) ([]entry.DictInfo, error) {
	ds, err := s.store.GetDictInfos(ctx, q)
	if err != nil {
		s.storeError("get_dict_infos")
		return nil, fmt.Errorf("get dict infos: %w", err)
	}
	return ds, nil
}

// GetRefTerms lists referring terms from the store.
func (s *Service) GetRefTerms(ctx context.Context, q query.RefTermQuery) ([]string, error) {
	rs, err := s.store.GetRefTerms(ctx, q)
	if err != nil {
		s.storeError("get_ref_terms")
		return nil, fmt.Errorf("get ref terms: %w", err)
	}
	return rs, nil
}

// FindMatches returns only the store's normal matches, without extras.
func (s *Service) FindMatches(ctx context.Context, str string, q query.MatchQuery) ([]match.Match, error) {
	ms, err := s.store.FindMatches(ctx, str, q)
	if err != nil {
		s.storeError("find_matches")
		return nil, fmt.Errorf("find matches: %w", err)
	}
	return ms, nil
}

func (s *Service) storeError(op string) {
	if s.rec != nil {
		s.rec.ObserveStoreError(op)
	}
}
