// Package memory is the in-process dictionary backend: dictionaries,
// entries and referring terms held in memory behind a RWMutex.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

// Store implements usecase/dictionary.Store and usecase/dictionary.Writer.
type Store struct {
	mu sync.RWMutex

	dicts   map[string]entry.DictInfo
	entries map[string]entry.Entry
	refs    *refTerms

	// Sorted views, rebuilt after every write.
	dictList  []entry.DictInfo
	entryList []entry.Entry

	pager        query.Pager
	policy       entry.IDPolicy
	dictPolicies map[string]entry.IDPolicy
	logger       *zap.Logger
}

// New creates an empty store with 20/100 pagination and padded numeric ids.
func New() *Store {
	return &Store{
		dicts:        make(map[string]entry.DictInfo),
		entries:      make(map[string]entry.Entry),
		refs:         newRefTerms(),
		pager:        query.DefaultPager(),
		policy:       entry.DefaultIDPolicy(),
		dictPolicies: make(map[string]entry.IDPolicy),
		logger:       zap.NewNop(),
	}
}

// WithPagination sets the default and maximum page sizes.
func (s *Store) WithPagination(defaultPerPage, maxPerPage int) *Store {
	s.pager = query.Pager{Default: defaultPerPage, Max: maxPerPage}
	return s
}

// WithIDPolicy sets the policy that turns numeric ids into string ids.
func (s *Store) WithIDPolicy(p entry.IDPolicy) *Store {
	if p != nil {
		s.policy = p
	}
	return s
}

// WithDictIDPolicy overrides the id policy for one dictionary.
func (s *Store) WithDictIDPolicy(dictID string, p entry.IDPolicy) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		delete(s.dictPolicies, dictID)
	} else {
		s.dictPolicies[dictID] = p
	}
	return s
}

// WithLogger sets the logger.
func (s *Store) WithLogger(l *zap.Logger) *Store {
	if l != nil {
		s.logger = l
	}
	return s
}

// GetDictInfos lists dictionaries.
func (s *Store) GetDictInfos(_ context.Context, q query.DictInfoQuery) ([]entry.DictInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(query.SelectDictInfos(s.pager, s.dictList, q)), nil
}

// GetEntries lists entries. Results are deep copies.
func (s *Store) GetEntries(_ context.Context, q query.EntryQuery) ([]entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(query.SelectEntries(s.pager, s.entryList, q)), nil
}

// GetRefTerms lists referring terms.
func (s *Store) GetRefTerms(_ context.Context, q query.RefTermQuery) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(query.SelectRefTerms(s.pager, s.refs.list(), q)), nil
}

// FindMatches returns one page of substring matches. A referring term equal
// to str (ignoring case) is put in front of every page.
func (s *Store) FindMatches(_ context.Context, str string, q query.MatchQuery) ([]match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ms := match.Substring(s.pager, s.entryList, str, q)
	if str == "" {
		return ms, nil
	}
	if ref, ok := s.refs.resolve(str); ok {
		ms = append([]match.Match{match.RefTerm(ref)}, ms...)
	}
	return ms, nil
}

// Len returns the number of dictionaries, entries and referring terms.
func (s *Store) Len() (dicts, entries, refTerms int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dicts), len(s.entries), s.refs.count()
}

func (s *Store) policyFor(dictID string) entry.IDPolicy {
	if p, ok := s.dictPolicies[dictID]; ok {
		return p
	}
	return s.policy
}

// reindex rebuilds the sorted views. Callers hold the write lock.
func (s *Store) reindex() {
	s.dictList = s.dictList[:0]
	for _, d := range s.dicts {
		s.dictList = append(s.dictList, d)
	}
	slices.SortFunc(s.dictList, func(a, b entry.DictInfo) int {
		return entry.Compare(a.ID, b.ID)
	})

	s.entryList = s.entryList[:0]
	for _, e := range s.entries {
		s.entryList = append(s.entryList, e)
	}
	slices.SortFunc(s.entryList, func(a, b entry.Entry) int {
		return cmp.Or(entry.Compare(a.DictID, b.DictID), entry.Compare(a.ID, b.ID))
	})
}

func (s *Store) hasEntriesIn(dictID string) bool {
	for _, e := range s.entries {
		if e.DictID == dictID {
			return true
		}
	}
	return false
}

func cloneEntries(es []entry.Entry) []entry.Entry {
	out := make([]entry.Entry, len(es))
	for i, e := range es {
		out[i] = e.Clone()
	}
	return out
}
