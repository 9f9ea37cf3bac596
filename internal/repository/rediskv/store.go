// Package rediskv keeps dictionaries, entries and referring terms in Redis
// (or Valkey) as msgpack values and sets. Queries load the relevant data
// and run the same selection and match code as the in-memory store.
package rediskv

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/termdex/internal/db"
	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

// kv is the consumer interface for the Redis backend (ISP).
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) (int64, error)
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Store implements usecase/dictionary.Store and usecase/dictionary.Writer
// on top of a key-value store.
type Store struct {
	kv   kv
	keys keys

	// Serializes writes from this process; the read-check-write sequences
	// are not atomic across processes.
	writeMu sync.Mutex

	pager        query.Pager
	policy       entry.IDPolicy
	dictPolicies map[string]entry.IDPolicy
	logger       *zap.Logger
}

// New creates a store using keys under prefix.
func New(s kv, prefix string) *Store {
	return &Store{
		kv:           s,
		keys:         keys{prefix: prefix},
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
	s.dictPolicies[dictID] = p
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
func (s *Store) GetDictInfos(ctx context.Context, q query.DictInfoQuery) ([]entry.DictInfo, error) {
	ids, err := s.kv.SMembers(ctx, s.keys.dicts())
	if err != nil {
		return nil, fmt.Errorf("list dictionaries: %w", err)
	}
	if q.Filter.ID.Active() {
		ids = slices.DeleteFunc(ids, func(id string) bool { return !q.Filter.ID.Contains(id) })
	}
	raws, err := s.kv.MGet(ctx, s.keys.dictKeys(ids))
	if err != nil {
		return nil, fmt.Errorf("load dictionaries: %w", err)
	}
	ds := make([]entry.DictInfo, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		d, err := decodeDictInfo(raw)
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return query.SelectDictInfos(s.pager, ds, q), nil
}

// GetEntries lists entries.
func (s *Store) GetEntries(ctx context.Context, q query.EntryQuery) ([]entry.Entry, error) {
	es, err := s.loadEntries(ctx, q.Filter.ID, q.Filter.DictID)
	if err != nil {
		return nil, err
	}
	return query.SelectEntries(s.pager, es, q), nil
}

// GetRefTerms lists referring terms.
func (s *Store) GetRefTerms(ctx context.Context, q query.RefTermQuery) ([]string, error) {
	rs, err := s.kv.SMembers(ctx, s.keys.refTerms())
	if err != nil {
		return nil, fmt.Errorf("list refTerms: %w", err)
	}
	return query.SelectRefTerms(s.pager, rs, q), nil
}

// FindMatches returns one page of substring matches, with an exactly
// matching referring term in front of every page.
func (s *Store) FindMatches(ctx context.Context, str string, q query.MatchQuery) ([]match.Match, error) {
	var ms []match.Match
	if str != "" {
		es, err := s.loadEntries(ctx, query.Any(), q.Filter.DictID)
		if err != nil {
			return nil, err
		}
		slices.SortFunc(es, func(a, b entry.Entry) int {
			return cmp.Or(entry.Compare(a.DictID, b.DictID), entry.Compare(a.ID, b.ID))
		})
		ms = match.Substring(s.pager, es, str, q)
	}
	if str != "" {
		rs, err := s.kv.SMembers(ctx, s.keys.refTerms())
		if err != nil {
			return nil, fmt.Errorf("list refTerms: %w", err)
		}
		slices.Sort(rs)
		if r, ok := match.ResolveRefTerm(rs, str); ok {
			ms = append([]match.Match{r}, ms...)
		}
	}
	return ms, nil
}

// loadEntries fetches the entries admitted by the id and dictID selections
// with as few round-trips as the selections allow.
func (s *Store) loadEntries(ctx context.Context, ids, dictIDs query.Selection) ([]entry.Entry, error) {
	var want []string
	switch {
	case ids.Active():
		want = slices.Clone(ids.Values())
	case dictIDs.Active():
		for _, d := range dictIDs.Values() {
			members, err := s.kv.SMembers(ctx, s.keys.dictEntries(d))
			if err != nil {
				return nil, fmt.Errorf("list entries of %s: %w", d, err)
			}
			want = append(want, members...)
		}
	default:
		all, err := s.kv.SMembers(ctx, s.keys.entries())
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		want = all
	}
	slices.Sort(want)
	want = slices.Compact(want)

	raws, err := s.kv.MGet(ctx, s.keys.entryKeys(want))
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	es := make([]entry.Entry, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		e, err := decodeEntry(raw)
		if err != nil {
			return nil, err
		}
		if dictIDs.Admits(e.DictID) {
			es = append(es, e)
		}
	}
	return es, nil
}

func (s *Store) getEntry(ctx context.Context, id string) (entry.Entry, bool, error) {
	raw, err := s.kv.Get(ctx, s.keys.entry(id))
	if errors.Is(err, db.ErrKeyNotFound) {
		return entry.Entry{}, false, nil
	}
	if err != nil {
		return entry.Entry{}, false, fmt.Errorf("get entry %s: %w", id, err)
	}
	e, err := decodeEntry(raw)
	if err != nil {
		return entry.Entry{}, false, err
	}
	return e, true, nil
}

func (s *Store) getDictInfo(ctx context.Context, id string) (entry.DictInfo, bool, error) {
	raw, err := s.kv.Get(ctx, s.keys.dict(id))
	if errors.Is(err, db.ErrKeyNotFound) {
		return entry.DictInfo{}, false, nil
	}
	if err != nil {
		return entry.DictInfo{}, false, fmt.Errorf("get dictInfo %s: %w", id, err)
	}
	d, err := decodeDictInfo(raw)
	if err != nil {
		return entry.DictInfo{}, false, err
	}
	return d, true, nil
}

func (s *Store) policyFor(dictID string) entry.IDPolicy {
	if p, ok := s.dictPolicies[dictID]; ok && p != nil {
		return p
	}
	return s.policy
}
