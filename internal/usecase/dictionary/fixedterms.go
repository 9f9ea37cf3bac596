package dictionary

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

// maxFetches bounds concurrent chunk lookups during Load.
const maxFetches = 4

// FixedTerms caches precomputed matches keyed by concept id and term string.
// Entries never expire; call Load again after the underlying entries change.
type FixedTerms struct {
	mu    sync.RWMutex
	items map[string]match.Match
}

// NewFixedTerms creates an empty cache.
func NewFixedTerms() *FixedTerms {
	return &FixedTerms{items: make(map[string]match.Match)}
}

// Len returns the number of cached matches.
func (f *FixedTerms) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

// Reset drops every cached match.
func (f *FixedTerms) Reset() {
	f.mu.Lock()
	f.items = make(map[string]match.Match)
	f.mu.Unlock()
}

// Load fetches the entries named by idts and caches one match per idt,
// overwriting earlier matches for the same idt. Ids are requested in chunks
// of at most chunk, fetched concurrently. Unknown ids are skipped. Returns
// the number of cached matches added.
func (f *FixedTerms) Load(
	ctx context.Context, r EntryReader, idts []query.IDT, q query.EntryQuery, chunk int,
) (int, error) {
	if len(idts) == 0 {
		return 0, nil
	}
	if chunk <= 0 {
		chunk = query.MaxPerPage
	}

	chunks := slices.Collect(slices.Chunk(uniqueIDs(idts), chunk))
	fetched := make([][]entry.Entry, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFetches)
	for i, batch := range chunks {
		g.Go(func() error {
			es, err := fetchChunk(gctx, r, batch, q)
			if err != nil {
				return fmt.Errorf("fetch fixed-term entries: %w", err)
			}
			fetched[i] = es
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	found := make(map[string]entry.Entry)
	for _, es := range fetched {
		for _, e := range es {
			found[e.ID] = e
		}
	}

	loaded := make(map[string]match.Match, len(idts))
	for _, idt := range idts {
		e, ok := found[idt.ID]
		if !ok || len(e.Terms) == 0 {
			continue
		}
		pos := e.TermIndex(idt.Str)
		if pos < 0 {
			pos = 0
		}
		loaded[idt.Key()] = match.FromEntry(e, pos, match.FixedStart)
	}

	f.mu.Lock()
	for k, m := range loaded {
		f.items[k] = m
	}
	f.mu.Unlock()
	return len(loaded), nil
}

// fetchChunk requests ids page by page. A store may clamp perPage below
// len(ids), so it keeps paging until every id is seen or a page adds nothing.
func fetchChunk(ctx context.Context, r EntryReader, ids []string, q query.EntryQuery) ([]entry.Entry, error) {
	eq := q
	eq.Filter = query.EntryFilter{ID: query.Of(ids...)}
	eq.PerPage = len(ids)

	seen := make(map[string]struct{}, len(ids))
	var out []entry.Entry
	for page := 1; len(seen) < len(ids); page++ {
		eq.Page = page
		es, err := r.GetEntries(ctx, eq)
		if err != nil {
			return nil, err
		}
		added := 0
		for _, e := range es {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
			added++
		}
		if added == 0 {
			break
		}
	}
	return out, nil
}

// Matches returns the cached matches among q.IDTs whose string contains str,
// typed F (prefix) or G (infix) and sorted. An empty str matches all as F.
func (f *FixedTerms) Matches(str string, q query.MatchQuery) []match.Match {
	if len(q.IDTs) == 0 {
		return nil
	}
	lq := strings.ToLower(str)

	f.mu.RLock()
	var out []match.Match
	seen := make(map[string]struct{}, len(q.IDTs))
	for _, idt := range q.IDTs {
		key := idt.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cached, ok := f.items[key]
		if !ok {
			continue
		}
		typ, ok := fixedType(cached.Str, lq)
		if !ok {
			continue
		}
		m := cached.Clone()
		m.Type = typ
		out = append(out, m)
	}
	f.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b match.Match) int {
		return cmp.Or(
			cmp.Compare(a.Type.Rank(), b.Type.Rank()),
			entry.Compare(a.Str, b.Str),
			entry.Compare(a.DictID, b.DictID),
			query.CompareIDs(a.ID, b.ID),
		)
	})
	return match.Prune(out, q.Z)
}

func fixedType(s, lq string) (match.Type, bool) {
	t, ok := match.Classify(s, lq)
	if !ok {
		return "", false
	}
	if t == match.Start {
		return match.FixedStart, true
	}
	return match.FixedInfix, true
}

func uniqueIDs(idts []query.IDT) []string {
	seen := make(map[string]struct{}, len(idts))
	ids := make([]string, 0, len(idts))
	for _, t := range idts {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		ids = append(ids, t.ID)
	}
	return ids
}
