package dictionary

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

func TestFixedTermsLoad_EmptyIDTsSkipsLookup(t *testing.T) {
	store := newFakeStore()
	f := NewFixedTerms()
	n, err := f.Load(context.Background(), store, nil, query.EntryQuery{}, 100)
	if err != nil || n != 0 {
		t.Fatalf("Load = (%d, %v)", n, err)
	}
	if len(store.getEntriesCalls) != 0 {
		t.Errorf("expected no lookup, got %d", len(store.getEntriesCalls))
	}
}

func TestFixedTermsLoad_BatchedLookup(t *testing.T) {
	store := newFakeStore()
	f := NewFixedTerms()
	n, err := f.Load(context.Background(), store, sampleIDTs, query.EntryQuery{Page: 7, PerPage: 1}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || f.Len() != 2 {
		t.Errorf("loaded %d, cached %d, want 2", n, f.Len())
	}
	// Two ids are unknown, so a second page confirms nothing was clamped away.
	if len(store.getEntriesCalls) != 2 {
		t.Fatalf("expected 2 lookups, got %d", len(store.getEntriesCalls))
	}
	for i, q := range store.getEntriesCalls {
		if q.Page != i+1 || q.PerPage != 4 {
			t.Errorf("lookup %d: page=%d perPage=%d, want %d and 4", i, q.Page, q.PerPage, i+1)
		}
		if !reflect.DeepEqual(q.Filter.ID.Values(), []string{"B:02", "e12", "xx", "yy"}) {
			t.Errorf("lookup %d: ids = %v", i, q.Filter.ID.Values())
		}
	}
}

func TestFixedTermsLoad_PagesPastStoreLimit(t *testing.T) {
	store := newFakeStore()
	store.pager = query.Pager{Default: 1, Max: 1}
	idts := []query.IDT{{ID: "A:01"}, {ID: "A:02"}, {ID: "B:02"}, {ID: "e12"}}
	f := NewFixedTerms()
	n, err := f.Load(context.Background(), store, idts, query.EntryQuery{}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 || f.Len() != 4 {
		t.Errorf("loaded %d, cached %d, want 4", n, f.Len())
	}
	if len(store.getEntriesCalls) != 4 {
		t.Errorf("lookups = %d, want 4", len(store.getEntriesCalls))
	}
}

func TestFixedTermsLoad_ChunksLargeRequests(t *testing.T) {
	store := newFakeStore()
	idts := []query.IDT{{ID: "A:01"}, {ID: "A:02"}, {ID: "B:02"}, {ID: "e12"}, {ID: "nope"}}
	n, err := NewFixedTerms().Load(context.Background(), store, idts, query.EntryQuery{}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("loaded %d, want 4", n)
	}
	if len(store.getEntriesCalls) != 3 {
		t.Errorf("lookups = %d, want 3", len(store.getEntriesCalls))
	}
}

func TestFixedTermsLoad_TermPosition(t *testing.T) {
	f := NewFixedTerms()
	idts := []query.IDT{{ID: "e12", Str: "hi"}, {ID: "e12", Str: "absent"}, {ID: "e12"}}
	if _, err := f.Load(context.Background(), newFakeStore(), idts, query.EntryQuery{}, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := f.Matches("", query.MatchQuery{IDTs: idts})
	if len(got) != 3 {
		t.Fatalf("got %v", summary(got))
	}
	strs := map[string]bool{}
	for _, m := range got {
		strs[m.Str] = true
	}
	if !strs["hi"] || !strs["in"] {
		t.Errorf("strings = %v, want hi and in", strs)
	}
}

func TestFixedTermsLoad_PrunesWithLoadSpec(t *testing.T) {
	f := NewFixedTerms()
	idts := []query.IDT{{ID: "e12"}}
	if _, err := f.Load(context.Background(), newFakeStore(), idts, query.EntryQuery{Z: query.ZKeys("p")}, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := f.Matches("i", query.MatchQuery{IDTs: idts})
	if len(got) != 1 || !reflect.DeepEqual(got[0].Z, map[string]any{"p": 1}) {
		t.Fatalf("got %+v", got)
	}

	got = f.Matches("i", query.MatchQuery{IDTs: idts, Z: query.ZNone()})
	if got[0].Z != nil {
		t.Errorf("query-time prune ignored: %v", got[0].Z)
	}
	again := f.Matches("i", query.MatchQuery{IDTs: idts})
	if again[0].Z == nil {
		t.Error("query-time prune modified the cache")
	}
}

func TestFixedTermsLoad_StoreError(t *testing.T) {
	store := newFakeStore()
	store.getEntriesErr = errors.New("boom")
	f := NewFixedTerms()
	if _, err := f.Load(context.Background(), store, sampleIDTs, query.EntryQuery{}, 100); !errors.Is(err, store.getEntriesErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if f.Len() != 0 {
		t.Error("failed load must not cache anything")
	}
}

func TestFixedTermsMatches_OnlyRequestedIDTs(t *testing.T) {
	f := NewFixedTerms()
	if _, err := f.Load(context.Background(), newFakeStore(), sampleIDTs, query.EntryQuery{}, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := f.Matches("", query.MatchQuery{IDTs: []query.IDT{{ID: "B:02"}}})
	if !reflect.DeepEqual(summary(got), []string{"F:B:02:Na+Cl-"}) {
		t.Errorf("got %v", summary(got))
	}
	if got := f.Matches("", query.MatchQuery{}); len(got) != 0 {
		t.Errorf("no idts should give nothing, got %v", summary(got))
	}
	if got := f.Matches("cl", query.MatchQuery{IDTs: sampleIDTs}); !reflect.DeepEqual(summary(got), []string{"G:B:02:Na+Cl-"}) {
		t.Errorf("infix = %v", summary(got))
	}
	if got := f.Matches("zzz", query.MatchQuery{IDTs: sampleIDTs}); len(got) != 0 {
		t.Errorf("non-match = %v", summary(got))
	}
}

func TestFixedTermsMatches_Sorted(t *testing.T) {
	f := NewFixedTerms()
	f.items["b\n"] = match.Match{ID: "b", DictID: "X", Str: "ab", Type: match.FixedStart}
	f.items["a\n"] = match.Match{ID: "a", DictID: "X", Str: "bb", Type: match.FixedStart}
	f.items["c\n"] = match.Match{ID: "c", DictID: "X", Str: "Bc", Type: match.FixedStart}
	f.items["d\n"] = match.Match{ID: "d", DictID: "W", Terms: []entry.Term{{Str: "bc"}}, Str: "bc", Type: match.FixedStart}
	idts := []query.IDT{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	got := f.Matches("b", query.MatchQuery{IDTs: idts})
	want := []string{"F:a:bb", "F:c:Bc", "F:d:bc", "G:b:ab"}
	if !reflect.DeepEqual(summary(got), want) {
		t.Errorf("got %v, want %v", summary(got), want)
	}
}

func TestFixedTermsReset(t *testing.T) {
	f := NewFixedTerms()
	if _, err := f.Load(context.Background(), newFakeStore(), sampleIDTs, query.EntryQuery{}, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Reset()
	if f.Len() != 0 {
		t.Errorf("cached %d after reset, want 0", f.Len())
	}
	if ms := f.Matches("", query.MatchQuery{IDTs: sampleIDTs}); len(ms) != 0 {
		t.Errorf("matches after reset = %v", ms)
	}
}
