package rediskv

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/termdex/internal/db"
	"github.com/kailas-cloud/termdex/internal/db/redis"
	"github.com/kailas-cloud/termdex/internal/domain"
	"github.com/kailas-cloud/termdex/internal/domain/batch"
	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

func input(id, dictID string, strs ...string) entry.Input {
	ts := make(entry.TermsInput, len(strs))
	for i, s := range strs {
		ts[i] = entry.Term{Str: s}
	}
	return entry.Input{ID: entry.StringID(id), DictID: dictID, Terms: ts}
}

func mustOK(t *testing.T, rs []batch.Result) {
	t.Helper()
	if err := batch.Join(rs); err != nil {
		t.Fatalf("unexpected item errors: %v", err)
	}
}

func seeded(t *testing.T) (*Store, *fakeKV) {
	t.Helper()
	ctx := context.Background()
	kv := newFakeKV()
	s := New(kv, "td:")
	mustOK(t, s.AddDictInfos(ctx, []entry.DictInfo{
		{ID: "A", Name: "Name 1"}, {ID: "B", Name: "Name 2"}, {ID: "C", Name: "Name 3"},
	}))
	e12 := input("e12", "C", "in", "Iz", "hi")
	e12.Z = map[string]any{"a": "x", "b": "y"}
	mustOK(t, s.AddEntries(ctx, []entry.Input{
		input("A:01", "A", "in"), input("A:02", "A", "inn"), input("B:02", "B", "Na+Cl-"), e12,
	}))
	mustOK(t, s.AddRefTerms(ctx, []string{"it", "In"}))
	return s, kv
}

func ids(es []entry.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func summarize(ms []match.Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m.Type) + ":" + m.ID + ":" + m.Str
	}
	return out
}

func TestKeyLayout(t *testing.T) {
	_, kv := seeded(t)
	for _, key := range []string{"td:dict:A", "td:entry:e12"} {
		if _, ok := kv.values[key]; !ok {
			t.Errorf("missing value key %s", key)
		}
	}
	for _, key := range []string{"td:dicts", "td:entries", "td:dict:C:entries", "td:refterms"} {
		if _, ok := kv.sets[key]; !ok {
			t.Errorf("missing set key %s", key)
		}
	}
}

func TestGetEntries(t *testing.T) {
	ctx := context.Background()
	s, _ := seeded(t)

	tests := []struct {
		name string
		q    query.EntryQuery
		want []string
	}{
		{"all", query.EntryQuery{}, []string{"A:01", "A:02", "B:02", "e12"}},
		{"by dict", query.EntryQuery{Filter: query.EntryFilter{DictID: query.Of("C", "B")}}, []string{"B:02", "e12"}},
		{"by id", query.EntryQuery{Filter: query.EntryFilter{ID: query.Of("e12", "A:01", "zz")}}, []string{"A:01", "e12"}},
		{"id and dict", query.EntryQuery{Filter: query.EntryFilter{ID: query.Of("e12", "A:01"), DictID: query.Of("A")}}, []string{"A:01"}},
		{"paged", query.EntryQuery{Page: 2, PerPage: 3}, []string{"e12"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.GetEntries(ctx, tt.q)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("got %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestGetEntries_RoundTripsFields(t *testing.T) {
	s, _ := seeded(t)
	got, err := s.GetEntries(context.Background(), query.EntryQuery{Filter: query.EntryFilter{ID: query.Of("e12")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := entry.Entry{
		ID: "e12", DictID: "C",
		Terms: []entry.Term{{Str: "in"}, {Str: "Iz"}, {Str: "hi"}},
		Z:     map[string]any{"a": "x", "b": "y"},
	}
	if len(got) != 1 || !reflect.DeepEqual(got[0], want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFindMatches(t *testing.T) {
	ctx := context.Background()
	s, _ := seeded(t)

	tests := []struct {
		name string
		str  string
		q    query.MatchQuery
		want []string
	}{
		{"refterm and prefixes", "in", query.MatchQuery{},
			[]string{"R::In", "S:A:01:in", "S:e12:in", "S:A:02:inn"}},
		{"refterm on page 2", "in", query.MatchQuery{Page: 2, PerPage: 2}, []string{"R::In", "S:A:02:inn"}},
		{"priority", "n", query.MatchQuery{Sort: query.MatchSort{DictID: query.Of("C")}},
			[]string{"T:e12:in", "S:B:02:Na+Cl-", "T:A:01:in", "T:A:02:inn"}},
		{"filter", "n", query.MatchQuery{Filter: query.MatchFilter{DictID: query.Of("B")}},
			[]string{"S:B:02:Na+Cl-"}},
		{"empty", "", query.MatchQuery{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindMatches(ctx, tt.str, tt.q)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(summarize(got), tt.want) {
				t.Errorf("got %v, want %v", summarize(got), tt.want)
			}
		})
	}
}

func TestDictInfos(t *testing.T) {
	ctx := context.Background()
	s, _ := seeded(t)

	rs := s.AddDictInfos(ctx, []entry.DictInfo{{ID: "A", Name: "dup"}, {ID: "D", Name: ""}})
	if !errors.Is(rs[0].Err(), domain.ErrAlreadyExists) || !errors.Is(rs[1].Err(), domain.ErrMissingField) {
		t.Errorf("add results: %v, %v", rs[0].Err(), rs[1].Err())
	}

	mustOK(t, s.UpdateDictInfos(ctx, []entry.DictInfo{{ID: "B", Name: "Name 2b"}}))
	got, err := s.GetDictInfos(ctx, query.DictInfoQuery{Filter: query.DictInfoFilter{ID: query.Of("B", "C")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []entry.DictInfo{{ID: "B", Name: "Name 2b"}, {ID: "C", Name: "Name 3"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	rs = s.DeleteDictInfos(ctx, []string{"B", "Q"})
	if !errors.Is(rs[0].Err(), domain.ErrHasEntries) || !errors.Is(rs[1].Err(), domain.ErrNotFound) {
		t.Errorf("delete results: %v, %v", rs[0].Err(), rs[1].Err())
	}
}

func TestUpdateEntries_MovesMembership(t *testing.T) {
	ctx := context.Background()
	s, kv := seeded(t)

	mustOK(t, s.UpdateEntries(ctx, []entry.Update{{ID: "B:02", DictID: "A", TermsDel: []string{"Na+Cl-"}, Terms: entry.TermsInput{{Str: "salt"}}}}))
	if _, ok := kv.sets["td:dict:B:entries"]["B:02"]; ok {
		t.Error("entry still listed under its old dictionary")
	}
	mustOK(t, s.DeleteDictInfos(ctx, []string{"B"}))

	got, _ := s.GetEntries(ctx, query.EntryQuery{Filter: query.EntryFilter{DictID: query.Of("A")}, Sort: query.SortByStr})
	if !reflect.DeepEqual(ids(got), []string{"A:01", "A:02", "B:02"}) {
		t.Errorf("entries of A = %v", ids(got))
	}

	rs := s.UpdateEntries(ctx, []entry.Update{
		{ID: "A:01", TermsDel: []string{"in"}},
		{ID: "nope"},
		{ID: "A:01", DictID: "X"},
	})
	for i, want := range []error{domain.ErrNoTerms, domain.ErrNotFound, domain.ErrDictNotFound} {
		if !errors.Is(rs[i].Err(), want) {
			t.Errorf("item %d: %v, want %v", i, rs[i].Err(), want)
		}
	}
}

func TestAddAndDeleteEntries(t *testing.T) {
	ctx := context.Background()
	s, _ := seeded(t)
	s.WithDictIDPolicy("B", entry.PaddedIDs{Width: 2})

	rs := s.AddEntries(ctx, []entry.Input{
		{ID: entry.NumberID(7), DictID: "B", Terms: entry.TermsInput{{Str: "seven"}}},
		input("A:01", "A", "dup"),
		input("X:1", "X", "x"),
	})
	if rs[0].Err() != nil || rs[0].Key() != "B:07" {
		t.Errorf("numeric id: %q %v", rs[0].Key(), rs[0].Err())
	}
	if !errors.Is(rs[1].Err(), domain.ErrAlreadyExists) || !errors.Is(rs[2].Err(), domain.ErrDictNotFound) {
		t.Errorf("results: %v, %v", rs[1].Err(), rs[2].Err())
	}

	rs = s.DeleteEntries(ctx, []string{"B:07", "B:07"})
	if rs[0].Err() != nil || !errors.Is(rs[1].Err(), domain.ErrNotFound) {
		t.Errorf("delete: %v, %v", rs[0].Err(), rs[1].Err())
	}
}

func TestRefTerms(t *testing.T) {
	ctx := context.Background()
	s, _ := seeded(t)

	rs := s.AddRefTerms(ctx, []string{"", "that"})
	if !errors.Is(rs[0].Err(), domain.ErrInvalidTerm) || rs[1].Err() != nil {
		t.Errorf("add: %v, %v", rs[0].Err(), rs[1].Err())
	}
	rs = s.DeleteRefTerms(ctx, []string{"In", "xx"})
	if rs[0].Err() != nil || !errors.Is(rs[1].Err(), domain.ErrNotFound) {
		t.Errorf("delete: %v, %v", rs[0].Err(), rs[1].Err())
	}
	got, _ := s.GetRefTerms(ctx, query.RefTermQuery{})
	if !reflect.DeepEqual(got, []string{"it", "that"}) {
		t.Errorf("got %v", got)
	}
}

func TestAddDictionaryData(t *testing.T) {
	ctx := context.Background()
	s := New(newFakeKV(), "")
	err := s.AddDictionaryData(ctx, entry.Data{
		Dictionaries: []entry.DictData{{ID: "Z", Name: "Zed", Entries: []entry.Input{
			{ID: entry.NumberID(1), Terms: entry.TermsInput{{Str: "5"}}},
			input("Z:9", "Y", "bad"),
		}}},
		RefTerms: []string{"5"},
	})
	if !errors.Is(err, domain.ErrDictMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	err = s.AddDictionaryData(ctx, entry.Data{Dictionaries: []entry.DictData{{ID: "Z", Name: "Zed 2", Entries: []entry.Input{
		{ID: entry.NumberID(1), Terms: entry.TermsInput{{Str: "five"}}},
	}}}})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	es, _ := s.GetEntries(ctx, query.EntryQuery{})
	if len(es) != 1 || es[0].ID != "Z:0001" || len(es[0].Terms) != 2 {
		t.Errorf("entries = %+v", es)
	}
	ds, _ := s.GetDictInfos(ctx, query.DictInfoQuery{})
	if len(ds) != 1 || ds[0].Name != "Zed 2" {
		t.Errorf("dicts = %+v", ds)
	}
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	s, kv := seeded(t)
	boom := &db.Error{Op: db.OpMGet, Err: errors.New("connection reset")}
	kv.errs[db.OpMGet] = boom

	if _, err := s.GetEntries(ctx, query.EntryQuery{}); !errors.Is(err, boom) {
		t.Errorf("GetEntries error = %v", err)
	}
	if _, err := s.FindMatches(ctx, "i", query.MatchQuery{}); !errors.Is(err, boom) {
		t.Errorf("FindMatches error = %v", err)
	}
	if _, err := s.GetDictInfos(ctx, query.DictInfoQuery{}); !errors.Is(err, boom) {
		t.Errorf("GetDictInfos error = %v", err)
	}

	kv.errs[db.OpSet] = errors.New("READONLY")
	rs := s.AddEntries(ctx, []entry.Input{input("A:03", "A", "x")})
	if rs[0].Status() != batch.StatusError {
		t.Errorf("expected item failure, got %v", rs[0])
	}
}

func TestGetRefTerms_Rueidis(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SMEMBERS", "td:refterms")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("that"), mock.RedisString("it"))))

	s := New(redis.NewStoreForTest(c), "td:")
	got, err := s.GetRefTerms(context.Background(), query.RefTermQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"it", "that"}) {
		t.Errorf("got %v", got)
	}
}

func TestGetEntries_RueidisMissingKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	raw, err := encodeEntry(entry.Entry{ID: "A:01", DictID: "A", Terms: []entry.Term{{Str: "in"}}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	c.EXPECT().
		Do(gomock.Any(), mock.Match("MGET", "td:entry:A:01", "td:entry:gone")).
		Return(mock.Result(mock.RedisArray(mock.RedisBlobString(string(raw)), mock.RedisNil())))

	s := New(redis.NewStoreForTest(c), "td:")
	got, err := s.GetEntries(context.Background(), query.EntryQuery{Filter: query.EntryFilter{ID: query.Of("gone", "A:01")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids(got), []string{"A:01"}) {
		t.Errorf("got %v", ids(got))
	}
}
