package httpquery

import (
	"errors"
	"net/url"
	"reflect"
	"testing"

	"github.com/kailas-cloud/termdex/internal/domain"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

func TestEntryQuery_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		q    query.EntryQuery
		raw  string
	}{
		{"zero", query.EntryQuery{}, ""},
		{
			"full",
			query.EntryQuery{
				Filter:  query.EntryFilter{ID: query.Of("a", "b"), DictID: query.Of("D")},
				Sort:    query.SortByStr,
				Page:    2,
				PerPage: 5,
				Z:       query.ZKeys("x", "y"),
			},
			"dictID=D&id=a&id=b&page=2&perPage=5&sort=str&z=x&z=y",
		},
		{
			"empty active filter",
			query.EntryQuery{Filter: query.EntryFilter{ID: query.Of()}, Z: query.ZNone()},
			"id=&z=false",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := EncodeEntryQuery(tt.q)
			if got := v.Encode(); got != tt.raw {
				t.Errorf("Encode() = %q, want %q", got, tt.raw)
			}
			back, err := DecodeEntryQuery(v)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(back, tt.q) {
				t.Errorf("decoded %+v, want %+v", back, tt.q)
			}
		})
	}
}

func TestDecodeEntryQuery_Selections(t *testing.T) {
	v, _ := url.ParseQuery("id=&dictID=A&dictID=")
	q, err := DecodeEntryQuery(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Filter.ID.Active() || len(q.Filter.ID.Values()) != 0 {
		t.Errorf("id = %+v, want active and empty", q.Filter.ID)
	}
	if !reflect.DeepEqual(q.Filter.DictID.Values(), []string{"A"}) {
		t.Errorf("dictID = %v", q.Filter.DictID.Values())
	}
	if !q.Z.KeepsAll() {
		t.Error("absent z should keep all metadata")
	}
}

func TestDecodeZ(t *testing.T) {
	tests := []struct {
		raw  string
		want query.ZSpec
	}{
		{"", query.ZAll()},
		{"z=true", query.ZAll()},
		{"z=false", query.ZNone()},
		{"z=a", query.ZKeys("a")},
		{"z=a&z=b", query.ZKeys("a", "b")},
		{"z=", query.ZKeys()},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, _ := url.ParseQuery(tt.raw)
			if got := zspec(v); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("zspec(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecode_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
	}{
		{"page", func() error {
			_, err := DecodeEntryQuery(url.Values{"page": {"x"}})
			return err
		}},
		{"perPage", func() error {
			_, err := DecodeRefTermQuery(url.Values{"perPage": {"1.5"}})
			return err
		}},
		{"entry sort", func() error {
			_, err := DecodeEntryQuery(url.Values{"sort": {"name"}})
			return err
		}},
		{"dictinfo sort", func() error {
			_, err := DecodeDictInfoQuery(url.Values{"sort": {"str"}})
			return err
		}},
		{"idts", func() error {
			_, _, err := DecodeMatchQuery(url.Values{"idts": {"[1,"}})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestDecode_OutOfRangePagesLeftToPager(t *testing.T) {
	q, err := DecodeDictInfoQuery(url.Values{"page": {"-3"}, "perPage": {"1000"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page != -3 || q.PerPage != 1000 {
		t.Errorf("page=%d perPage=%d", q.Page, q.PerPage)
	}
}

func TestDictInfoQuery_RoundTrip(t *testing.T) {
	q := query.DictInfoQuery{
		Filter: query.DictInfoFilter{Name: query.Of("Dict A", "Dict B")},
		Sort:   query.SortByName,
		Page:   3,
	}
	back, err := DecodeDictInfoQuery(EncodeDictInfoQuery(q))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(back, q) {
		t.Errorf("decoded %+v, want %+v", back, q)
	}
}

func TestRefTermQuery_RoundTrip(t *testing.T) {
	q := query.RefTermQuery{Filter: query.RefTermFilter{Str: query.Of("it", "that")}, PerPage: 2}
	back, err := DecodeRefTermQuery(EncodeRefTermQuery(q))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(back, q) {
		t.Errorf("decoded %+v, want %+v", back, q)
	}
}

func TestMatchQuery_RoundTrip(t *testing.T) {
	q := query.MatchQuery{
		Filter:  query.MatchFilter{DictID: query.Of("A", "B")},
		Sort:    query.MatchSort{DictID: query.Of("B")},
		Page:    1,
		PerPage: 10,
		Z:       query.ZNone(),
		IDTs:    []query.IDT{{ID: "A:01"}, {ID: "B:02", Str: "Na+Cl-"}},
	}
	v, err := EncodeMatchQuery("a b&c", q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parsed, err := url.ParseQuery(v.Encode())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	str, back, err := DecodeMatchQuery(parsed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if str != "a b&c" {
		t.Errorf("str = %q", str)
	}
	if !reflect.DeepEqual(back, q) {
		t.Errorf("decoded %+v, want %+v", back, q)
	}
}

func TestDecodeMatchQuery_BareIDTs(t *testing.T) {
	_, q, err := DecodeMatchQuery(url.Values{"idts": {`["A:01",{"id":"B:02","str":"x"}]`}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []query.IDT{{ID: "A:01"}, {ID: "B:02", Str: "x"}}
	if !reflect.DeepEqual(q.IDTs, want) {
		t.Errorf("idts = %+v, want %+v", q.IDTs, want)
	}
}
