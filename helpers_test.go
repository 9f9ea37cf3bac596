package termdex

import (
	"errors"
	"reflect"
	"testing"
)

func TestCanonicalizeTerms(t *testing.T) {
	got, err := CanonicalizeTerms([]Term{{Str: "a"}, {Str: "b"}, {Str: "a", Style: "i"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Term{{Str: "a", Style: "i"}, {Str: "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if _, err := CanonicalizeTerms([]Term{{Str: ""}}); !errors.Is(err, ErrInvalidTerm) {
		t.Errorf("expected ErrInvalidTerm, got %v", err)
	}
}

func TestCanonicalizeEntry(t *testing.T) {
	e, err := CanonicalizeEntry(Input{ID: NumberID(5), DictID: "A", Terms: TermsInput{{Str: "x"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != "5" || e.DictID != "A" {
		t.Errorf("entry = %+v", e)
	}

	_, err = CanonicalizeEntry(Input{ID: StringID("x"), Terms: TermsInput{{Str: "x"}}})
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "dictID" || !errors.Is(err, ErrMissingField) {
		t.Errorf("expected dictID field error, got %v", err)
	}
}

func TestPruneZ(t *testing.T) {
	ms := []Match{{ID: "e", Z: map[string]any{"a": 1, "b": 2}}, {ID: "f"}}

	tests := []struct {
		name string
		z    ZSpec
		want []map[string]any
	}{
		{"all", ZAll(), []map[string]any{{"a": 1, "b": 2}, nil}},
		{"none", ZNone(), []map[string]any{nil, nil}},
		{"keys", ZKeys("b", "c"), []map[string]any{{"b": 2}, nil}},
		{"no surviving keys", ZKeys("c"), []map[string]any{nil, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PruneZ(ms, tt.z)
			for i := range got {
				if !reflect.DeepEqual(got[i].Z, tt.want[i]) {
					t.Errorf("match %d z = %v, want %v", i, got[i].Z, tt.want[i])
				}
			}
		})
	}
	if len(ms[0].Z) != 2 {
		t.Error("input was modified")
	}
}

func TestToExponential(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12", "1.2e+1", true},
		{"-0.05", "-5e-2", true},
		{"1e3", "1e+3", true},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ToExponential(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ToExponential(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
