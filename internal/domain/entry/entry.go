package entry

import (
	"strings"

	"github.com/kailas-cloud/termdex/internal/domain"
)

// Entry is a concept record owned by one dictionary.
type Entry struct {
	ID     string         `json:"id" yaml:"id" msgpack:"id"`
	DictID string         `json:"dictID" yaml:"dictID" msgpack:"dictID"`
	Terms  []Term         `json:"terms" yaml:"terms" msgpack:"terms"`
	Descr  string         `json:"descr,omitempty" yaml:"descr,omitempty" msgpack:"descr,omitempty"`
	Z      map[string]any `json:"z,omitempty" yaml:"z,omitempty" msgpack:"z,omitempty"`
}

// TermIndex returns the position of the term with the given string, or -1.
func (e Entry) TermIndex(str string) int {
	for i, t := range e.Terms {
		if t.Str == str {
			return i
		}
	}
	return -1
}

// FirstStr returns the first term string, used for sorting by string.
func (e Entry) FirstStr() string {
	if len(e.Terms) == 0 {
		return ""
	}
	return e.Terms[0].Str
}

// Clone returns a deep copy.
func (e Entry) Clone() Entry {
	out := e
	out.Terms = append([]Term(nil), e.Terms...)
	out.Z = CloneZ(e.Z)
	return out
}

// DictInfo describes one dictionary.
type DictInfo struct {
	ID   string `json:"id" yaml:"id" msgpack:"id"`
	Name string `json:"name" yaml:"name" msgpack:"name"`
}

// Validate checks the required fields.
func (d DictInfo) Validate() error {
	if d.ID == "" {
		return domain.NewFieldError("id", domain.ErrMissingField)
	}
	if d.Name == "" {
		return domain.NewFieldError("name", domain.ErrMissingField)
	}
	return nil
}

// Input is a loosely-shaped entry as received from callers and data files.
type Input struct {
	ID     RawID          `json:"id" yaml:"id"`
	DictID string         `json:"dictID" yaml:"dictID"`
	Terms  TermsInput     `json:"terms" yaml:"terms"`
	Descr  string         `json:"descr,omitempty" yaml:"descr,omitempty"`
	Z      map[string]any `json:"z,omitempty" yaml:"z,omitempty"`
}

// CanonicalizeEntry converts an input into a strict entry: terms are
// deduplicated, extraneous data dropped and Z deep-cloned.
func CanonicalizeEntry(in Input) (Entry, error) {
	if in.ID.IsZero() {
		return Entry{}, domain.NewFieldError("id", domain.ErrMissingField)
	}
	if in.DictID == "" {
		return Entry{}, domain.NewFieldError("dictID", domain.ErrMissingField)
	}
	if len(in.Terms) == 0 {
		return Entry{}, domain.NewFieldError("terms", domain.ErrMissingField)
	}
	terms, err := CanonicalizeTerms(in.Terms)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:     in.ID.String(),
		DictID: in.DictID,
		Terms:  terms,
		Descr:  in.Descr,
		Z:      CloneZ(in.Z),
	}, nil
}

// CloneZ deep-copies a metadata object. Nil stays nil.
func CloneZ(z map[string]any) map[string]any {
	if z == nil {
		return nil
	}
	out := make(map[string]any, len(z))
	for k, v := range z {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return CloneZ(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}

// Compare orders strings case-insensitively, then byte-wise.
func Compare(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
