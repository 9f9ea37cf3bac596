package entry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/termdex/internal/domain"
)

// Term is one synonym string of an entry.
type Term struct {
	Str   string `json:"str" yaml:"str" msgpack:"str"`
	Style string `json:"style,omitempty" yaml:"style,omitempty" msgpack:"style,omitempty"`
	Descr string `json:"descr,omitempty" yaml:"descr,omitempty" msgpack:"descr,omitempty"`
}

// TermsInput is the loose term list accepted on input: a bare string,
// a single term object, or a mixed list of strings and term objects.
type TermsInput []Term

// UnmarshalJSON accepts every loose term shape.
func (t *TermsInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	if data[0] != '[' {
		term, err := decodeJSONTerm(data)
		if err != nil {
			return err
		}
		*t = TermsInput{term}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode terms: %w", err)
	}
	out := make(TermsInput, 0, len(raw))
	for _, r := range raw {
		term, err := decodeJSONTerm(r)
		if err != nil {
			return err
		}
		out = append(out, term)
	}
	*t = out
	return nil
}

func decodeJSONTerm(data []byte) (Term, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Term{}, fmt.Errorf("decode term: %w", err)
		}
		return Term{Str: s}, nil
	}
	var term Term
	if err := json.Unmarshal(data, &term); err != nil {
		return Term{}, fmt.Errorf("decode term: %w", err)
	}
	return term, nil
}

// UnmarshalYAML accepts every loose term shape.
func (t *TermsInput) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		out := make(TermsInput, 0, len(node.Content))
		for _, n := range node.Content {
			term, err := decodeYAMLTerm(n)
			if err != nil {
				return err
			}
			out = append(out, term)
		}
		*t = out
		return nil
	default:
		term, err := decodeYAMLTerm(node)
		if err != nil {
			return err
		}
		*t = TermsInput{term}
		return nil
	}
}

func decodeYAMLTerm(node *yaml.Node) (Term, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return Term{Str: node.Value}, nil
	case yaml.MappingNode:
		var term Term
		if err := node.Decode(&term); err != nil {
			return Term{}, fmt.Errorf("decode term: %w", err)
		}
		return term, nil
	default:
		return Term{}, fmt.Errorf("decode term at line %d: %w", node.Line, domain.ErrInvalidTerm)
	}
}

// TermsFrom converts a Go value in any loose term shape into a term list.
// Accepted: string, Term, []Term, []string, TermsInput, and []any mixing
// strings, Terms and map[string]any term objects.
func TermsFrom(v any) (TermsInput, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return TermsInput{{Str: x}}, nil
	case Term:
		return TermsInput{x}, nil
	case TermsInput:
		return x, nil
	case []Term:
		return TermsInput(x), nil
	case []string:
		out := make(TermsInput, len(x))
		for i, s := range x {
			out[i] = Term{Str: s}
		}
		return out, nil
	case map[string]any:
		return TermsInput{termFromMap(x)}, nil
	case []any:
		out := make(TermsInput, 0, len(x))
		for _, item := range x {
			one, err := TermsFrom(item)
			if err != nil {
				return nil, err
			}
			if len(one) != 1 {
				return nil, domain.ErrInvalidTerm
			}
			out = append(out, one[0])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported term shape %T: %w", v, domain.ErrInvalidTerm)
	}
}

func termFromMap(m map[string]any) Term {
	str, _ := m["str"].(string)
	style, _ := m["style"].(string)
	descr, _ := m["descr"].(string)
	return Term{Str: str, Style: style, Descr: descr}
}

// CanonicalizeTerms deduplicates terms by Str. A later term with the same
// Str replaces the earlier one at the earlier one's position.
// Returns ErrInvalidTerm if any term has an empty Str.
func CanonicalizeTerms(in []Term) ([]Term, error) {
	out := make([]Term, 0, len(in))
	pos := make(map[string]int, len(in))
	for _, t := range in {
		if t.Str == "" {
			return nil, domain.ErrInvalidTerm
		}
		clean := Term{Str: t.Str, Style: t.Style, Descr: t.Descr}
		if i, ok := pos[t.Str]; ok {
			out[i] = clean
			continue
		}
		pos[t.Str] = len(out)
		out = append(out, clean)
	}
	return out, nil
}
