package entry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/termdex/internal/domain"
)

// Update is a partial entry change.
// Zero fields are unchanged. TermsDel is applied before Terms.
type Update struct {
	ID       string         `json:"id" yaml:"id"`
	DictID   string         `json:"dictID,omitempty" yaml:"dictID,omitempty"`
	Descr    string         `json:"descr,omitempty" yaml:"descr,omitempty"`
	Terms    TermsInput     `json:"terms,omitempty" yaml:"terms,omitempty"`
	TermsDel []string       `json:"termsDel,omitempty" yaml:"termsDel,omitempty"`
	Z        map[string]any `json:"z,omitempty" yaml:"z,omitempty"`
	ZDel     KeySet         `json:"zDel,omitempty" yaml:"zDel,omitempty"`
}

// Apply returns a copy of e with the update applied. The input is not modified.
func (u Update) Apply(e Entry) (Entry, error) {
	out := e.Clone()
	if u.DictID != "" {
		out.DictID = u.DictID
	}
	if u.Descr != "" {
		out.Descr = u.Descr
	}

	if len(u.TermsDel) > 0 {
		del := make(map[string]struct{}, len(u.TermsDel))
		for _, s := range u.TermsDel {
			del[s] = struct{}{}
		}
		kept := out.Terms[:0]
		for _, t := range out.Terms {
			if _, ok := del[t.Str]; !ok {
				kept = append(kept, t)
			}
		}
		out.Terms = kept
	}

	switch {
	case u.ZDel.All():
		out.Z = nil
	case out.Z != nil:
		for _, k := range u.ZDel.Keys() {
			delete(out.Z, k)
		}
	}

	terms, err := CanonicalizeTerms(u.Terms)
	if err != nil {
		return Entry{}, err
	}
	for _, t := range terms {
		if i := out.TermIndex(t.Str); i >= 0 {
			out.Terms[i] = t
		} else {
			out.Terms = append(out.Terms, t)
		}
	}
	if len(out.Terms) == 0 {
		return Entry{}, domain.ErrNoTerms
	}

	if u.Z != nil {
		if out.Z == nil {
			out.Z = make(map[string]any, len(u.Z))
		}
		for k, v := range CloneZ(u.Z) {
			out.Z[k] = v
		}
	}
	return out, nil
}

// KeySet names either all keys or a list of keys.
// Decodes from true, false, a single string or a list of strings.
type KeySet struct {
	all  bool
	keys []string
}

// AllKeys selects every key.
func AllKeys() KeySet { return KeySet{all: true} }

// Keys selects the named keys.
func Keys(keys ...string) KeySet { return KeySet{keys: keys} }

// All reports whether every key is selected.
func (k KeySet) All() bool { return k.all }

// Keys returns the named keys.
func (k KeySet) Keys() []string { return k.keys }

// IsZero reports an empty selection.
func (k KeySet) IsZero() bool { return !k.all && len(k.keys) == 0 }

// UnmarshalJSON decodes true, false, a string or a list of strings.
func (k *KeySet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		*k = AllKeys()
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")):
		*k = KeySet{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode key set: %w", err)
		}
		*k = Keys(s)
	default:
		var ss []string
		if err := json.Unmarshal(data, &ss); err != nil {
			return fmt.Errorf("decode key set: %w", err)
		}
		*k = Keys(ss...)
	}
	return nil
}

// UnmarshalYAML decodes true, false, a string or a list of strings.
func (k *KeySet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var ss []string
		if err := node.Decode(&ss); err != nil {
			return fmt.Errorf("decode key set: %w", err)
		}
		*k = Keys(ss...)
		return nil
	}
	switch {
	case node.Tag == "!!bool" && node.Value == "true":
		*k = AllKeys()
	case node.Tag == "!!bool", node.Tag == "!!null":
		*k = KeySet{}
	default:
		*k = Keys(node.Value)
	}
	return nil
}

// MarshalJSON encodes true, false or a list of keys.
func (k KeySet) MarshalJSON() ([]byte, error) {
	switch {
	case k.all:
		return []byte("true"), nil
	case len(k.keys) == 0:
		return []byte("false"), nil
	default:
		return json.Marshal(k.keys)
	}
}
