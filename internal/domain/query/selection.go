package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Selection is an include-list. An inactive selection admits everything;
// an active one admits only its values, so an active empty list admits nothing.
// Decodes from false/null (inactive), a string or a list of strings.
type Selection struct {
	values []string
	active bool
}

// Any returns an inactive selection.
func Any() Selection { return Selection{} }

// Of returns an active selection of the given values.
func Of(values ...string) Selection {
	return Selection{values: append([]string{}, values...), active: true}
}

// Active reports whether the selection filters at all.
func (s Selection) Active() bool { return s.active }

// Values returns the selected values.
func (s Selection) Values() []string { return s.values }

// Contains reports membership. False for an inactive selection.
func (s Selection) Contains(v string) bool {
	return s.active && slices.Contains(s.values, v)
}

// Admits reports whether v passes the filter.
func (s Selection) Admits(v string) bool {
	return !s.active || slices.Contains(s.values, v)
}

// UnmarshalJSON decodes false, null, a string or a list of strings.
func (s *Selection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*s = Any()
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decode selection: %w", err)
		}
		*s = Of(v)
	default:
		var vs []string
		if err := json.Unmarshal(data, &vs); err != nil {
			return fmt.Errorf("decode selection: %w", err)
		}
		*s = Of(vs...)
	}
	return nil
}

// MarshalJSON encodes false for an inactive selection, else the list.
func (s Selection) MarshalJSON() ([]byte, error) {
	if !s.active {
		return []byte("false"), nil
	}
	return json.Marshal(s.values)
}

// UnmarshalYAML decodes false, null, a string or a list of strings.
func (s *Selection) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var vs []string
		if err := node.Decode(&vs); err != nil {
			return fmt.Errorf("decode selection: %w", err)
		}
		*s = Of(vs...)
		return nil
	}
	if node.Tag == "!!null" || node.Tag == "!!bool" && node.Value == "false" {
		*s = Any()
		return nil
	}
	*s = Of(node.Value)
	return nil
}
