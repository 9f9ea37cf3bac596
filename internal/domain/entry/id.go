package entry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// RawID is an entry id as given on input: a string, or an integer that an
// ID policy turns into a string.
type RawID struct {
	str   string
	num   int64
	isNum bool
}

// StringID wraps a string id.
func StringID(s string) RawID { return RawID{str: s} }

// NumberID wraps an integer id.
func NumberID(n int64) RawID { return RawID{num: n, isNum: true} }

// Number returns the integer id and true when the id is numeric.
func (r RawID) Number() (int64, bool) { return r.num, r.isNum }

// IsZero reports an absent id. Zero is not a valid numeric id.
func (r RawID) IsZero() bool {
	if r.isNum {
		return r.num == 0
	}
	return r.str == ""
}

func (r RawID) String() string {
	if r.isNum {
		return strconv.FormatInt(r.num, 10)
	}
	return r.str
}

// MarshalJSON keeps the original kind.
func (r RawID) MarshalJSON() ([]byte, error) {
	if r.isNum {
		return []byte(strconv.FormatInt(r.num, 10)), nil
	}
	return json.Marshal(r.str)
}

// UnmarshalJSON accepts a JSON string or integer.
func (r *RawID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = RawID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*r = StringID(s)
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("decode id %s: must be a string or an integer", data)
	}
	*r = NumberID(n)
	return nil
}

// UnmarshalYAML accepts a YAML string or integer scalar.
func (r *RawID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("decode id at line %d: must be a scalar", node.Line)
	}
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return fmt.Errorf("decode id at line %d: %w", node.Line, err)
		}
		*r = NumberID(n)
		return nil
	}
	*r = StringID(node.Value)
	return nil
}
