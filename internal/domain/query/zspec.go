package query

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/termdex/internal/domain/entry"
)

type zMode uint8

const (
	zAll zMode = iota
	zNone
	zKeys
)

// ZSpec selects which metadata keys survive pruning.
// The zero value keeps everything.
type ZSpec struct {
	mode zMode
	keys []string
}

// ZAll keeps all metadata.
func ZAll() ZSpec { return ZSpec{mode: zAll} }

// ZNone drops all metadata.
func ZNone() ZSpec { return ZSpec{mode: zNone} }

// ZKeys keeps only the named keys.
func ZKeys(keys ...string) ZSpec { return ZSpec{mode: zKeys, keys: keys} }

// KeepsAll reports whether pruning is a no-op.
func (z ZSpec) KeepsAll() bool { return z.mode == zAll }

// DropsAll reports whether all metadata is removed.
func (z ZSpec) DropsAll() bool { return z.mode == zNone }

// Keys returns the named keys (only meaningful for ZKeys).
func (z ZSpec) Keys() []string { return z.keys }

// Prune returns the metadata that survives. A nil result means the z
// property must be absent. The input map is never modified; when
// everything is kept it is returned as-is.
func (z ZSpec) Prune(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	switch z.mode {
	case zAll:
		return m
	case zNone:
		return nil
	}
	out := make(map[string]any, len(z.keys))
	for _, k := range z.keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// PruneEntries returns copies of the entries with pruned metadata.
func PruneEntries(es []entry.Entry, z ZSpec) []entry.Entry {
	if z.KeepsAll() {
		return es
	}
	out := make([]entry.Entry, len(es))
	for i, e := range es {
		e.Z = z.Prune(e.Z)
		out[i] = e
	}
	return out
}

// UnmarshalJSON decodes true, false, a key or a list of keys.
func (z *ZSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("null")):
		*z = ZAll()
	case bytes.Equal(data, []byte("false")):
		*z = ZNone()
	case len(data) > 0 && data[0] == '"':
		var k string
		if err := json.Unmarshal(data, &k); err != nil {
			return fmt.Errorf("decode z: %w", err)
		}
		*z = ZKeys(k)
	default:
		var ks []string
		if err := json.Unmarshal(data, &ks); err != nil {
			return fmt.Errorf("decode z: %w", err)
		}
		*z = ZKeys(ks...)
	}
	return nil
}

// MarshalJSON encodes true, false or the key list.
func (z ZSpec) MarshalJSON() ([]byte, error) {
	switch z.mode {
	case zAll:
		return []byte("true"), nil
	case zNone:
		return []byte("false"), nil
	default:
		return json.Marshal(z.keys)
	}
}

// UnmarshalYAML decodes true, false, a key or a list of keys.
func (z *ZSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var ks []string
		if err := node.Decode(&ks); err != nil {
			return fmt.Errorf("decode z: %w", err)
		}
		*z = ZKeys(ks...)
		return nil
	}
	switch {
	case node.Tag == "!!null", node.Tag == "!!bool" && node.Value == "true":
		*z = ZAll()
	case node.Tag == "!!bool":
		*z = ZNone()
	default:
		*z = ZKeys(node.Value)
	}
	return nil
}
