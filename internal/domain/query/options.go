package query

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry sort orders.
const (
	SortByDictID = "dictID"
	SortByID     = "id"
	SortByStr    = "str"
	SortByName   = "name"
)

// EntryFilter restricts entries by id and dictionary.
type EntryFilter struct {
	ID     Selection `json:"id" yaml:"id"`
	DictID Selection `json:"dictID" yaml:"dictID"`
}

// EntryQuery lists entries.
type EntryQuery struct {
	Filter  EntryFilter `json:"filter" yaml:"filter"`
	Sort    string      `json:"sort,omitempty" yaml:"sort,omitempty"` // dictID (default), id, str
	Page    int         `json:"page,omitempty" yaml:"page,omitempty"`
	PerPage int         `json:"perPage,omitempty" yaml:"perPage,omitempty"`
	Z       ZSpec       `json:"z" yaml:"z"`
}

// DictInfoFilter restricts dictionaries by id and name.
type DictInfoFilter struct {
	ID   Selection `json:"id" yaml:"id"`
	Name Selection `json:"name" yaml:"name"`
}

// DictInfoQuery lists dictionaries.
type DictInfoQuery struct {
	Filter  DictInfoFilter `json:"filter" yaml:"filter"`
	Sort    string         `json:"sort,omitempty" yaml:"sort,omitempty"` // id (default), name
	Page    int            `json:"page,omitempty" yaml:"page,omitempty"`
	PerPage int            `json:"perPage,omitempty" yaml:"perPage,omitempty"`
}

// RefTermFilter restricts referring terms.
type RefTermFilter struct {
	Str Selection `json:"str" yaml:"str"`
}

// RefTermQuery lists referring terms.
type RefTermQuery struct {
	Filter  RefTermFilter `json:"filter" yaml:"filter"`
	Page    int           `json:"page,omitempty" yaml:"page,omitempty"`
	PerPage int           `json:"perPage,omitempty" yaml:"perPage,omitempty"`
}

// MatchFilter restricts matches to dictionaries.
type MatchFilter struct {
	DictID Selection `json:"dictID" yaml:"dictID"`
}

// MatchSort ranks matches from the listed dictionaries first.
type MatchSort struct {
	DictID Selection `json:"dictID" yaml:"dictID"`
}

// MatchQuery configures a string search.
type MatchQuery struct {
	Filter  MatchFilter `json:"filter" yaml:"filter"`
	Sort    MatchSort   `json:"sort" yaml:"sort"`
	Page    int         `json:"page,omitempty" yaml:"page,omitempty"`
	PerPage int         `json:"perPage,omitempty" yaml:"perPage,omitempty"`
	Z       ZSpec       `json:"z" yaml:"z"`
	IDTs    []IDT       `json:"idts,omitempty" yaml:"idts,omitempty"`
}

// IDT names a fixed term: a concept id and optionally one of its term strings.
// Decodes from a bare id string or an {"id", "str"} object.
type IDT struct {
	ID  string `json:"id" yaml:"id"`
	Str string `json:"str,omitempty" yaml:"str,omitempty"`
}

// Key is the fixed-term cache key.
func (t IDT) Key() string { return t.ID + "\n" + t.Str }

// UnmarshalJSON decodes a bare id or an object.
func (t *IDT) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("decode idt: %w", err)
		}
		*t = IDT{ID: id}
		return nil
	}
	type plain IDT
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode idt: %w", err)
	}
	*t = IDT(p)
	return nil
}

// UnmarshalYAML decodes a bare id or a mapping.
func (t *IDT) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*t = IDT{ID: node.Value}
		return nil
	}
	type plain IDT
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("decode idt: %w", err)
	}
	*t = IDT(p)
	return nil
}
