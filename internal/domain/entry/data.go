package entry

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DictData is a dictionary together with the entries it owns.
// Entries without a dictID inherit ID.
type DictData struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Entries []Input `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// Info returns the dictionary's DictInfo.
func (d DictData) Info() DictInfo { return DictInfo{ID: d.ID, Name: d.Name} }

// Data is a bulk load: dictionaries with their entries, plus referring terms.
type Data struct {
	Dictionaries []DictData `json:"dictionaries" yaml:"dictionaries"`
	RefTerms     []string   `json:"refTerms,omitempty" yaml:"refTerms,omitempty"`
}

// DecodeData reads a YAML or JSON data document. An empty document yields
// empty data.
func DecodeData(r io.Reader) (Data, error) {
	var d Data
	if err := yaml.NewDecoder(r).Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return Data{}, fmt.Errorf("decode dictionary data: %w", err)
	}
	return d, nil
}
