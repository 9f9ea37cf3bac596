package dictionary

import (
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/numexp"
)

// NumberMatchConfig controls synthesized number matches.
type NumberMatchConfig struct {
	Disabled        bool
	DictID          string
	ConceptIDPrefix string
}

// DefaultNumberMatchConfig puts numbers in dictionary "00" with ids "00:<exp>".
func DefaultNumberMatchConfig() NumberMatchConfig {
	return NumberMatchConfig{DictID: "00", ConceptIDPrefix: "00:"}
}

// Match synthesizes the number match for str, if str is a numeral.
func (c NumberMatchConfig) Match(str string) (match.Match, bool) {
	if c.Disabled || str == "" {
		return match.Match{}, false
	}
	exp, ok := numexp.ToExponential(str)
	if !ok {
		return match.Match{}, false
	}
	return match.Match{
		ID:     c.ConceptIDPrefix + exp,
		DictID: c.DictID,
		Str:    str,
		Descr:  match.DescrNumber,
		Type:   match.Number,
	}, true
}
