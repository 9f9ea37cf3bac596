package match

import (
	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

// Type tags where a match came from.
type Type string

// Match types, listed in result precedence order.
const (
	Number     Type = "N" // synthesized from a numeric query
	Referring  Type = "R" // exact referring-term hit
	FixedStart Type = "F" // fixed term, prefix hit
	FixedInfix Type = "G" // fixed term, infix hit
	Start      Type = "S" // store term, prefix hit
	Infix      Type = "T" // store term, infix hit
)

// Literal descriptions of synthesized matches.
const (
	DescrNumber    = "[number]"
	DescrReferring = "[referring term]"
)

var rank = map[Type]int{Number: 0, Referring: 1, FixedStart: 2, FixedInfix: 3, Start: 4, Infix: 5}

// Rank returns the precedence of a type; unknown types sort last.
func (t Type) Rank() int {
	if r, ok := rank[t]; ok {
		return r
	}
	return len(rank)
}

// Match is one ranked search result: an entry seen through one of its terms.
type Match struct {
	ID     string         `json:"id" msgpack:"id"`
	DictID string         `json:"dictID" msgpack:"dictID"`
	Str    string         `json:"str" msgpack:"str"`
	Type   Type           `json:"type" msgpack:"type"`
	Terms  []entry.Term   `json:"terms,omitempty" msgpack:"terms,omitempty"`
	Descr  string         `json:"descr,omitempty" msgpack:"descr,omitempty"`
	Style  string         `json:"style,omitempty" msgpack:"style,omitempty"`
	Z      map[string]any `json:"z,omitempty" msgpack:"z,omitempty"`
}

// FromEntry builds the match for the term at pos. The term's descr
// overrides the entry's when set. Terms and Z are copied.
func FromEntry(e entry.Entry, pos int, t Type) Match {
	term := e.Terms[pos]
	descr := e.Descr
	if term.Descr != "" {
		descr = term.Descr
	}
	return Match{
		ID:     e.ID,
		DictID: e.DictID,
		Str:    term.Str,
		Type:   t,
		Terms:  append([]entry.Term(nil), e.Terms...),
		Descr:  descr,
		Style:  term.Style,
		Z:      entry.CloneZ(e.Z),
	}
}

// Clone returns a deep copy.
func (m Match) Clone() Match {
	out := m
	out.Terms = append([]entry.Term(nil), m.Terms...)
	out.Z = entry.CloneZ(m.Z)
	return out
}

// Prune returns copies of the matches with metadata pruned by z.
// Inputs are never modified.
func Prune(ms []Match, z query.ZSpec) []Match {
	if z.KeepsAll() {
		return ms
	}
	out := make([]Match, len(ms))
	for i, m := range ms {
		m.Z = z.Prune(m.Z)
		out[i] = m
	}
	return out
}

type key struct{ id, str string }

// Dedup keeps the first match of every (ID, Str) pair.
func Dedup(ms []Match) []Match {
	seen := make(map[key]struct{}, len(ms))
	out := make([]Match, 0, len(ms))
	for _, m := range ms {
		k := key{m.ID, m.Str}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out
}
