package termdex

import (
	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/numexp"
)

// CanonicalizeTerms deduplicates terms by string; a later duplicate replaces
// the earlier one in place. Fails with ErrInvalidTerm on an empty string.
func CanonicalizeTerms(terms []Term) ([]Term, error) {
	return entry.CanonicalizeTerms(terms)
}

// CanonicalizeEntry turns an input into a strict entry. A numeric id is kept
// as its decimal string; use a Dictionary to apply an IDPolicy.
func CanonicalizeEntry(in Input) (Entry, error) {
	return entry.CanonicalizeEntry(in)
}

// PruneZ returns copies of the matches with metadata reduced to z.
func PruneZ(ms []Match, z ZSpec) []Match {
	return match.Prune(ms, z)
}

// ToExponential returns the canonical exponential form of a numeral, e.g.
// "12" gives "1.2e+1". ok is false when s is not a number.
func ToExponential(s string) (exp string, ok bool) {
	return numexp.ToExponential(s)
}
