package match

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

// Classify returns Start when s (lowercased) begins with q, Infix when it
// contains q, and false otherwise. q must already be lowercase.
func Classify(s, q string) (Type, bool) {
	ls := strings.ToLower(s)
	switch {
	case strings.HasPrefix(ls, q):
		return Start, true
	case strings.Contains(ls, q):
		return Infix, true
	default:
		return "", false
	}
}

// candidate is one (entry, term position) pair that hit the query.
type candidate struct {
	e        *entry.Entry
	pos      int
	typ      Type
	priority int
}

func compareCandidates(a, b candidate) int {
	return cmp.Or(
		cmp.Compare(a.priority, b.priority),
		cmp.Compare(a.typ.Rank(), b.typ.Rank()),
		entry.Compare(a.e.Terms[a.pos].Str, b.e.Terms[b.pos].Str),
		entry.Compare(a.e.DictID, b.e.DictID),
		cmp.Compare(a.pos, b.pos),
		query.CompareIDs(a.e.ID, b.e.ID),
	)
}

// Substring returns the requested page of prefix and infix matches of str
// over every term of every entry. An empty str yields no matches.
func Substring(p query.Pager, entries []entry.Entry, str string, q query.MatchQuery) []Match {
	if str == "" {
		return nil
	}
	lq := strings.ToLower(str)

	var cands []candidate
	for i := range entries {
		e := &entries[i]
		if !q.Filter.DictID.Admits(e.DictID) {
			continue
		}
		priority := 1
		if q.Sort.DictID.Contains(e.DictID) {
			priority = 0
		}
		for pos, t := range e.Terms {
			typ, ok := Classify(t.Str, lq)
			if !ok {
				continue
			}
			cands = append(cands, candidate{e: e, pos: pos, typ: typ, priority: priority})
		}
	}

	slices.SortStableFunc(cands, compareCandidates)
	start, end := p.Window(len(cands), q.Page, q.PerPage)

	out := make([]Match, 0, end-start)
	for _, c := range cands[start:end] {
		out = append(out, FromEntry(*c.e, c.pos, c.typ))
	}
	return Prune(out, q.Z)
}

// ResolveRefTerm returns the referring term equal to str ignoring case.
func ResolveRefTerm(refTerms []string, str string) (Match, bool) {
	if str == "" {
		return Match{}, false
	}
	lq := strings.ToLower(str)
	for _, r := range refTerms {
		if strings.ToLower(r) == lq {
			return RefTerm(r), true
		}
	}
	return Match{}, false
}

// RefTerm wraps a referring term as a match.
func RefTerm(term string) Match {
	return Match{Str: term, Descr: DescrReferring, Type: Referring}
}
