package dictionary

import (
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

// mergeExtras adds fixed-term and number matches to the first page of
// normal matches. The result runs N, R, F/G, then S/T. Other pages are
// returned unchanged.
func mergeExtras(
	p query.Pager, normal, fixed []match.Match, number *match.Match, q query.MatchQuery,
) []match.Match {
	if page, _ := p.Normalize(q.Page, q.PerPage); page > 1 {
		return normal
	}

	out := append([]match.Match(nil), normal...)

	if len(fixed) > 0 {
		var ref []match.Match
		if len(out) > 0 && out[0].Type == match.Referring {
			ref, out = out[:1:1], out[1:]
		}
		merged := make([]match.Match, 0, len(ref)+len(fixed)+len(out))
		merged = append(merged, ref...)
		merged = append(merged, fixed...)
		merged = append(merged, out...)
		out = match.Dedup(merged)
	}

	if number != nil {
		n := *number
		for i, m := range out {
			if m.ID != n.ID {
				continue
			}
			n = m
			if n.Descr == "" {
				n.Descr = match.DescrNumber
			}
			out = append(out[:i:i], out[i+1:]...)
			break
		}
		n.Type = match.Number
		out = append([]match.Match{n}, out...)
	}

	return out
}
