package query

import (
	"cmp"
	"strconv"

	"github.com/kailas-cloud/termdex/internal/domain/entry"
)

// SelectEntries filters, sorts, pages and prunes entries.
func SelectEntries(p Pager, es []entry.Entry, q EntryQuery) []entry.Entry {
	keep := func(e entry.Entry) bool {
		return q.Filter.ID.Admits(e.ID) && q.Filter.DictID.Admits(e.DictID)
	}
	page := Apply(p, es, keep, EntryOrder(q.Sort), q.Page, q.PerPage)
	return PruneEntries(page, q.Z)
}

// EntryOrder returns the comparator for an entry sort name.
func EntryOrder(sort string) func(a, b entry.Entry) int {
	switch sort {
	case SortByID:
		return func(a, b entry.Entry) int { return entry.Compare(a.ID, b.ID) }
	case SortByStr:
		return func(a, b entry.Entry) int {
			return cmp.Or(
				entry.Compare(a.FirstStr(), b.FirstStr()),
				entry.Compare(a.DictID, b.DictID),
				entry.Compare(a.ID, b.ID),
			)
		}
	default:
		return func(a, b entry.Entry) int {
			return cmp.Or(entry.Compare(a.DictID, b.DictID), entry.Compare(a.ID, b.ID))
		}
	}
}

// SelectDictInfos filters, sorts and pages dictionary infos.
func SelectDictInfos(p Pager, ds []entry.DictInfo, q DictInfoQuery) []entry.DictInfo {
	keep := func(d entry.DictInfo) bool {
		return q.Filter.ID.Admits(d.ID) && q.Filter.Name.Admits(d.Name)
	}
	order := func(a, b entry.DictInfo) int { return entry.Compare(a.ID, b.ID) }
	if q.Sort == SortByName {
		order = func(a, b entry.DictInfo) int {
			return cmp.Or(entry.Compare(a.Name, b.Name), entry.Compare(a.ID, b.ID))
		}
	}
	return Apply(p, ds, keep, order, q.Page, q.PerPage)
}

// SelectRefTerms filters, sorts and pages referring terms.
func SelectRefTerms(p Pager, rs []string, q RefTermQuery) []string {
	return Apply(p, rs, q.Filter.Str.Admits, entry.Compare, q.Page, q.PerPage)
}

// CompareIDs orders concept ids numerically when both parse as numbers,
// otherwise as strings.
func CompareIDs(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		if c := cmp.Compare(fa, fb); c != 0 {
			return c
		}
	}
	return entry.Compare(a, b)
}
