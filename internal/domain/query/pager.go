package query

import "slices"

// Default pagination limits.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pager clamps page/perPage into valid windows.
type Pager struct {
	Default int
	Max     int
}

// DefaultPager returns the 20/100 pager.
func DefaultPager() Pager {
	return Pager{Default: DefaultPerPage, Max: MaxPerPage}
}

// Normalize clamps page to >= 1 and perPage to [1, Max], using Default
// when perPage is unset.
func (p Pager) Normalize(page, perPage int) (int, int) {
	def, maxPer := p.Default, p.Max
	if def <= 0 {
		def = DefaultPerPage
	}
	if maxPer <= 0 {
		maxPer = MaxPerPage
	}
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = def
	}
	perPage = min(max(perPage, 1), maxPer)
	return page, perPage
}

// Window returns the [start, end) bounds of a page over n items.
func (p Pager) Window(n, page, perPage int) (int, int) {
	page, perPage = p.Normalize(page, perPage)
	start := (page - 1) * perPage
	if start >= n || start < 0 {
		return n, n
	}
	return start, min(start+perPage, n)
}

// Apply filters items with keep, stable-sorts them with cmp and returns the
// requested page. keep may be nil. cmp must be a total order.
func Apply[T any](p Pager, items []T, keep func(T) bool, cmp func(a, b T) int, page, perPage int) []T {
	kept := make([]T, 0, len(items))
	for _, it := range items {
		if keep == nil || keep(it) {
			kept = append(kept, it)
		}
	}
	if cmp != nil {
		slices.SortStableFunc(kept, cmp)
	}
	start, end := p.Window(len(kept), page, perPage)
	return kept[start:end]
}
