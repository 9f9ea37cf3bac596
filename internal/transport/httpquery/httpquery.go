// Package httpquery maps query option structs to and from URL query strings.
//
// Selections use repeated keys (id=a&id=b). An absent key is an inactive
// filter; a single empty value (id=) is an active filter that admits nothing.
// The z option is true, false or a repeated list of metadata keys. Fixed-term
// ids travel as a JSON array in idts.
package httpquery

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/kailas-cloud/termdex/internal/domain"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

// Parameter names.
const (
	ParamID         = "id"
	ParamDictID     = "dictID"
	ParamName       = "name"
	ParamStr        = "str"
	ParamSort       = "sort"
	ParamSortDictID = "sortDictID"
	ParamPage       = "page"
	ParamPerPage    = "perPage"
	ParamZ          = "z"
	ParamIDTs       = "idts"
)

// EncodeEntryQuery renders an entry query.
func EncodeEntryQuery(q query.EntryQuery) url.Values {
	v := url.Values{}
	putSelection(v, ParamID, q.Filter.ID)
	putSelection(v, ParamDictID, q.Filter.DictID)
	putString(v, ParamSort, q.Sort)
	putPage(v, q.Page, q.PerPage)
	putZ(v, q.Z)
	return v
}

// DecodeEntryQuery parses an entry query.
func DecodeEntryQuery(v url.Values) (query.EntryQuery, error) {
	q := query.EntryQuery{
		Filter: query.EntryFilter{
			ID:     selection(v, ParamID),
			DictID: selection(v, ParamDictID),
		},
		Sort: v.Get(ParamSort),
		Z:    zspec(v),
	}
	switch q.Sort {
	case "", query.SortByDictID, query.SortByID, query.SortByStr:
	default:
		return query.EntryQuery{}, invalid(ParamSort, q.Sort)
	}
	var err error
	if q.Page, q.PerPage, err = page(v); err != nil {
		return query.EntryQuery{}, err
	}
	return q, nil
}

// EncodeDictInfoQuery renders a dictionary query.
func EncodeDictInfoQuery(q query.DictInfoQuery) url.Values {
	v := url.Values{}
	putSelection(v, ParamID, q.Filter.ID)
	putSelection(v, ParamName, q.Filter.Name)
	putString(v, ParamSort, q.Sort)
	putPage(v, q.Page, q.PerPage)
	return v
}

// DecodeDictInfoQuery parses a dictionary query.
func DecodeDictInfoQuery(v url.Values) (query.DictInfoQuery, error) {
	q := query.DictInfoQuery{
		Filter: query.DictInfoFilter{
			ID:   selection(v, ParamID),
			Name: selection(v, ParamName),
		},
		Sort: v.Get(ParamSort),
	}
	switch q.Sort {
	case "", query.SortByID, query.SortByName:
	default:
		return query.DictInfoQuery{}, invalid(ParamSort, q.Sort)
	}
	var err error
	if q.Page, q.PerPage, err = page(v); err != nil {
		return query.DictInfoQuery{}, err
	}
	return q, nil
}

// EncodeRefTermQuery renders a referring-term query.
func EncodeRefTermQuery(q query.RefTermQuery) url.Values {
	v := url.Values{}
	putSelection(v, ParamStr, q.Filter.Str)
	putPage(v, q.Page, q.PerPage)
	return v
}

// DecodeRefTermQuery parses a referring-term query.
func DecodeRefTermQuery(v url.Values) (query.RefTermQuery, error) {
	q := query.RefTermQuery{Filter: query.RefTermFilter{Str: selection(v, ParamStr)}}
	var err error
	if q.Page, q.PerPage, err = page(v); err != nil {
		return query.RefTermQuery{}, err
	}
	return q, nil
}

// EncodeMatchQuery renders a string search. The searched string goes in str.
func EncodeMatchQuery(str string, q query.MatchQuery) (url.Values, error) {
	v := url.Values{}
	putString(v, ParamStr, str)
	putSelection(v, ParamDictID, q.Filter.DictID)
	putSelection(v, ParamSortDictID, q.Sort.DictID)
	putPage(v, q.Page, q.PerPage)
	putZ(v, q.Z)
	if len(q.IDTs) > 0 {
		raw, err := json.Marshal(q.IDTs)
		if err != nil {
			return nil, fmt.Errorf("encode idts: %w", err)
		}
		v.Set(ParamIDTs, string(raw))
	}
	return v, nil
}

// DecodeMatchQuery parses a string search and returns the searched string.
func DecodeMatchQuery(v url.Values) (string, query.MatchQuery, error) {
	q := query.MatchQuery{
		Filter: query.MatchFilter{DictID: selection(v, ParamDictID)},
		Sort:   query.MatchSort{DictID: selection(v, ParamSortDictID)},
		Z:      zspec(v),
	}
	var err error
	if q.Page, q.PerPage, err = page(v); err != nil {
		return "", query.MatchQuery{}, err
	}
	if raw := v.Get(ParamIDTs); raw != "" {
		if err := json.Unmarshal([]byte(raw), &q.IDTs); err != nil {
			return "", query.MatchQuery{}, fmt.Errorf("%s: %w: %w", ParamIDTs, domain.ErrInvalidQuery, err)
		}
	}
	return v.Get(ParamStr), q, nil
}

func putSelection(v url.Values, key string, s query.Selection) {
	if !s.Active() {
		return
	}
	if len(s.Values()) == 0 {
		v.Set(key, "")
		return
	}
	for _, x := range s.Values() {
		v.Add(key, x)
	}
}

func selection(v url.Values, key string) query.Selection {
	raw, ok := v[key]
	if !ok {
		return query.Any()
	}
	vals := make([]string, 0, len(raw))
	for _, x := range raw {
		if x != "" {
			vals = append(vals, x)
		}
	}
	return query.Of(vals...)
}

func putZ(v url.Values, z query.ZSpec) {
	switch {
	case z.KeepsAll():
	case z.DropsAll():
		v.Set(ParamZ, "false")
	case len(z.Keys()) == 0:
		v.Set(ParamZ, "")
	default:
		for _, k := range z.Keys() {
			v.Add(ParamZ, k)
		}
	}
}

func zspec(v url.Values) query.ZSpec {
	raw, ok := v[ParamZ]
	if !ok {
		return query.ZAll()
	}
	if len(raw) == 1 {
		switch raw[0] {
		case "true":
			return query.ZAll()
		case "false":
			return query.ZNone()
		}
	}
	var keys []string
	for _, k := range raw {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return query.ZKeys(keys...)
}

func putString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}

func putPage(v url.Values, page, perPage int) {
	if page > 0 {
		v.Set(ParamPage, strconv.Itoa(page))
	}
	if perPage > 0 {
		v.Set(ParamPerPage, strconv.Itoa(perPage))
	}
}

// page parses page and perPage. Out-of-range numbers are left to the pager;
// only non-numeric values are rejected.
func page(v url.Values) (int, int, error) {
	p, err := intParam(v, ParamPage)
	if err != nil {
		return 0, 0, err
	}
	pp, err := intParam(v, ParamPerPage)
	if err != nil {
		return 0, 0, err
	}
	return p, pp, nil
}

func intParam(v url.Values, key string) (int, error) {
	raw := v.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(key, raw)
	}
	return n, nil
}

func invalid(key, val string) error {
	return fmt.Errorf("%s=%q: %w", key, val, domain.ErrInvalidQuery)
}
