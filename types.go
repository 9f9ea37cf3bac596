package termdex

import (
	"github.com/kailas-cloud/termdex/internal/domain/batch"
	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

// Dictionary data.
type (
	// Entry is a concept with one or more terms.
	Entry = entry.Entry
	// Term is one spelling of a concept.
	Term = entry.Term
	// DictInfo names a dictionary.
	DictInfo = entry.DictInfo
	// Input is an entry to add. Its id may be a string or a number.
	Input = entry.Input
	// TermsInput accepts a bare string, one term or a mixed list.
	TermsInput = entry.TermsInput
	// Update is a partial entry change.
	Update = entry.Update
	// KeySet selects metadata keys to delete in an Update.
	KeySet = entry.KeySet
	// Data is a bulk load of dictionaries, entries and referring terms.
	Data = entry.Data
	// DictData is a dictionary with its entries.
	DictData = entry.DictData
	// IDPolicy turns numeric entry ids into string ids.
	IDPolicy = entry.IDPolicy
	// PaddedIDs builds "<dictID>:<n>" with n zero-padded.
	PaddedIDs = entry.PaddedIDs
	// UUIDIDs derives a name-based UUID per dictionary and number.
	UUIDIDs = entry.UUIDIDs
)

// Matches.
type (
	Match     = match.Match
	MatchType = match.Type
)

// Match types in result precedence order.
const (
	MatchNumber     = match.Number
	MatchReferring  = match.Referring
	MatchFixedStart = match.FixedStart
	MatchFixedInfix = match.FixedInfix
	MatchStart      = match.Start
	MatchInfix      = match.Infix
)

// Queries.
type (
	EntryQuery     = query.EntryQuery
	EntryFilter    = query.EntryFilter
	DictInfoQuery  = query.DictInfoQuery
	DictInfoFilter = query.DictInfoFilter
	RefTermQuery   = query.RefTermQuery
	RefTermFilter  = query.RefTermFilter
	MatchQuery     = query.MatchQuery
	MatchFilter    = query.MatchFilter
	MatchSort      = query.MatchSort
	IDT            = query.IDT
	Selection      = query.Selection
	ZSpec          = query.ZSpec
)

// Sort orders.
const (
	SortByDictID = query.SortByDictID
	SortByID     = query.SortByID
	SortByStr    = query.SortByStr
	SortByName   = query.SortByName
)

// BatchResult reports the outcome of one item of a bulk write.
type BatchResult = batch.Result

// Any is a filter that admits every value.
func Any() Selection { return query.Any() }

// Of is a filter that admits only the given values. Of() admits nothing.
func Of(values ...string) Selection { return query.Of(values...) }

// ZAll keeps all metadata.
func ZAll() ZSpec { return query.ZAll() }

// ZNone drops all metadata.
func ZNone() ZSpec { return query.ZNone() }

// ZKeys keeps only the named metadata keys.
func ZKeys(keys ...string) ZSpec { return query.ZKeys(keys...) }

// StringID is an entry id given as a string.
func StringID(s string) entry.RawID { return entry.StringID(s) }

// NumberID is an entry id given as a number, resolved by the IDPolicy.
func NumberID(n int64) entry.RawID { return entry.NumberID(n) }

// AllKeys deletes all metadata in an Update.
func AllKeys() KeySet { return entry.AllKeys() }

// Keys deletes the named metadata keys in an Update.
func Keys(keys ...string) KeySet { return entry.Keys(keys...) }
