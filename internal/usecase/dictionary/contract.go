package dictionary

import (
	"context"
	"time"

	"github.com/kailas-cloud/termdex/internal/domain/batch"
	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
)

// EntryReader fetches entries. Fixed-term preloading depends only on this.
type EntryReader interface {
	GetEntries(ctx context.Context, q query.EntryQuery) ([]entry.Entry, error)
}

// MatchFinder returns the normal (substring and referring-term) matches of
// one page, already sorted.
type MatchFinder interface {
	FindMatches(ctx context.Context, str string, q query.MatchQuery) ([]match.Match, error)
}

// DictInfoReader lists dictionaries.
type DictInfoReader interface {
	GetDictInfos(ctx context.Context, q query.DictInfoQuery) ([]entry.DictInfo, error)
}

// RefTermReader lists referring terms.
type RefTermReader interface {
	GetRefTerms(ctx context.Context, q query.RefTermQuery) ([]string, error)
}

// Store is the capability every entry backend (local, Redis, remote) offers.
type Store interface {
	EntryReader
	MatchFinder
	DictInfoReader
	RefTermReader
}

// Writer mutates a writable backend. Bulk calls report one result per item;
// a failing item does not stop the others.
type Writer interface {
	AddDictInfos(ctx context.Context, ds []entry.DictInfo) []batch.Result
	UpdateDictInfos(ctx context.Context, ds []entry.DictInfo) []batch.Result
	DeleteDictInfos(ctx context.Context, ids []string) []batch.Result
	AddEntries(ctx context.Context, es []entry.Input) []batch.Result
	UpdateEntries(ctx context.Context, us []entry.Update) []batch.Result
	DeleteEntries(ctx context.Context, ids []string) []batch.Result
	AddRefTerms(ctx context.Context, terms []string) []batch.Result
	DeleteRefTerms(ctx context.Context, terms []string) []batch.Result
	AddDictionaryData(ctx context.Context, d entry.Data) error
}

// Recorder observes match results.
type Recorder interface {
	ObserveMatches(ms []match.Match, d time.Duration)
	ObserveFixedTerms(cached int)
	ObserveStoreError(op string)
}
