package termdex

import (
	"context"

	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
	healthuc "github.com/kailas-cloud/termdex/internal/usecase/health"
)

// --- engine mock ---

type mockEngine struct {
	err error
}

func (m *mockEngine) GetMatchesForString(context.Context, string, query.MatchQuery) ([]match.Match, error) {
	return nil, m.err
}

func (m *mockEngine) LoadFixedTerms(context.Context, []query.IDT, query.EntryQuery) error {
	return m.err
}

func (m *mockEngine) ResetFixedTerms() {}

func (m *mockEngine) GetEntries(context.Context, query.EntryQuery) ([]entry.Entry, error) {
	return nil, m.err
}

func (m *mockEngine) GetDictInfos(context.Context, query.DictInfoQuery) ([]entry.DictInfo, error) {
	return nil, m.err
}

func (m *mockEngine) GetRefTerms(context.Context, query.RefTermQuery) ([]string, error) {
	return nil, m.err
}

// --- health mock ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }
