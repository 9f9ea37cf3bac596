package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/termdex/internal/domain/match"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	before := testutil.ToFloat64(MatchesTotal.WithLabelValues("S"))

	r.ObserveMatches([]match.Match{{Type: match.Start}, {Type: match.Start}, {Type: match.Infix}}, time.Millisecond)
	if got := testutil.ToFloat64(MatchesTotal.WithLabelValues("S")) - before; got != 2 {
		t.Errorf("S matches = %f, want 2", got)
	}
	if testutil.CollectAndCount(MatchDuration) == 0 {
		t.Error("expected match_duration_seconds to have observations")
	}

	r.ObserveFixedTerms(7)
	if got := testutil.ToFloat64(FixedTermsCached); got != 7 {
		t.Errorf("fixed_terms_cached = %f, want 7", got)
	}

	r.ObserveStoreError("find_matches")
	if got := testutil.ToFloat64(StoreErrorsTotal.WithLabelValues("find_matches")); got < 1 {
		t.Errorf("store_errors_total = %f", got)
	}
}

func TestRegisterMatchMetrics_Idempotent(t *testing.T) {
	RegisterMatchMetrics()
	RegisterMatchMetrics()
}
