package termdex

import (
	"context"

	healthuc "github.com/kailas-cloud/termdex/internal/usecase/health"
)

// HealthStatus represents the aggregated dictionary health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

// Health reports backend reachability and whether the last fixed-term
// load succeeded.
func (d *Dictionary) Health(ctx context.Context) HealthStatus {
	report := d.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
