package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the backend answers but fixed terms are missing.
	Degraded Status = "degraded"
	// Unhealthy indicates the backend is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Check names.
const (
	CheckBackend    = "backend"
	CheckFixedTerms = "fixed_terms"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	backend BackendPinger
	fixed   FixedTermsChecker
}

// New creates a Service. Either checker can be nil; a nil backend is an
// in-process store and always passes.
func New(backend BackendPinger, fixed FixedTermsChecker) *Service {
	return &Service{backend: backend, fixed: fixed}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{CheckBackend: CheckOK}
	status := Healthy

	if s.backend != nil {
		if err := s.backend.Ping(ctx); err != nil {
			checks[CheckBackend] = CheckError
			status = Unhealthy
		}
	}

	if s.fixed != nil {
		if err := s.fixed.HealthCheck(ctx); err != nil {
			checks[CheckFixedTerms] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks[CheckFixedTerms] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
