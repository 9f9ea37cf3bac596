package health

import "context"

// BackendPinger checks entry backend availability.
type BackendPinger interface {
	Ping(ctx context.Context) error
}

// FixedTermsChecker reports whether the configured fixed terms are loaded.
type FixedTermsChecker interface {
	HealthCheck(ctx context.Context) error
}
