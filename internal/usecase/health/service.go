package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates searches work but addresses resolve to the default location.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
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

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store    StorePinger
	geocoder GeocoderChecker
}

// New creates a Service. geocoder can be nil.
func New(store StorePinger, geocoder GeocoderChecker) *Service {
	return &Service{store: store, geocoder: geocoder}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if s.geocoder != nil {
		if err := s.geocoder.HealthCheck(ctx); err != nil {
			checks["geocoder"] = CheckError
			status = Degraded
		} else {
			checks["geocoder"] = CheckOK
		}
	}

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
		status = Unhealthy
	} else {
		checks["store"] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}
