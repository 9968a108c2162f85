package observability

import (
	"context"
	"sync"
	"time"
)

// HealthStatus is a component's state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResult is one checker's outcome. Duration and Timestamp are
// filled in by the registry.
type HealthCheckResult struct {
	Status    HealthStatus   `json:"status"`
	Message   string         `json:"message,omitempty"`
	Duration  time.Duration  `json:"duration_ns"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// HealthChecker probes one component.
type HealthChecker func(ctx context.Context) HealthCheckResult

// HealthRegistry holds named checkers for the storage, event and source
// components.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checkers: make(map[string]HealthChecker)}
}

// Register adds or replaces the checker for name.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Check runs every checker concurrently.
func (r *HealthRegistry) Check(ctx context.Context) map[string]HealthCheckResult {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for name, checker := range r.checkers {
		checkers[name] = checker
	}
	r.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]HealthCheckResult, len(checkers))
	)
	for name, checker := range checkers {
		wg.Go(func() {
			result := run(ctx, checker)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		})
	}
	wg.Wait()
	return results
}

// CheckOne runs a single checker. It reports false for an unknown name.
func (r *HealthRegistry) CheckOne(ctx context.Context, name string) (HealthCheckResult, bool) {
	r.mu.RLock()
	checker, ok := r.checkers[name]
	r.mu.RUnlock()
	if !ok {
		return HealthCheckResult{}, false
	}
	return run(ctx, checker), true
}

func run(ctx context.Context, checker HealthChecker) HealthCheckResult {
	start := time.Now()
	result := checker(ctx)
	result.Timestamp = time.Now()
	result.Duration = result.Timestamp.Sub(start)
	return result
}

// OverallHealth is one pass over every registered checker.
type OverallHealth struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks"`
}

// GetOverallHealth runs all checks. The worst component status wins and an
// empty registry is healthy.
func (r *HealthRegistry) GetOverallHealth(ctx context.Context) OverallHealth {
	checks := r.Check(ctx)
	return OverallHealth{
		Status:    worstStatus(checks),
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

var statusRank = map[HealthStatus]int{
	HealthStatusHealthy:   0,
	HealthStatusDegraded:  1,
	HealthStatusUnhealthy: 2,
}

func worstStatus(checks map[string]HealthCheckResult) HealthStatus {
	worst := HealthStatusHealthy
	for _, result := range checks {
		if statusRank[result.Status] > statusRank[worst] {
			worst = result.Status
		}
	}
	return worst
}

func pingChecker(component, driver string, failStatus HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		result := HealthCheckResult{
			Status:  HealthStatusHealthy,
			Message: component + " reachable",
			Details: map[string]any{"driver": driver},
		}
		if err := ping(ctx); err != nil {
			result.Status = failStatus
			result.Message = component + " unreachable: " + err.Error()
		}
		return result
	}
}

// StorageHealthChecker checks the persistence backend. A failing store is
// degraded: mutations keep working in memory and writes are retried on the
// next mutation.
func StorageHealthChecker(driver string, ping func(ctx context.Context) error) HealthChecker {
	return pingChecker("storage", driver, HealthStatusDegraded, ping)
}

// EventBusHealthChecker checks the event publisher connection.
// Publishing is best effort, so a lost broker only degrades.
func EventBusHealthChecker(driver string, ping func(ctx context.Context) error) HealthChecker {
	return pingChecker("event bus", driver, HealthStatusDegraded, ping)
}

// BreakerHealthChecker maps a circuit breaker state name to a status.
func BreakerHealthChecker(name string, state func() string) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		current := state()
		result := HealthCheckResult{
			Status:  HealthStatusHealthy,
			Message: name + " breaker " + current,
			Details: map[string]any{"state": current},
		}
		switch current {
		case "open":
			result.Status = HealthStatusUnhealthy
		case "half-open":
			result.Status = HealthStatusDegraded
		}
		return result
	}
}
