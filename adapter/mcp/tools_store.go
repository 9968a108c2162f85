package mcp

import (
	"context"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/store"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
)

type componentHealth struct {
	Name string `json:"name"`
	observability.HealthCheckResult
}

type healthInput struct {
	Component string `json:"component,omitempty"`
}

type healthResult struct {
	Status observability.HealthStatus `json:"status"`
	Checks []componentHealth          `json:"checks"`
}

func registerStoreTools(srv *mcp.Server, h *handlers) {
	srv.Tool("store.status").
		Description("Load phase, error messages, task count and undo availability").
		Handler(h.storeStatus)

	srv.Tool("store.dismiss_error").
		Description("Hide the current load or persistence error message").
		Handler(h.dismissError)

	srv.Tool("store.health").
		Description("Run health checks for storage, event bus and task source. Pass component to run one check.").
		Handler(h.storeHealth)
}

func (h *handlers) storeStatus(ctx context.Context, input struct{}) (*store.Status, error) {
	app, err := h.requireApp()
	if err != nil {
		return nil, err
	}
	status := app.Store.Status()
	return &status, nil
}

func (h *handlers) dismissError(ctx context.Context, input struct{}) (*store.Status, error) {
	app, err := h.requireApp()
	if err != nil {
		return nil, err
	}
	app.Store.DismissError()
	status := app.Store.Status()
	return &status, nil
}

func (h *handlers) storeHealth(ctx context.Context, input healthInput) (*healthResult, error) {
	app, err := h.requireApp()
	if err != nil {
		return nil, err
	}
	if app.Health == nil {
		return &healthResult{Status: observability.HealthStatusHealthy}, nil
	}

	if input.Component != "" {
		result, ok := app.Health.CheckOne(ctx, input.Component)
		if !ok {
			return nil, fmt.Errorf("unknown health component: %s", input.Component)
		}
		return &healthResult{
			Status: result.Status,
			Checks: []componentHealth{{Name: input.Component, HealthCheckResult: result}},
		}, nil
	}

	overall := app.Health.GetOverallHealth(ctx)
	checks := make([]componentHealth, 0, len(overall.Checks))
	for name, result := range overall.Checks {
		checks = append(checks, componentHealth{Name: name, HealthCheckResult: result})
	}
	sort.Slice(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })

	return &healthResult{Status: overall.Status, Checks: checks}, nil
}
