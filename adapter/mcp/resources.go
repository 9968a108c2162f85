package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/queries"
)

// RegisterResources registers read-only MCP resources over the task set.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	h := newHandlers(deps)

	srv.Resource("taskglitch://tasks").
		Name("Tasks").
		Description("All tasks with ROI, in display order").
		MimeType("application/json").
		Handler(h.tasksResource)

	srv.Resource("taskglitch://metrics").
		Name("Metrics").
		Description("Revenue, efficiency, average ROI and performance grade").
		MimeType("application/json").
		Handler(h.metricsResource)

	srv.Resource("taskglitch://status").
		Name("Store status").
		Description("Load phase and pending error messages").
		MimeType("application/json").
		Handler(h.statusResource)

	srv.Resource("taskglitch://activity").
		Name("Activity").
		Description("Most recent task events, newest first").
		MimeType("application/json").
		Handler(h.activityResource)

	return nil
}

func (h *handlers) tasksResource(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
	app, err := h.requireApp()
	if err != nil {
		return nil, err
	}
	tasks, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{})
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, tasks)
}

func (h *handlers) metricsResource(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
	m, err := h.taskMetrics(ctx, struct{}{})
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, m)
}

func (h *handlers) statusResource(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
	st, err := h.storeStatus(ctx, struct{}{})
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, st)
}

func (h *handlers) activityResource(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
	if h.activity == nil {
		return jsonResource(uri, []any{})
	}
	return jsonResource(uri, h.activity.Recent())
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
