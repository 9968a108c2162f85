package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskglitch/adapter/cli"
	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App      *cli.App
	Activity *eventbus.ActivityLog
}

// handlers binds tool and resource handlers to their dependencies.
type handlers struct {
	app      *cli.App
	activity *eventbus.ActivityLog
}

func newHandlers(deps ToolDependencies) *handlers {
	return &handlers{app: deps.App, activity: deps.Activity}
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	h := newHandlers(deps)
	registerTaskTools(srv, h)
	registerStoreTools(srv, h)
	return nil
}

// requestContext tags ctx so events and logs carry the MCP source and a
// fresh correlation id.
func requestContext(ctx context.Context) context.Context {
	ctx = observability.NewRequestContext(ctx, observability.CorrelationIDFromContext(ctx))
	return observability.WithSource(ctx, "mcp")
}

func (h *handlers) requireApp() (*cli.App, error) {
	if h.app == nil || h.app.Store == nil {
		return nil, cli.ErrNotInitialized
	}
	return h.app, nil
}
