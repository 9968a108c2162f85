package cli

import (
	"errors"

	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/queries"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/store"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
)

// ErrNotInitialized is returned by commands run without an App.
var ErrNotInitialized = errors.New("application not initialized")

// App holds the CLI application dependencies.
type App struct {
	Store            *store.Store
	ListTasksHandler *queries.ListTasksHandler
	Health           *observability.HealthRegistry
	Activity         *eventbus.ActivityLog
}

// NewApp creates a new CLI application.
func NewApp(st *store.Store, listTasksHandler *queries.ListTasksHandler, health *observability.HealthRegistry) *App {
	return &App{
		Store:            st,
		ListTasksHandler: listTasksHandler,
		Health:           health,
	}
}

// SetActivity attaches the recent-event log exposed over MCP.
func (a *App) SetActivity(activity *eventbus.ActivityLog) {
	a.Activity = activity
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the App or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil || app.Store == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
