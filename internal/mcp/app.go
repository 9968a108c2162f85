package mcp

import (
	"github.com/felixgeelhaar/taskglitch/adapter/cli"
	"github.com/felixgeelhaar/taskglitch/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) *cli.App {
	cliApp := cli.NewApp(
		container.Store,
		container.ListTasksHandler,
		container.Health,
	)

	if container.Activity != nil {
		cliApp.SetActivity(container.Activity)
	}

	return cliApp
}
