package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskglitch/adapter/cli"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Short:   "Delete a task",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		if !app.Store.Delete(cmd.Context(), args[0]) {
			return fmt.Errorf("task not found: %s", args[0])
		}

		deleted, _ := app.Store.LastDeleted()
		fmt.Fprintf(cmd.OutOrStdout(), "Task deleted: %s (%s)\n", deleted.ID, deleted.Title)
		return nil
	},
}
