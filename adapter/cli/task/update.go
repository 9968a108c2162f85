package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskglitch/adapter/cli"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
)

var (
	updateTitle     string
	updateRevenue   float64
	updateTimeTaken float64
	updatePriority  string
	updateStatus    string
	updateNotes     string
)

var updateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update a task",
	Long: `Update fields of an existing task. Only the flags given are changed.

Examples:
  taskglitch task update 3f2a... --status Done
  taskglitch task update 3f2a... --revenue 2500 --time 3`,
	Aliases: []string{"edit"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		var patch task.Patch
		flags := cmd.Flags()
		if flags.Changed("title") {
			patch.Title = &updateTitle
		}
		if flags.Changed("revenue") {
			patch.Revenue = &updateRevenue
		}
		if flags.Changed("time") {
			patch.TimeTaken = &updateTimeTaken
		}
		if flags.Changed("notes") {
			patch.Notes = &updateNotes
		}
		if flags.Changed("priority") {
			p, err := parsePriority(updatePriority)
			if err != nil {
				return err
			}
			patch.Priority = &p
		}
		if flags.Changed("status") {
			s, err := parseStatus(updateStatus)
			if err != nil {
				return err
			}
			patch.Status = &s
		}
		if patch.IsEmpty() {
			return fmt.Errorf("no fields to update; use --title, --revenue, --time, --priority, --status or --notes")
		}

		updated, ok := app.Store.Update(cmd.Context(), args[0], patch)
		if !ok {
			return fmt.Errorf("task not found: %s", args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Task updated: %s (ROI %.2f)\n", updated.ID, updated.ROI)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().Float64VarP(&updateRevenue, "revenue", "r", 0, "new revenue")
	updateCmd.Flags().Float64VarP(&updateTimeTaken, "time", "t", 0, "new time taken in hours")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "new priority (High, Medium, Low)")
	updateCmd.Flags().StringVarP(&updateStatus, "status", "s", "", "new status (Todo, In Progress, Done)")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "new notes")
}
