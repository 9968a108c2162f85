package task

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskglitch/adapter/cli"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/queries"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
)

var (
	listSearch   string
	listStatus   string
	listPriority string
	listLimit    int
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks by ROI",
	Long: `List tasks ordered by ROI, then priority, then title.

Filter Options:
  --search      Case-insensitive title substring
  --status      Todo, In Progress, Done or All
  --priority    High, Medium, Low or All

Examples:
  taskglitch task list
  taskglitch task list --status Done
  taskglitch task list --search acme --limit 5`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		status, err := filterValue(listStatus, func(s string) (string, error) {
			st, err := parseStatus(s)
			return string(st), err
		})
		if err != nil {
			return err
		}
		priority, err := filterValue(listPriority, func(s string) (string, error) {
			p, err := parsePriority(s)
			return string(p), err
		})
		if err != nil {
			return err
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), queries.ListTasksQuery{
			Filter: queries.Filter{
				Search:   listSearch,
				Status:   status,
				Priority: priority,
			},
			Limit: listLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(tasks)
		}

		if msg := app.Store.Err(); msg != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
		}

		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		fmt.Fprintf(out, "Tasks (%d):\n", len(tasks))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, t := range tasks {
			printTask(cmd, t)
		}
		return nil
	},
}

func printTask(cmd *cobra.Command, t task.DerivedTask) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s %s\n", getStatusIcon(t.Status), t.Title, getPriorityBadge(t.Priority))
	fmt.Fprintf(out, "   ID: %s  ROI: %.2f  Revenue: %.2f  Time: %gh\n",
		shortID(t.ID), t.ROI, t.Revenue, t.TimeTaken)
	if t.Notes != "" {
		fmt.Fprintf(out, "   Notes: %s\n", t.Notes)
	}
	fmt.Fprintln(out)
}

func init() {
	listCmd.Flags().StringVar(&listSearch, "search", "", "case-insensitive title search")
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status (Todo, In Progress, Done, All)")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "filter by priority (High, Medium, Low, All)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "max number of tasks to show (0 = no limit)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
