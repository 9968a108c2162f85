package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskglitch/adapter/cli"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
)

var (
	addID        string
	addRevenue   float64
	addTimeTaken float64
	addPriority  string
	addStatus    string
	addNotes     string
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a sales task",
	Long: `Add a sales task with revenue and time spent.

Time taken must be positive; anything else is stored as 1 hour.

Examples:
  taskglitch task add "Call Acme" --revenue 1200 --time 2 --priority High
  taskglitch task add "Send proposal" -r 500 -t 0.5 -s "In Progress"`,
	Aliases: []string{"create"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		priority, err := parsePriority(addPriority)
		if err != nil {
			return err
		}
		status, err := parseStatus(addStatus)
		if err != nil {
			return err
		}

		added := app.Store.Add(cmd.Context(), task.NewTask{
			ID:        addID,
			Title:     args[0],
			Revenue:   addRevenue,
			TimeTaken: addTimeTaken,
			Priority:  priority,
			Status:    status,
			Notes:     addNotes,
		})
		if err := app.Store.PersistErr(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Task added: %s\n", added.ID)
		fmt.Fprintf(out, "  title: %s\n", added.Title)
		fmt.Fprintf(out, "  roi:   %.2f\n", added.ROI)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "task id (generated when empty)")
	addCmd.Flags().Float64VarP(&addRevenue, "revenue", "r", 0, "revenue")
	addCmd.Flags().Float64VarP(&addTimeTaken, "time", "t", 1, "time taken in hours")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "Medium", "priority (High, Medium, Low)")
	addCmd.Flags().StringVarP(&addStatus, "status", "s", "Todo", "status (Todo, In Progress, Done)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "notes")
}
