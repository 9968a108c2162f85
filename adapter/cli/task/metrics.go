package task

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskglitch/adapter/cli"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
)

var metricsJSON bool

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show revenue, efficiency and ROI metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		m := app.Store.Metrics()
		b := app.Store.Breakdown()
		out := cmd.OutOrStdout()

		if metricsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				task.Metrics
				Breakdown task.Breakdown `json:"breakdown"`
			}{m, b})
		}

		fmt.Fprintf(out, "Total revenue:     %.2f\n", m.TotalRevenue)
		fmt.Fprintf(out, "Total time:        %.2fh\n", m.TotalTimeTaken)
		fmt.Fprintf(out, "Time efficiency:   %.1f%%\n", m.TimeEfficiencyPct)
		fmt.Fprintf(out, "Revenue per hour:  %.2f\n", m.RevenuePerHour)
		fmt.Fprintf(out, "Average ROI:       %.2f\n", m.AverageROI)
		fmt.Fprintf(out, "Performance grade: %s\n", m.PerformanceGrade)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Tasks: %d\n", b.Total)
		for _, s := range task.Statuses() {
			fmt.Fprintf(out, "  %-12s %d\n", s, b.ByStatus[s])
		}
		for _, p := range task.Priorities() {
			fmt.Fprintf(out, "  %-12s %d\n", p, b.ByPriority[p])
		}
		return nil
	},
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "output as JSON")
}
