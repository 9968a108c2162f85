package cli

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskglitch/pkg/observability"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage, event bus and task source health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Health == nil {
			return ErrNotInitialized
		}

		overall := app.Health.GetOverallHealth(cmd.Context())
		out := cmd.OutOrStdout()

		if healthJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(overall); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "status: %s\n", overall.Status)
			names := make([]string, 0, len(overall.Checks))
			for name := range overall.Checks {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				result := overall.Checks[name]
				fmt.Fprintf(out, "  %-8s %-9s %s\n", name, result.Status, result.Message)
			}
		}

		if overall.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(healthCmd)
}
