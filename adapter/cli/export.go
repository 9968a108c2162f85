package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/queries"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/infrastructure/export"
)

var (
	exportFormat   string
	exportOutput   string
	exportSearch   string
	exportStatus   string
	exportPriority string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks as CSV or JSON",
	Long: `Export the sorted task list, optionally filtered, to CSV or JSON.

Examples:
  taskglitch export                          # CSV to stdout
  taskglitch export --format json -o tasks.json
  taskglitch export --status Done -o done.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), queries.ListTasksQuery{
			Filter: queries.Filter{
				Search:   exportSearch,
				Status:   exportStatus,
				Priority: exportPriority,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if exportOutput != "" {
			path, err := security.ValidateFilePath(exportOutput)
			if err != nil {
				return fmt.Errorf("invalid output path: %w", err)
			}
			f, err := os.Create(path) // #nosec G304 - path is validated above
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			defer f.Close()
			out = f
		}

		if err := writeExport(out, exportFormat, tasks); err != nil {
			return err
		}

		if exportOutput != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", len(tasks), exportOutput)
		}
		return nil
	},
}

func writeExport(w io.Writer, format string, tasks []task.DerivedTask) error {
	switch format {
	case "csv", "":
		return export.WriteCSV(w, tasks)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	default:
		return fmt.Errorf("unsupported format: %s (supported: csv, json)", format)
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv, json)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportSearch, "search", "", "case-insensitive title search")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "status filter (Todo, In Progress, Done)")
	exportCmd.Flags().StringVar(&exportPriority, "priority", "", "priority filter (High, Medium, Low)")
	rootCmd.AddCommand(exportCmd)
}
