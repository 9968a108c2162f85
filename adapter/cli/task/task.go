package task

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/queries"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage sales tasks",
	Long:  `Add, list, update, delete and measure sales tasks.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(metricsCmd)
}

func parsePriority(s string) (task.Priority, error) {
	p, err := task.ParsePriority(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q (use High, Medium or Low)", err, s)
	}
	return p, nil
}

func parseStatus(s string) (task.Status, error) {
	st, err := task.ParseStatus(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q (use Todo, In Progress or Done)", err, s)
	}
	return st, nil
}

// filterValue canonicalizes a filter flag; empty and "All" disable the filter.
func filterValue(s string, parse func(string) (string, error)) (string, error) {
	if s == "" || strings.EqualFold(s, queries.All) {
		return queries.All, nil
	}
	return parse(s)
}

func getStatusIcon(status task.Status) string {
	switch status {
	case task.StatusDone:
		return "[x]"
	case task.StatusInProgress:
		return "[>]"
	default:
		return "[ ]"
	}
}

func getPriorityBadge(priority task.Priority) string {
	switch priority {
	case task.PriorityHigh:
		return "(!)"
	case task.PriorityMedium:
		return "(~)"
	case task.PriorityLow:
		return "(.)"
	default:
		return ""
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
