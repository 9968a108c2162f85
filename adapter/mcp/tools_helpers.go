package mcp

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/queries"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
)

func parsePriority(value string, fallback task.Priority) (task.Priority, error) {
	if value == "" {
		return fallback, nil
	}
	p, err := task.ParsePriority(value)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, value)
	}
	return p, nil
}

func parseStatus(value string, fallback task.Status) (task.Status, error) {
	if value == "" {
		return fallback, nil
	}
	s, err := task.ParseStatus(value)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, value)
	}
	return s, nil
}

// parseFilter canonicalizes list filters. Empty and "All" disable a filter.
func parseFilter(search, status, priority string) (queries.Filter, error) {
	f := queries.Filter{Search: search, Status: queries.All, Priority: queries.All}
	if status != "" && !strings.EqualFold(status, queries.All) {
		s, err := parseStatus(status, "")
		if err != nil {
			return queries.Filter{}, err
		}
		f.Status = string(s)
	}
	if priority != "" && !strings.EqualFold(priority, queries.All) {
		p, err := parsePriority(priority, "")
		if err != nil {
			return queries.Filter{}, err
		}
		f.Priority = string(p)
	}
	return f, nil
}

func notFound(id string) error {
	return fmt.Errorf("task not found: %s", id)
}
