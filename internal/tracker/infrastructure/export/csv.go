// Package export writes task lists in interchange formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
)

// Header is the first CSV row.
var Header = []string{
	"id", "title", "revenue", "timeTaken", "roi",
	"priority", "status", "notes", "createdAt", "completedAt",
}

// WriteCSV writes tasks in the given order.
func WriteCSV(w io.Writer, tasks []task.DerivedTask) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, t := range tasks {
		completedAt := ""
		if t.CompletedAt != nil {
			completedAt = t.CompletedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			t.ID,
			t.Title,
			formatFloat(t.Revenue),
			formatFloat(t.TimeTaken),
			formatFloat(t.ROI),
			string(t.Priority),
			string(t.Status),
			t.Notes,
			t.CreatedAt.UTC().Format(time.RFC3339),
			completedAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write task %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
