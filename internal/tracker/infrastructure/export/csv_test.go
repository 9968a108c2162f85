package export_test

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/infrastructure/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	done := created.Add(24 * time.Hour)
	tasks := []task.DerivedTask{
		{
			Task: task.Task{
				ID: "a", Title: "Close, quickly", Revenue: 1500, TimeTaken: 2,
				Priority: task.PriorityHigh, Status: task.StatusDone,
				CreatedAt: created, CompletedAt: &done,
			},
			ROI: 750,
		},
		{
			Task: task.Task{
				ID: "b", Title: "Call", Revenue: 0, TimeTaken: 1.5,
				Priority: task.PriorityLow, Status: task.StatusTodo,
				Notes: "left \"voicemail\"", CreatedAt: created,
			},
			ROI: 0,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, tasks))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, export.Header, rows[0])
	assert.Equal(t, []string{
		"a", "Close, quickly", "1500", "2", "750", "High", "Done", "",
		"2026-01-02T03:04:05Z", "2026-01-03T03:04:05Z",
	}, rows[1])
	assert.Equal(t, "b", rows[2][0])
	assert.Equal(t, "1.5", rows[2][3])
	assert.Equal(t, `left "voicemail"`, rows[2][7])
	assert.Equal(t, "", rows[2][9])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, nil))
	assert.Equal(t, "id,title,revenue,timeTaken,roi,priority,status,notes,createdAt,completedAt\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_WriteError(t *testing.T) {
	assert.Error(t, export.WriteCSV(failingWriter{}, nil))
}
