package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var normalizeNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	seq := 0
	return NewNormalizer(
		WithClock(func() time.Time { return normalizeNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("gen-%d", seq)
		}),
	)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newTestNormalizer()

	input := []any{
		map[string]any{
			"id":        "t-1",
			"title":     "Call Acme",
			"revenue":   1200.0,
			"timeTaken": 3.0,
			"priority":  "High",
			"status":    "In Progress",
			"notes":     "follow up",
			"createdAt": "2025-05-01T10:00:00Z",
		},
	}

	tasks := n.Normalize(input)

	require.Len(t, tasks, 1)
	tsk := tasks[0]
	assert.Equal(t, "t-1", tsk.ID)
	assert.Equal(t, "Call Acme", tsk.Title)
	assert.Equal(t, 1200.0, tsk.Revenue)
	assert.Equal(t, 3.0, tsk.TimeTaken)
	assert.Equal(t, task.PriorityHigh, tsk.Priority)
	assert.Equal(t, task.StatusInProgress, tsk.Status)
	assert.Equal(t, "follow up", tsk.Notes)
	assert.Equal(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), tsk.CreatedAt)
	assert.Nil(t, tsk.CompletedAt)
}

func TestNormalizer_Defaults(t *testing.T) {
	n := newTestNormalizer()

	tasks := n.Normalize([]any{
		map[string]any{"revenue": "abc", "timeTaken": 0.0},
		map[string]any{"revenue": "250", "timeTaken": "-4"},
		map[string]any{},
	})

	require.Len(t, tasks, 3)

	assert.Equal(t, "gen-1", tasks[0].ID)
	assert.Equal(t, 0.0, tasks[0].Revenue)
	assert.Equal(t, 1.0, tasks[0].TimeTaken)

	assert.Equal(t, 250.0, tasks[1].Revenue)
	assert.Equal(t, 1.0, tasks[1].TimeTaken)

	assert.Equal(t, "", tasks[2].Title)
	assert.Equal(t, 1.0, tasks[2].TimeTaken)
}

func TestNormalizer_SynthesizesCreatedAt(t *testing.T) {
	n := newTestNormalizer()

	tasks := n.Normalize([]any{
		map[string]any{"title": "first"},
		map[string]any{"title": "second"},
		map[string]any{"title": "third", "createdAt": "not a date"},
	})

	require.Len(t, tasks, 3)
	assert.Equal(t, normalizeNow.Add(-1*Day), tasks[0].CreatedAt)
	assert.Equal(t, normalizeNow.Add(-2*Day), tasks[1].CreatedAt)
	assert.Equal(t, normalizeNow.Add(-3*Day), tasks[2].CreatedAt)
	assert.True(t, tasks[0].CreatedAt.After(tasks[1].CreatedAt))
}

func TestNormalizer_DoneWithoutCompletedAt(t *testing.T) {
	n := newTestNormalizer()

	tasks := n.Normalize([]any{
		map[string]any{"status": "Done", "createdAt": "2025-05-01T10:00:00Z"},
		map[string]any{"status": "Done"},
		map[string]any{"status": "Done", "completedAt": "2025-05-03T08:00:00Z"},
		map[string]any{"status": "Todo"},
	})

	require.Len(t, tasks, 4)

	require.NotNil(t, tasks[0].CompletedAt)
	assert.Equal(t, int64(86400000), tasks[0].CompletedAt.Sub(tasks[0].CreatedAt).Milliseconds())

	require.NotNil(t, tasks[1].CompletedAt)
	assert.Equal(t, tasks[1].CreatedAt.Add(Day), *tasks[1].CompletedAt)

	require.NotNil(t, tasks[2].CompletedAt)
	assert.Equal(t, time.Date(2025, 5, 3, 8, 0, 0, 0, time.UTC), *tasks[2].CompletedAt)

	assert.Nil(t, tasks[3].CompletedAt)
}

func TestNormalizer_NonSequenceIsEmpty(t *testing.T) {
	n := newTestNormalizer()

	tests := []any{
		nil,
		"tasks",
		42.0,
		map[string]any{"id": "t-1"},
	}

	for _, input := range tests {
		tasks := n.Normalize(input)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	}
}

func TestNormalizer_KeepsMalformedRecords(t *testing.T) {
	n := newTestNormalizer()

	tasks := n.Normalize([]any{"garbage", 7.0, nil})

	require.Len(t, tasks, 3)
	for _, tsk := range tasks {
		assert.NotEmpty(t, tsk.ID)
		assert.Greater(t, tsk.TimeTaken, 0.0)
	}
}

func TestNormalizer_DuplicateIDs(t *testing.T) {
	n := newTestNormalizer()

	tasks := n.Normalize([]any{
		map[string]any{"id": "same"},
		map[string]any{"id": "same"},
	})

	require.Len(t, tasks, 2)
	assert.Equal(t, "same", tasks[0].ID)
	assert.Equal(t, "gen-1", tasks[1].ID)
}

func TestNormalizer_NormalizeJSON(t *testing.T) {
	n := newTestNormalizer()

	t.Run("numeric id and epoch millis", func(t *testing.T) {
		tasks, err := n.NormalizeJSON([]byte(`[{"id": 17, "title": "x", "revenue": 10, "timeTaken": 2, "createdAt": 1735689600000}]`))
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "17", tasks[0].ID)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), tasks[0].CreatedAt)
	})

	t.Run("object document is empty", func(t *testing.T) {
		tasks, err := n.NormalizeJSON([]byte(`{"tasks": []}`))
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("blank document is empty", func(t *testing.T) {
		tasks, err := n.NormalizeJSON([]byte("  "))
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("invalid json is an error", func(t *testing.T) {
		_, err := n.NormalizeJSON([]byte(`[{"id":`))
		assert.Error(t, err)
	})
}

func TestNormalizer_CanonicalizesEnums(t *testing.T) {
	n := newTestNormalizer()

	tasks := n.Normalize([]any{
		map[string]any{"priority": "low", "status": "done"},
		map[string]any{"priority": "Someday", "status": "Blocked"},
	})

	require.Len(t, tasks, 2)
	assert.Equal(t, task.PriorityLow, tasks[0].Priority)
	assert.Equal(t, task.StatusDone, tasks[0].Status)
	assert.Equal(t, task.Priority("Someday"), tasks[1].Priority)
	assert.Equal(t, task.Status("Blocked"), tasks[1].Status)
}
