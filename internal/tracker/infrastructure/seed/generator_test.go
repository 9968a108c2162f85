package seed_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/infrastructure/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestGenerator_Generate(t *testing.T) {
	tasks := seed.NewGenerator(42, seed.WithClock(clock)).Generate(30)
	require.Len(t, tasks, 30)

	ids := make(map[string]bool)
	for _, tk := range tasks {
		assert.NotEmpty(t, tk.ID)
		assert.False(t, ids[tk.ID], "duplicate id %s", tk.ID)
		ids[tk.ID] = true

		assert.NotEmpty(t, tk.Title)
		assert.GreaterOrEqual(t, tk.Revenue, 0.0)
		assert.Greater(t, tk.TimeTaken, 0.0)
		assert.True(t, tk.Priority.IsValid())
		assert.True(t, tk.Status.IsValid())
		assert.True(t, tk.CreatedAt.Before(fixedNow))

		if tk.Status == task.StatusDone {
			require.NotNil(t, tk.CompletedAt)
			assert.False(t, tk.CompletedAt.Before(tk.CreatedAt))
			assert.False(t, tk.CompletedAt.After(fixedNow))
		} else {
			assert.Nil(t, tk.CompletedAt)
		}
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := seed.NewGenerator(7, seed.WithClock(clock)).Generate(10)
	b := seed.NewGenerator(7, seed.WithClock(clock)).Generate(10)
	assert.Equal(t, a, b)

	c := seed.NewGenerator(8, seed.WithClock(clock)).Generate(10)
	assert.NotEqual(t, a, c)
}

func TestGenerator_NonPositiveCount(t *testing.T) {
	g := seed.NewGenerator(1)
	assert.Empty(t, g.Generate(0))
	assert.Empty(t, g.Generate(-5))
}
