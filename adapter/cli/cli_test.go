package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/queries"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/services"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/store"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/infrastructure/storage"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
)

func setupTestApp(t *testing.T) *App {
	t.Helper()
	SetLogger(observability.DiscardLogger())

	st, err := store.New(storage.NewMemoryStorage(), store.WithLogger(observability.DiscardLogger()))
	require.NoError(t, err)
	<-st.Bootstrap(context.Background())

	ctx := context.Background()
	st.Add(ctx, task.NewTask{Title: "Low roi", Revenue: 100, TimeTaken: 4, Priority: task.PriorityLow, Status: task.StatusTodo})
	st.Add(ctx, task.NewTask{Title: "High roi", Revenue: 900, TimeTaken: 1, Priority: task.PriorityHigh, Status: task.StatusDone})

	engine := services.NewDerivationEngine(services.DefaultGradeThresholds())
	health := observability.NewHealthRegistry()
	health.Register("storage", observability.StorageHealthChecker("memory", func(context.Context) error { return nil }))

	a := NewApp(st, queries.NewListTasksHandler(st, engine, "en"), health)
	SetApp(a)
	t.Cleanup(func() { SetApp(nil) })
	return a
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "taskglitch dev")
}

func TestHealthCommand(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		setupTestApp(t)
		out, err := execute(t, "health")
		require.NoError(t, err)
		assert.Contains(t, out, "status: healthy")
		assert.Contains(t, out, "storage")
	})

	t.Run("json", func(t *testing.T) {
		setupTestApp(t)
		out, err := execute(t, "health", "--json")
		require.NoError(t, err)
		assert.Contains(t, out, `"status": "healthy"`)
	})

	t.Run("unhealthy fails", func(t *testing.T) {
		a := setupTestApp(t)
		a.Health.Register("source", observability.BreakerHealthChecker("task source", func() string { return "open" }))
		_, err := execute(t, "health")
		assert.Error(t, err)
	})

	t.Run("not initialized", func(t *testing.T) {
		SetApp(nil)
		_, err := execute(t, "health")
		assert.ErrorIs(t, err, ErrNotInitialized)
	})
}

func TestExportCommand(t *testing.T) {
	t.Run("csv to stdout in sorted order", func(t *testing.T) {
		setupTestApp(t)
		out, err := execute(t, "export")
		require.NoError(t, err)

		rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "High roi", rows[1][1])
		assert.Equal(t, "Low roi", rows[2][1])
	})

	t.Run("filtered json to file", func(t *testing.T) {
		setupTestApp(t)
		path := filepath.Join(t.TempDir(), "done.json")

		_, err := execute(t, "export", "--format", "json", "--status", "Done", "-o", path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "High roi")
		assert.NotContains(t, string(data), "Low roi")
	})

	t.Run("unknown format", func(t *testing.T) {
		setupTestApp(t)
		_, err := execute(t, "export", "--format", "xml")
		assert.Error(t, err)
	})
}

func TestRequireApp(t *testing.T) {
	SetApp(nil)
	_, err := RequireApp()
	assert.True(t, errors.Is(err, ErrNotInitialized))

	setupTestApp(t)
	a, err := RequireApp()
	require.NoError(t, err)
	assert.NotNil(t, a.Store)
}
