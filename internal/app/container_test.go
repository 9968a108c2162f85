package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/bootstrap"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/store"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/infrastructure/seed"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/infrastructure/storage"
	"github.com/felixgeelhaar/taskglitch/pkg/config"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:        "development",
		StorageDriver: "memory",
		StorageKey:    "taskglitch_tasks",
		SeedEnabled:   true,
		SeedCount:     5,
		SeedValue:     1,
		SortLocale:    "en",
		EventsDriver:  "inprocess",
	}
}

func TestNewContainer_SeedsWhenEmpty(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, testConfig(), observability.DiscardLogger())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Start(ctx))

	assert.Equal(t, store.PhaseReady, c.Store.Phase())
	assert.Len(t, c.Store.Tasks(), 5)
	assert.Nil(t, c.Source)
}

func TestNewContainer_MutationsReachActivityAndStorage(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SeedEnabled = false

	c, err := NewContainer(ctx, cfg, observability.DiscardLogger())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(ctx))

	added := c.Store.Add(ctx, task.NewTask{Title: "Call Acme", Revenue: 100, TimeTaken: 2})

	recent := c.Activity.Recent()
	require.NotEmpty(t, recent)
	assert.Equal(t, task.RoutingKeyAdded, recent[0].RoutingKey)
	assert.Equal(t, added.ID, recent[0].AggregateID)

	raw, err := c.Storage.Get(ctx, cfg.StorageKey)
	require.NoError(t, err)
	var persisted []task.Task
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Len(t, persisted, 1)

	assert.Equal(t, int64(1), c.Metrics.GetCounter(observability.MetricTasksAdded))
}

func TestNewContainer_HTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"r1","title":"Remote","revenue":10,"timeTaken":1,"priority":"High","status":"Todo"}]`))
	}))
	defer srv.Close()

	ctx := context.Background()
	cfg := testConfig()
	cfg.SourceURL = srv.URL

	c, err := NewContainer(ctx, cfg, observability.DiscardLogger())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(ctx))

	tasks := c.Store.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "r1", tasks[0].ID)

	health := c.Health.Check(ctx)
	assert.Contains(t, health, "storage")
	assert.Contains(t, health, "events")
	assert.Equal(t, observability.HealthStatusHealthy, health["source"].Status)
}

func TestNewContainer_SourceFailureErrorsStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	ctx := context.Background()
	cfg := testConfig()
	cfg.SourceURL = srv.URL

	c, err := NewContainer(ctx, cfg, observability.DiscardLogger())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Start(ctx))

	assert.Equal(t, store.PhaseErrored, c.Store.Phase())
	assert.NotEmpty(t, c.Store.Err())
	assert.Empty(t, c.Store.Tasks())
}

func TestNewContainer_InvalidStorage(t *testing.T) {
	cfg := testConfig()
	cfg.StorageDriver = "etcd"

	_, err := NewContainer(context.Background(), cfg, observability.DiscardLogger())
	assert.Error(t, err)
}

// runOver builds the loading half of a container on a shared backend, the
// way one CLI invocation would, and starts it.
func runOver(t *testing.T, backend *storage.MemoryStorage) *Container {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig()
	logger := observability.DiscardLogger()

	loader := bootstrap.NewLoader(
		bootstrap.WithStorage(backend, cfg.StorageKey),
		bootstrap.WithSeeder(seed.NewGenerator(cfg.SeedValue), cfg.SeedCount),
		bootstrap.WithLoaderLogger(logger),
	)
	st, err := store.New(backend,
		store.WithLoader(loader),
		store.WithKey(cfg.StorageKey),
		store.WithLogger(logger),
	)
	require.NoError(t, err)

	c := &Container{Config: cfg, Logger: logger, Loader: loader, Store: st}
	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.PersistLoaded(ctx))
	return c
}

func TestContainer_PersistLoadedAcrossRuns(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStorage()

	first := runOver(t, backend)
	assert.Equal(t, bootstrap.OriginSeed, first.Loader.Origin())
	listed := first.Store.DerivedSorted()
	require.NotEmpty(t, listed)
	id := listed[0].ID
	first.Store.Close()

	second := runOver(t, backend)
	assert.Equal(t, bootstrap.OriginStorage, second.Loader.Origin())

	updated, found := second.Store.Update(ctx, id, task.Patch{Title: ptr("Renamed")})
	require.True(t, found)
	assert.Equal(t, "Renamed", updated.Title)

	third := runOver(t, backend)
	assert.Len(t, third.Store.Tasks(), len(listed))
	for _, tk := range third.Store.Tasks() {
		if tk.ID == id {
			assert.Equal(t, "Renamed", tk.Title)
		}
	}
}

func TestContainer_PersistLoadedSkipsStoredAndErrored(t *testing.T) {
	ctx := context.Background()

	t.Run("seeded container writes once", func(t *testing.T) {
		c, err := NewContainer(ctx, testConfig(), observability.DiscardLogger())
		require.NoError(t, err)
		defer c.Close()
		require.NoError(t, c.Start(ctx))

		_, err = c.Storage.Get(ctx, c.Config.StorageKey)
		require.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, c.PersistLoaded(ctx))

		raw, err := c.Storage.Get(ctx, c.Config.StorageKey)
		require.NoError(t, err)
		var persisted []task.Task
		require.NoError(t, json.Unmarshal(raw, &persisted))
		assert.Len(t, persisted, 5)
	})

	t.Run("errored load writes nothing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()
		cfg := testConfig()
		cfg.SourceURL = srv.URL

		c, err := NewContainer(ctx, cfg, observability.DiscardLogger())
		require.NoError(t, err)
		defer c.Close()
		require.NoError(t, c.Start(ctx))

		require.NoError(t, c.PersistLoaded(ctx))

		_, err = c.Storage.Get(ctx, cfg.StorageKey)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func ptr[T any](v T) *T { return &v }
