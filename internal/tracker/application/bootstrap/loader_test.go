package bootstrap_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/bootstrap"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/services"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/store"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mapStorage struct {
	data map[string][]byte
	err  error
}

func (m *mapStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return v, nil
}

func (m *mapStorage) Set(ctx context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context) (any, error) {
	args := m.Called(ctx)
	return args.Get(0), args.Error(1)
}

type countingSeeder struct {
	calls int
	n     int
}

func (c *countingSeeder) Generate(n int) []task.Task {
	c.calls++
	c.n = n
	out := make([]task.Task, n)
	for i := range out {
		out[i] = task.Task{ID: "seed", Title: "Seed", TimeTaken: 1}
	}
	return out
}

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func normalizer() *services.Normalizer {
	return services.NewNormalizer(services.WithClock(func() time.Time { return fixedNow }))
}

func newLoader(opts ...bootstrap.LoaderOption) *bootstrap.Loader {
	base := []bootstrap.LoaderOption{
		bootstrap.WithLoaderLogger(observability.DiscardLogger()),
		bootstrap.WithNormalizer(normalizer()),
	}
	return bootstrap.NewLoader(append(base, opts...)...)
}

func TestLoader_PrefersStorage(t *testing.T) {
	storage := &mapStorage{data: map[string][]byte{
		store.DefaultKey: []byte(`[{"id":"p1","title":"Persisted","revenue":10,"timeTaken":2,"priority":"High","status":"Todo","createdAt":"2026-01-01T00:00:00Z"}]`),
	}}
	source := new(mockSource)
	seeder := &countingSeeder{}

	tasks, err := newLoader(
		bootstrap.WithStorage(storage, ""),
		bootstrap.WithSource(source),
		bootstrap.WithSeeder(seeder, 5),
	).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "p1", tasks[0].ID)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), tasks[0].CreatedAt)
	source.AssertNotCalled(t, "Fetch", mock.Anything)
	assert.Zero(t, seeder.calls)
}

func TestLoader_FallsBackToSource(t *testing.T) {
	tests := []struct {
		name    string
		storage *mapStorage
	}{
		{"absent key", &mapStorage{data: map[string][]byte{}}},
		{"empty array", &mapStorage{data: map[string][]byte{store.DefaultKey: []byte(`[]`)}}},
		{"corrupt value", &mapStorage{data: map[string][]byte{store.DefaultKey: []byte(`{nope`)}}},
		{"read error", &mapStorage{err: errors.New("permission denied")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(mockSource)
			source.On("Fetch", mock.Anything).Return([]any{
				map[string]any{"id": "r1", "title": "Remote", "status": "Done"},
			}, nil).Once()

			tasks, err := newLoader(
				bootstrap.WithStorage(tt.storage, store.DefaultKey),
				bootstrap.WithSource(source),
			).Load(context.Background())

			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.Equal(t, "r1", tasks[0].ID)
			assert.Equal(t, fixedNow.Add(-services.Day), tasks[0].CreatedAt)
			require.NotNil(t, tasks[0].CompletedAt)
			assert.Equal(t, fixedNow, *tasks[0].CompletedAt)
			source.AssertExpectations(t)
		})
	}
}

func TestLoader_SeedsWhenNothingLoads(t *testing.T) {
	tests := []struct {
		name string
		data any
	}{
		{"no data", nil},
		{"empty array", []any{}},
		{"not an array", map[string]any{"tasks": []any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(mockSource)
			source.On("Fetch", mock.Anything).Return(tt.data, nil)
			seeder := &countingSeeder{}

			tasks, err := newLoader(
				bootstrap.WithSource(source),
				bootstrap.WithSeeder(seeder, 0),
			).Load(context.Background())

			require.NoError(t, err)
			assert.Len(t, tasks, bootstrap.DefaultSeedCount)
			assert.Equal(t, 1, seeder.calls)
			assert.Equal(t, bootstrap.DefaultSeedCount, seeder.n)
		})
	}
}

func TestLoader_SourceFailureIsLoadError(t *testing.T) {
	cause := errors.New("connection refused")
	source := new(mockSource)
	source.On("Fetch", mock.Anything).Return(nil, cause)
	seeder := &countingSeeder{}

	tasks, err := newLoader(
		bootstrap.WithSource(source),
		bootstrap.WithSeeder(seeder, 3),
	).Load(context.Background())

	assert.Nil(t, tasks)
	var loadErr *bootstrap.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "connection refused", err.Error())
	assert.Zero(t, seeder.calls)
}

func TestLoader_NoCapabilities(t *testing.T) {
	tasks, err := newLoader().Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestLoadError_Message(t *testing.T) {
	assert.Equal(t, bootstrap.DefaultLoadErrorMessage, (&bootstrap.LoadError{}).Error())
	assert.Equal(t, "boom", (&bootstrap.LoadError{Err: errors.New("boom")}).Error())
}

func TestLoader_DrivesStoreBootstrap(t *testing.T) {
	storage := &mapStorage{data: map[string][]byte{}}
	seeder := &countingSeeder{}
	loader := newLoader(bootstrap.WithStorage(storage, ""), bootstrap.WithSeeder(seeder, 4))

	s, err := store.New(storage, store.WithLoader(loader), store.WithLogger(observability.DiscardLogger()))
	require.NoError(t, err)

	<-s.Bootstrap(context.Background())

	assert.Equal(t, store.PhaseReady, s.Phase())
	assert.Len(t, s.Tasks(), 4)
}

func TestLoader_Origin(t *testing.T) {
	persisted := []byte(`[{"id":"p1","title":"Persisted","timeTaken":1,"priority":"Low","status":"Todo","createdAt":"2026-01-01T00:00:00Z"}]`)

	tests := []struct {
		name    string
		stored  map[string][]byte
		remote  any
		seeder  bool
		want    bootstrap.Origin
		persist bool
	}{
		{"storage", map[string][]byte{store.DefaultKey: persisted}, nil, true, bootstrap.OriginStorage, true},
		{"source", map[string][]byte{}, []any{map[string]any{"id": "r1", "title": "Remote"}}, true, bootstrap.OriginSource, false},
		{"seed", map[string][]byte{}, []any{}, true, bootstrap.OriginSeed, false},
		{"nothing", map[string][]byte{}, []any{}, false, bootstrap.OriginNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(mockSource)
			source.On("Fetch", mock.Anything).Return(tt.remote, nil)
			opts := []bootstrap.LoaderOption{
				bootstrap.WithStorage(&mapStorage{data: tt.stored}, ""),
				bootstrap.WithSource(source),
			}
			if tt.seeder {
				opts = append(opts, bootstrap.WithSeeder(&countingSeeder{}, 2))
			}
			loader := newLoader(opts...)
			assert.Equal(t, bootstrap.OriginNone, loader.Origin())

			_, err := loader.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, loader.Origin())
			assert.Equal(t, tt.persist, loader.Origin().Persisted())
		})
	}
}

func TestLoader_OriginResetOnFailure(t *testing.T) {
	source := new(mockSource)
	source.On("Fetch", mock.Anything).Return([]any{map[string]any{"id": "r1", "title": "Remote"}}, nil).Once()
	source.On("Fetch", mock.Anything).Return(nil, errors.New("timeout")).Once()
	loader := newLoader(bootstrap.WithSource(source))

	_, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, bootstrap.OriginSource, loader.Origin())

	_, err = loader.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, bootstrap.OriginNone, loader.Origin())
}
