// Package bootstrap produces the initial task set from persisted state, a
// remote source, or generated seed data, in that order.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/services"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/store"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
)

// DefaultSeedCount is the number of generated tasks used when no data is
// available anywhere.
const DefaultSeedCount = 30

// DefaultLoadErrorMessage is shown when a load fails without a cause.
const DefaultLoadErrorMessage = "Failed to load tasks"

// Source fetches remote task data already decoded from JSON. A nil result
// with a nil error means the source has no data.
type Source interface {
	Fetch(ctx context.Context) (any, error)
}

// Seeder generates n valid tasks.
type Seeder interface {
	Generate(n int) []task.Task
}

// LoadError reports a failed remote fetch or decode.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return DefaultLoadErrorMessage
	}
	return e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Origin names where the last loaded set came from.
type Origin string

const (
	OriginNone    Origin = "none"
	OriginStorage Origin = "storage"
	OriginSource  Origin = "source"
	OriginSeed    Origin = "seed"
)

// Persisted reports whether a set from this origin is already in storage.
func (o Origin) Persisted() bool {
	return o == OriginNone || o == OriginStorage
}

// Loader implements store.Loader.
type Loader struct {
	storage    store.Storage
	key        string
	source     Source
	normalizer *services.Normalizer
	seeder     Seeder
	seedCount  int
	logger     *slog.Logger

	mu     sync.Mutex
	origin Origin
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithStorage makes the loader try the persisted key first.
func WithStorage(storage store.Storage, key string) LoaderOption {
	return func(l *Loader) {
		l.storage = storage
		if key != "" {
			l.key = key
		}
	}
}

// WithSource sets the remote source.
func WithSource(source Source) LoaderOption {
	return func(l *Loader) {
		l.source = source
	}
}

// WithSeeder sets the fallback generator and how many tasks it produces.
func WithSeeder(seeder Seeder, count int) LoaderOption {
	return func(l *Loader) {
		l.seeder = seeder
		if count > 0 {
			l.seedCount = count
		}
	}
}

// WithNormalizer overrides the normalizer.
func WithNormalizer(n *services.Normalizer) LoaderOption {
	return func(l *Loader) {
		if n != nil {
			l.normalizer = n
		}
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader. Without options it always returns an empty set.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		key:        store.DefaultKey,
		normalizer: services.NewNormalizer(),
		seedCount:  DefaultSeedCount,
		logger:     slog.Default(),
		origin:     OriginNone,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns persisted tasks if any exist, otherwise normalized source
// data, otherwise seed data. Only source failures are errors.
func (l *Loader) Load(ctx context.Context) ([]task.Task, error) {
	l.setOrigin(OriginNone)

	if tasks := l.fromStorage(ctx); len(tasks) > 0 {
		l.logger.InfoContext(ctx, "loaded tasks from storage", "count", len(tasks))
		l.setOrigin(OriginStorage)
		return tasks, nil
	}

	var tasks []task.Task
	if l.source != nil {
		data, err := l.source.Fetch(ctx)
		if err != nil {
			return nil, &LoadError{Err: err}
		}
		tasks = l.normalizer.Normalize(data)
		l.logger.InfoContext(ctx, "loaded tasks from source", "count", len(tasks))
		if len(tasks) > 0 {
			l.setOrigin(OriginSource)
		}
	}

	if len(tasks) == 0 && l.seeder != nil {
		tasks = l.seeder.Generate(l.seedCount)
		l.logger.InfoContext(ctx, "generated seed tasks", "count", len(tasks))
		if len(tasks) > 0 {
			l.setOrigin(OriginSeed)
		}
	}

	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// Origin returns where the most recent Load found its tasks.
func (l *Loader) Origin() Origin {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.origin
}

func (l *Loader) setOrigin(o Origin) {
	l.mu.Lock()
	l.origin = o
	l.mu.Unlock()
}

func (l *Loader) fromStorage(ctx context.Context) []task.Task {
	if l.storage == nil {
		return nil
	}

	data, err := l.storage.Get(ctx, l.key)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			l.logger.WarnContext(ctx, "failed to read persisted tasks", "key", l.key, "error", err)
		}
		return nil
	}

	tasks, err := l.normalizer.NormalizeJSON(data)
	if err != nil {
		l.logger.WarnContext(ctx, "ignoring unreadable persisted tasks", "key", l.key, "error", err)
		return nil
	}
	return tasks
}
