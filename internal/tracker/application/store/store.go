// Package store holds the in-memory task set, its single-slot undo buffer
// and the load lifecycle. Every mutation is written through to a Storage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/felixgeelhaar/taskglitch/internal/shared/application"
	"github.com/felixgeelhaar/taskglitch/internal/shared/domain"
	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/queries"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/services"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
	"github.com/google/uuid"
)

// DefaultKey is the storage key the task set is persisted under.
const DefaultKey = "taskglitch_tasks"

var (
	// ErrStorageRequired is returned by New when no Storage is given.
	ErrStorageRequired = errors.New("store: storage is required")
	// ErrNotReady is returned by Save before a successful load.
	ErrNotReady = errors.New("store: tasks not loaded")
	// ErrKeyNotFound is returned by Storage.Get for an absent key.
	ErrKeyNotFound = errors.New("store: key not found")
)

// Storage is a string-keyed byte store.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Loader produces the initial task set.
type Loader interface {
	Load(ctx context.Context) ([]task.Task, error)
}

// Phase is the load lifecycle state.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLoading       Phase = "loading"
	PhaseReady         Phase = "ready"
	PhaseErrored       Phase = "errored"
)

// Status is a point-in-time summary of the store.
type Status struct {
	Phase          Phase  `json:"phase"`
	Loading        bool   `json:"loading"`
	Error          string `json:"error,omitempty"`
	PersistError   string `json:"persistError,omitempty"`
	TaskCount      int    `json:"taskCount"`
	HasLastDeleted bool   `json:"hasLastDeleted"`
}

// Store owns the task collection. All methods are safe for concurrent use.
type Store struct {
	storage   Storage
	loader    Loader
	engine    *services.DerivationEngine
	publisher eventbus.Publisher
	logger    *slog.Logger
	metrics   observability.Metrics
	now       func() time.Time
	newID     func() string
	key       string
	locale    string

	mu          sync.RWMutex
	tasks       []task.Task
	lastDeleted *task.Task
	phase       Phase
	loadErr     string
	persistErr  error
	done        chan struct{}
	closed      bool
}

// New creates a store persisting to storage.
func New(storage Storage, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, ErrStorageRequired
	}

	s := &Store{
		storage:   storage,
		engine:    services.NewDerivationEngine(services.DefaultGradeThresholds()),
		publisher: eventbus.NewNoopPublisher(nil),
		logger:    slog.Default(),
		metrics:   observability.NoopMetrics{},
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		key:       DefaultKey,
		locale:    queries.DefaultLocale,
		tasks:     []task.Task{},
		phase:     PhaseUninitialized,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Bootstrap starts the initial load on first call and returns a channel
// closed when it finishes. Later calls return the same channel.
//
// A successful load replaces the whole collection, so mutations made while
// the phase is loading are dropped from memory even though they were
// persisted. Callers that mutate should wait on the channel first.
func (s *Store) Bootstrap(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	if s.done != nil {
		done := s.done
		s.mu.Unlock()
		return done
	}
	s.done = make(chan struct{})
	s.phase = PhaseLoading
	done := s.done
	s.mu.Unlock()

	go s.load(ctx, done)
	return done
}

func (s *Store) load(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := observability.StartTimer("bootstrap").
		WithMetric(observability.MetricBootstrap).
		WithMetrics(s.metrics).
		WithLogger(s.logger)

	var (
		loaded []task.Task
		err    error
	)
	if s.loader != nil {
		loaded, err = s.loader.Load(ctx)
	}
	timer.StopWithError(ctx, err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.DebugContext(ctx, "discarding load result after close")
		return
	}

	if err != nil {
		s.phase = PhaseErrored
		s.loadErr = err.Error()
		s.metrics.Counter(observability.MetricLoadErrors, 1)
		s.logger.ErrorContext(ctx, "task load failed", "error", err)
		return
	}

	s.tasks = slices.Clone(loaded)
	if s.tasks == nil {
		s.tasks = []task.Task{}
	}
	s.lastDeleted = nil
	s.phase = PhaseReady
	s.metrics.Gauge(observability.MetricTasksCount, float64(len(s.tasks)))
	s.logger.InfoContext(ctx, "tasks loaded", "count", len(s.tasks))
}

// Close marks the store torn down. A load still in flight is discarded.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Add appends a new task. A supplied id that is already live or buffered
// is replaced with a fresh one.
func (s *Store) Add(ctx context.Context, in task.NewTask) task.DerivedTask {
	s.mu.Lock()
	id := in.ID
	for id == "" || s.idInUse(id) {
		id = s.newID()
	}
	t := task.FromNew(id, in, s.now())
	s.tasks = append(s.tasks, t)
	s.persist(ctx)
	s.mu.Unlock()

	s.metrics.Counter(observability.MetricTasksAdded, 1)
	event := task.NewTaskAdded(t)
	s.publish(ctx, &event)

	return s.engine.Derive(t.Clone())
}

// Update merges patch into the task with the given id. It reports false,
// and changes nothing, when no such task exists.
func (s *Store) Update(ctx context.Context, id string, patch task.Patch) (task.DerivedTask, bool) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return task.DerivedTask{}, false
	}
	fields := s.tasks[i].Apply(patch, s.now())
	updated := s.tasks[i].Clone()
	s.persist(ctx)
	s.mu.Unlock()

	s.metrics.Counter(observability.MetricTasksUpdated, 1)
	event := task.NewTaskUpdated(id, fields)
	s.publish(ctx, &event)

	return s.engine.Derive(updated), true
}

// Delete removes the task and keeps it as the undo candidate, replacing
// any previous one. Unknown ids report false.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.lastDeleted = &removed
	s.persist(ctx)
	s.mu.Unlock()

	s.metrics.Counter(observability.MetricTasksDeleted, 1)
	event := task.NewTaskDeleted(removed)
	s.publish(ctx, &event)

	return true
}

// UndoDelete puts the last deleted task back at the front of the
// collection and returns it. It reports false when there is nothing to
// restore.
func (s *Store) UndoDelete(ctx context.Context) (task.Task, bool) {
	s.mu.Lock()
	if s.lastDeleted == nil {
		s.mu.Unlock()
		return task.Task{}, false
	}
	restored := *s.lastDeleted
	s.lastDeleted = nil
	s.tasks = slices.Insert(s.tasks, 0, restored)
	s.persist(ctx)
	s.mu.Unlock()

	s.metrics.Counter(observability.MetricTasksRestored, 1)
	event := task.NewTaskRestored(restored.ID)
	s.publish(ctx, &event)

	return restored.Clone(), true
}

// ClearLastDeleted discards the undo candidate.
func (s *Store) ClearLastDeleted(ctx context.Context) {
	s.mu.Lock()
	purged := s.lastDeleted
	s.lastDeleted = nil
	s.mu.Unlock()

	if purged == nil {
		return
	}
	s.metrics.Counter(observability.MetricTasksPurged, 1)
	event := task.NewTaskPurged(purged.ID)
	s.publish(ctx, &event)
}

// Tasks returns a copy of the current collection in storage order.
func (s *Store) Tasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]task.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// DerivedSorted returns every task with its ROI, in display order.
func (s *Store) DerivedSorted() []task.DerivedTask {
	return queries.SortTasks(s.engine.DeriveAll(s.Tasks()), s.locale)
}

// Metrics aggregates the current collection.
func (s *Store) Metrics() task.Metrics {
	return s.engine.ComputeMetrics(s.Tasks())
}

// Breakdown counts the current collection by status and priority.
func (s *Store) Breakdown() task.Breakdown {
	return s.engine.ComputeBreakdown(s.Tasks())
}

// LastDeleted returns the undo candidate, if any.
func (s *Store) LastDeleted() (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastDeleted == nil {
		return task.Task{}, false
	}
	return s.lastDeleted.Clone(), true
}

// Phase returns the load lifecycle state.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Loading reports whether the initial load has not finished yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase == PhaseUninitialized || s.phase == PhaseLoading
}

// Err returns the load failure message, or "" if none is showing.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// PersistErr returns the error of the most recent failed write, cleared by
// the next successful one.
func (s *Store) PersistErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}

// DismissError hides the current load and persistence messages. The phase
// is left unchanged.
func (s *Store) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = ""
	s.persistErr = nil
}

// Status summarises the store.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Phase:          s.phase,
		Loading:        s.phase == PhaseUninitialized || s.phase == PhaseLoading,
		Error:          s.loadErr,
		TaskCount:      len(s.tasks),
		HasLastDeleted: s.lastDeleted != nil,
	}
	if s.persistErr != nil {
		st.PersistError = s.persistErr.Error()
	}
	return st
}

// Save writes the current collection to storage. Loading never writes, so
// callers use Save to keep a set that did not come from storage, such as
// seed data. It returns ErrNotReady unless the load succeeded.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseReady {
		return fmt.Errorf("%w: phase %s", ErrNotReady, s.phase)
	}
	return s.persist(ctx)
}

// persist writes the collection through to storage and records the
// outcome. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	s.metrics.Gauge(observability.MetricTasksCount, float64(len(s.tasks)))

	err := observability.TimeOperation(ctx, nil, s.metrics, "persist", func() error {
		data, err := json.Marshal(s.tasks)
		if err != nil {
			return err
		}
		return s.storage.Set(ctx, s.key, data)
	})
	if err != nil {
		s.persistErr = fmt.Errorf("failed to persist tasks: %w", err)
		s.metrics.Counter(observability.MetricPersistErrors, 1)
		s.logger.WarnContext(ctx, "failed to persist tasks",
			"key", s.key,
			"error", err,
		)
		return s.persistErr
	}
	s.persistErr = nil
	return nil
}

func (s *Store) publish(ctx context.Context, event interface {
	domain.DomainEvent
	SetMetadata(domain.EventMetadata)
}) {
	event.SetMetadata(application.NewEventMetadata(ctx))
	if err := eventbus.PublishEvent(ctx, s.publisher, event); err != nil {
		s.metrics.Counter(observability.MetricEventsFailed, 1)
		s.logger.WarnContext(ctx, "failed to publish event",
			"routing_key", event.RoutingKey(),
			"error", err,
		)
		return
	}
	s.metrics.Counter(observability.MetricEventsPublished, 1)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
}

func (s *Store) idInUse(id string) bool {
	if s.lastDeleted != nil && s.lastDeleted.ID == id {
		return true
	}
	return s.indexOf(id) >= 0
}
