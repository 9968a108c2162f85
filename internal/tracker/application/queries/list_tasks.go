package queries

import (
	"context"
	"slices"
	"strings"

	"github.com/felixgeelhaar/taskglitch/internal/shared/application"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/services"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All is the filter sentinel that disables a predicate.
const All = "All"

// DefaultLocale is used for title collation when none is configured.
const DefaultLocale = "en"

// Filter holds the three conjunctive list predicates. Empty or All values
// match everything.
type Filter struct {
	Search   string // case-insensitive title substring
	Status   string // exact status
	Priority string // exact priority
}

// Match reports whether the task passes every active predicate.
func (f Filter) Match(t task.DerivedTask) bool {
	if active(f.Search) {
		if !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
			return false
		}
	}
	if active(f.Status) && string(t.Status) != f.Status {
		return false
	}
	if active(f.Priority) && string(t.Priority) != f.Priority {
		return false
	}
	return true
}

func active(v string) bool {
	return v != "" && v != All
}

// FilterTasks returns the tasks matching f, preserving order.
func FilterTasks(tasks []task.DerivedTask, f Filter) []task.DerivedTask {
	filtered := make([]task.DerivedTask, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// SortTasks returns a new slice ordered by ROI descending, then priority
// rank descending, then title ascending under the locale's collation.
// Ties on all three keys keep their input order.
func SortTasks(tasks []task.DerivedTask, locale string) []task.DerivedTask {
	sorted := make([]task.DerivedTask, len(tasks))
	copy(sorted, tasks)

	// A Collator keeps internal buffers, so each sort gets its own.
	col := collate.New(parseLocale(locale))

	slices.SortStableFunc(sorted, func(a, b task.DerivedTask) int {
		if a.ROI != b.ROI {
			if a.ROI > b.ROI {
				return -1
			}
			return 1
		}
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return rb - ra
		}
		return col.CompareString(a.Title, b.Title)
	})

	return sorted
}

func parseLocale(locale string) language.Tag {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}

// TaskSource provides a snapshot of the current task set.
type TaskSource interface {
	Tasks() []task.Task
}

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	Filter Filter
	Limit  int // Max number of tasks to return (0 = no limit)
}

// QueryName implements application.Query.
func (ListTasksQuery) QueryName() string { return "tracker.list_tasks" }

var _ application.QueryHandler[ListTasksQuery, []task.DerivedTask] = (*ListTasksHandler)(nil)

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	source TaskSource
	engine *services.DerivationEngine
	locale string
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(source TaskSource, engine *services.DerivationEngine, locale string) *ListTasksHandler {
	return &ListTasksHandler{
		source: source,
		engine: engine,
		locale: locale,
	}
}

// Handle executes the ListTasksQuery.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]task.DerivedTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	derived := h.engine.DeriveAll(h.source.Tasks())
	tasks := SortTasks(FilterTasks(derived, query.Filter), h.locale)

	if query.Limit > 0 && len(tasks) > query.Limit {
		tasks = tasks[:query.Limit]
	}

	return tasks, nil
}
