package task

import (
	"github.com/felixgeelhaar/taskglitch/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyAdded    = "tracker.task.added"
	RoutingKeyUpdated  = "tracker.task.updated"
	RoutingKeyDeleted  = "tracker.task.deleted"
	RoutingKeyRestored = "tracker.task.restored"
	RoutingKeyPurged   = "tracker.task.purged"
)

// TaskAdded is emitted when a task is added to the store.
type TaskAdded struct {
	domain.BaseEvent
	Title    string   `json:"title"`
	Priority Priority `json:"priority"`
	Revenue  float64  `json:"revenue"`
}

// NewTaskAdded creates a TaskAdded event.
func NewTaskAdded(t Task) TaskAdded {
	return TaskAdded{
		BaseEvent: domain.NewBaseEvent(t.ID, AggregateType, RoutingKeyAdded),
		Title:     t.Title,
		Priority:  t.Priority,
		Revenue:   t.Revenue,
	}
}

// TaskUpdated is emitted when a task is patched.
type TaskUpdated struct {
	domain.BaseEvent
	Fields []string `json:"fields"` // Names of fields that were updated
}

// NewTaskUpdated creates a TaskUpdated event.
func NewTaskUpdated(id string, fields []string) TaskUpdated {
	return TaskUpdated{
		BaseEvent: domain.NewBaseEvent(id, AggregateType, RoutingKeyUpdated),
		Fields:    fields,
	}
}

// TaskDeleted is emitted when a task is moved into the undo buffer.
type TaskDeleted struct {
	domain.BaseEvent
	Title string `json:"title"`
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(t Task) TaskDeleted {
	return TaskDeleted{
		BaseEvent: domain.NewBaseEvent(t.ID, AggregateType, RoutingKeyDeleted),
		Title:     t.Title,
	}
}

// TaskRestored is emitted when a deleted task is put back.
type TaskRestored struct {
	domain.BaseEvent
}

// NewTaskRestored creates a TaskRestored event.
func NewTaskRestored(id string) TaskRestored {
	return TaskRestored{
		BaseEvent: domain.NewBaseEvent(id, AggregateType, RoutingKeyRestored),
	}
}

// TaskPurged is emitted when the undo buffer is discarded.
type TaskPurged struct {
	domain.BaseEvent
}

// NewTaskPurged creates a TaskPurged event.
func NewTaskPurged(id string) TaskPurged {
	return TaskPurged{
		BaseEvent: domain.NewBaseEvent(id, AggregateType, RoutingKeyPurged),
	}
}
