package task

import (
	"errors"
	"strings"
)

// Status represents the task lifecycle state.
type Status string

const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

var (
	ErrInvalidStatus = errors.New("invalid status value")
)

var statusValues = map[string]Status{
	"todo":        StatusTodo,
	"in progress": StatusInProgress,
	"in_progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"done":        StatusDone,
}

// Statuses lists the known statuses in workflow order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// ParseStatus creates a Status from a string, ignoring case.
func ParseStatus(s string) (Status, error) {
	st, ok := statusValues[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// IsDone reports whether the status is Done.
func (s Status) IsDone() bool {
	return s == StatusDone
}
