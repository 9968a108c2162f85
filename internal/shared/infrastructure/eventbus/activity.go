package eventbus

import (
	"context"
	"sync"
)

// DefaultActivitySize is the number of events an ActivityLog keeps.
const DefaultActivitySize = 50

// ActivityLog is a consumer that keeps the most recent events in a ring.
type ActivityLog struct {
	mu       sync.RWMutex
	patterns []string
	events   []ConsumedEvent
	size     int
	next     int
	full     bool
}

// NewActivityLog records up to size events matching the given patterns.
// No patterns means every event.
func NewActivityLog(size int, patterns ...string) *ActivityLog {
	if size <= 0 {
		size = DefaultActivitySize
	}
	if len(patterns) == 0 {
		patterns = []string{"#"}
	}
	return &ActivityLog{
		patterns: patterns,
		events:   make([]ConsumedEvent, size),
		size:     size,
	}
}

func (a *ActivityLog) EventTypes() []string {
	return a.patterns
}

func (a *ActivityLog) Handle(ctx context.Context, event *ConsumedEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.events[a.next] = *event
	a.next = (a.next + 1) % a.size
	if a.next == 0 {
		a.full = true
	}
	return nil
}

// Recent returns the recorded events, newest first.
func (a *ActivityLog) Recent() []ConsumedEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := a.next
	if a.full {
		n = a.size
	}
	out := make([]ConsumedEvent, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, a.events[(a.next-i+a.size)%a.size])
	}
	return out
}
