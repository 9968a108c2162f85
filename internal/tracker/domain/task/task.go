package task

import (
	"math"
	"strings"
	"time"
)

// DefaultTimeTaken replaces any non-positive or non-finite duration.
const DefaultTimeTaken = 1.0

// Task is a single sales task. Identity is ID; every other field is mutable
// through a Patch.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Revenue     float64    `json:"revenue"`
	TimeTaken   float64    `json:"timeTaken"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// NewTask is the payload for adding a task. ID is optional.
type NewTask struct {
	ID          string
	Title       string
	Revenue     float64
	TimeTaken   float64
	Priority    Priority
	Status      Status
	Notes       string
	CompletedAt *time.Time
}

// Patch describes a partial update. Nil fields are left unchanged.
type Patch struct {
	Title            *string
	Revenue          *float64
	TimeTaken        *float64
	Priority         *Priority
	Status           *Status
	Notes            *string
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Revenue == nil && p.TimeTaken == nil &&
		p.Priority == nil && p.Status == nil && p.Notes == nil &&
		p.CompletedAt == nil && !p.ClearCompletedAt
}

// TouchesROI reports whether the patch changes an ROI input.
func (p Patch) TouchesROI() bool {
	return p.Revenue != nil || p.TimeTaken != nil
}

// FromNew builds a Task from an add payload. The caller supplies the id and
// creation time; numeric fields are coerced.
func FromNew(id string, in NewTask, now time.Time) Task {
	t := Task{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Revenue:     SanitizeRevenue(in.Revenue),
		TimeTaken:   SanitizeTimeTaken(in.TimeTaken),
		Priority:    in.Priority,
		Status:      in.Status,
		Notes:       in.Notes,
		CreatedAt:   now,
		CompletedAt: cloneTime(in.CompletedAt),
	}
	if t.Status.IsDone() && t.CompletedAt == nil {
		done := now
		t.CompletedAt = &done
	}
	return t
}

// Apply merges the patch into the task and returns the names of the fields
// it changed. Entering Done without a completion time stamps now.
func (t *Task) Apply(p Patch, now time.Time) []string {
	var fields []string

	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
		fields = append(fields, "title")
	}
	if p.Revenue != nil {
		t.Revenue = SanitizeRevenue(*p.Revenue)
		fields = append(fields, "revenue")
	}
	if p.TimeTaken != nil {
		t.TimeTaken = SanitizeTimeTaken(*p.TimeTaken)
		fields = append(fields, "timeTaken")
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
		fields = append(fields, "priority")
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
		fields = append(fields, "notes")
	}
	if p.ClearCompletedAt {
		t.CompletedAt = nil
		fields = append(fields, "completedAt")
	} else if p.CompletedAt != nil {
		t.CompletedAt = cloneTime(p.CompletedAt)
		fields = append(fields, "completedAt")
	}
	if p.Status != nil {
		t.Status = *p.Status
		fields = append(fields, "status")
		if t.Status.IsDone() && t.CompletedAt == nil {
			done := now
			t.CompletedAt = &done
			fields = append(fields, "completedAt")
		}
	}

	// Records loaded from outside may carry a bad duration; any update
	// restores the invariant.
	t.TimeTaken = SanitizeTimeTaken(t.TimeTaken)

	return fields
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	t.CompletedAt = cloneTime(t.CompletedAt)
	return t
}

// IsDone reports whether the task is completed.
func (t Task) IsDone() bool {
	return t.Status.IsDone()
}

// SanitizeTimeTaken coerces non-positive or non-finite hours to DefaultTimeTaken.
func SanitizeTimeTaken(hours float64) float64 {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return DefaultTimeTaken
	}
	return hours
}

// SanitizeRevenue coerces negative or non-finite revenue to zero.
func SanitizeRevenue(revenue float64) float64 {
	if math.IsNaN(revenue) || math.IsInf(revenue, 0) || revenue < 0 {
		return 0
	}
	return revenue
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
