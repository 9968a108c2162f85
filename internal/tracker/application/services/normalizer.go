package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
	"github.com/google/uuid"
)

// Day is the spacing between synthesized creation times and the offset
// between createdAt and a synthesized completedAt.
const Day = 24 * time.Hour

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithClock overrides the time source used for synthesized timestamps.
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) {
		n.now = now
	}
}

// WithIDGenerator overrides the id source for records without an id.
func WithIDGenerator(newID func() string) NormalizerOption {
	return func(n *Normalizer) {
		n.newID = newID
	}
}

// Normalizer turns loosely-typed records into valid tasks.
type Normalizer struct {
	now   func() time.Time
	newID func() string
}

// NewNormalizer creates a normalizer using the wall clock and random UUIDs
// unless overridden.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NormalizeJSON decodes a JSON document and normalizes it. Only a decode
// failure is an error; a document that is not an array yields no tasks.
func (n *Normalizer) NormalizeJSON(data []byte) ([]task.Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []task.Task{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var input any
	if err := dec.Decode(&input); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return n.Normalize(input), nil
}

// Normalize converts decoded JSON into tasks. Input that is not a sequence
// is treated as empty. Malformed records are repaired, never dropped.
func (n *Normalizer) Normalize(input any) []task.Task {
	records := asSequence(input)
	tasks := make([]task.Task, 0, len(records))
	if len(records) == 0 {
		return tasks
	}

	now := n.now()
	seen := make(map[string]struct{}, len(records))

	for idx, rec := range records {
		fields, _ := rec.(map[string]any)

		created, ok := parseTime(fields["createdAt"])
		if !ok {
			created = now.Add(-time.Duration(idx+1) * Day)
		}

		status := normalizeStatus(fields["status"])

		var completedAt *time.Time
		if completed, ok := parseTime(fields["completedAt"]); ok {
			completedAt = &completed
		} else if status.IsDone() {
			completed := created.Add(Day)
			completedAt = &completed
		}

		id := stringValue(fields["id"])
		if _, dup := seen[id]; id == "" || dup {
			id = n.newID()
		}
		seen[id] = struct{}{}

		tasks = append(tasks, task.Task{
			ID:          id,
			Title:       stringValue(fields["title"]),
			Revenue:     task.SanitizeRevenue(numberValue(fields["revenue"])),
			TimeTaken:   task.SanitizeTimeTaken(numberValue(fields["timeTaken"])),
			Priority:    normalizePriority(fields["priority"]),
			Status:      status,
			Notes:       stringValue(fields["notes"]),
			CreatedAt:   created,
			CompletedAt: completedAt,
		})
	}

	return tasks
}

func asSequence(input any) []any {
	switch v := input.(type) {
	case []any:
		return v
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	default:
		return nil
	}
}

// normalizePriority canonicalizes known priorities and keeps unknown
// strings as-is so they sort with rank 0.
func normalizePriority(v any) task.Priority {
	raw := stringValue(v)
	if p, err := task.ParsePriority(raw); err == nil {
		return p
	}
	return task.Priority(raw)
}

func normalizeStatus(v any) task.Status {
	raw := stringValue(v)
	if s, err := task.ParseStatus(raw); err == nil {
		return s
	}
	return task.Status(raw)
}

func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// numberValue returns NaN for anything that is not numeric.
func numberValue(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

// parseTime accepts ISO timestamps, plain dates and epoch milliseconds.
func parseTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	case json.Number, float64, int, int64:
		ms := numberValue(x)
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)).UTC(), true
	default:
		return time.Time{}, false
	}
}
