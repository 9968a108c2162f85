// Package seed generates realistic sample sales tasks when no other data
// is available.
package seed

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
)

var (
	actions = []string{
		"Follow up with", "Demo for", "Send proposal to", "Negotiate renewal with",
		"Discovery call with", "Quarterly review with", "Close deal with", "Onboard",
	}
	accounts = []string{
		"Acme Corp", "Globex", "Initech", "Umbrella", "Stark Industries",
		"Wayne Enterprises", "Hooli", "Vandelay Imports", "Soylent", "Wonka",
	}
	notes = []string{
		"", "", "Decision maker on leave until next week",
		"Asked for a volume discount", "Needs security questionnaire",
		"Champion moved teams", "Budget approved",
	}
)

// Generator produces tasks from a seeded stream, so equal seeds yield
// equal tasks.
type Generator struct {
	src *rand.ChaCha8
	rng *rand.Rand
	now func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the reference time tasks are created relative to.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a deterministic generator. A zero seed picks a
// random one.
func NewGenerator(seed uint64, opts ...Option) *Generator {
	if seed == 0 {
		seed = randomSeed()
	}

	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	src := rand.NewChaCha8(key)

	g := &Generator{
		src: src,
		rng: rand.New(src),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns n valid tasks.
func (g *Generator) Generate(n int) []task.Task {
	if n <= 0 {
		return []task.Task{}
	}

	now := g.now().UTC()
	priorities := task.Priorities()
	statuses := task.Statuses()

	tasks := make([]task.Task, 0, n)
	for i := range n {
		id, err := uuid.NewRandomFromReader(g.src)
		if err != nil {
			id = uuid.New()
		}

		createdAt := now.Add(-time.Duration(g.rng.IntN(30*24)+1) * time.Hour)
		t := task.Task{
			ID:        id.String(),
			Title:     fmt.Sprintf("%s %s #%d", pick(g.rng, actions), pick(g.rng, accounts), i+1),
			Revenue:   math.Round(g.rng.Float64()*500) * 10,
			TimeTaken: float64(g.rng.IntN(16)+1) / 2,
			Priority:  pick(g.rng, priorities),
			Status:    pick(g.rng, statuses),
			Notes:     pick(g.rng, notes),
			CreatedAt: createdAt,
		}
		if t.Status.IsDone() {
			completed := createdAt.Add(time.Duration(g.rng.IntN(72)+1) * time.Hour)
			if completed.After(now) {
				completed = now
			}
			t.CompletedAt = &completed
		}
		tasks = append(tasks, t)
	}
	return tasks
}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}

func randomSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}
