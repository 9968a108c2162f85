package eventbus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConsumer struct {
	eventTypes []string
	events     []*eventbus.ConsumedEvent
	err        error
}

func (m *mockConsumer) EventTypes() []string {
	return m.eventTypes
}

func (m *mockConsumer) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func TestConsumerRegistry_Register(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(observability.DiscardLogger())

	consumer := &mockConsumer{
		eventTypes: []string{"tracker.task.added", "tracker.task.deleted"},
	}
	registry.Register(consumer)

	assert.Len(t, registry.GetConsumers("tracker.task.added"), 1)
	assert.Len(t, registry.GetConsumers("tracker.task.deleted"), 1)
	assert.Empty(t, registry.GetConsumers("tracker.task.updated"))
	assert.Equal(t, 2, registry.ConsumerCount())
}

func TestConsumerRegistry_Wildcards(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(observability.DiscardLogger())

	all := &mockConsumer{eventTypes: []string{"#"}}
	tasks := &mockConsumer{eventTypes: []string{"tracker.task.*"}}
	both := &mockConsumer{eventTypes: []string{"tracker.#", "tracker.task.added"}}
	registry.Register(all)
	registry.Register(tasks)
	registry.Register(both)

	assert.Len(t, registry.GetConsumers("tracker.task.added"), 3)
	assert.Len(t, registry.GetConsumers("tracker.store.loaded"), 2)
	assert.Len(t, registry.GetConsumers("other"), 1)
}

func TestConsumerRegistry_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to every matching consumer", func(t *testing.T) {
		registry := eventbus.NewConsumerRegistry(observability.DiscardLogger())
		c1 := &mockConsumer{eventTypes: []string{"tracker.task.added"}}
		c2 := &mockConsumer{eventTypes: []string{"tracker.task.*"}}
		registry.Register(c1)
		registry.Register(c2)

		event := &eventbus.ConsumedEvent{EventID: uuid.New(), RoutingKey: "tracker.task.added"}
		require.NoError(t, registry.Dispatch(ctx, event))

		assert.Len(t, c1.events, 1)
		assert.Len(t, c2.events, 1)
	})

	t.Run("continues after failure and returns error", func(t *testing.T) {
		registry := eventbus.NewConsumerRegistry(observability.DiscardLogger())
		failing := &mockConsumer{eventTypes: []string{"tracker.task.deleted"}, err: errors.New("boom")}
		ok := &mockConsumer{eventTypes: []string{"tracker.task.deleted"}}
		registry.Register(failing)
		registry.Register(ok)

		err := registry.Dispatch(ctx, &eventbus.ConsumedEvent{RoutingKey: "tracker.task.deleted"})

		assert.EqualError(t, err, "boom")
		assert.Len(t, ok.events, 1)
	})

	t.Run("no consumers is not an error", func(t *testing.T) {
		registry := eventbus.NewConsumerRegistry(observability.DiscardLogger())
		assert.NoError(t, registry.Dispatch(ctx, &eventbus.ConsumedEvent{RoutingKey: "tracker.task.purged"}))
	})
}

func TestMatchRoutingKey(t *testing.T) {
	tests := []struct {
		pattern  string
		key      string
		expected bool
	}{
		{"tracker.task.added", "tracker.task.added", true},
		{"tracker.task.added", "tracker.task.deleted", false},
		{"tracker.task.*", "tracker.task.added", true},
		{"tracker.*", "tracker.task.added", false},
		{"tracker.#", "tracker.task.added", true},
		{"tracker.#", "tracker", true},
		{"#", "anything.at.all", true},
		{"#.added", "tracker.task.added", true},
		{"#.added", "tracker.task.deleted", false},
		{"*.task.*", "tracker.task.restored", true},
		{"*", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, eventbus.MatchRoutingKey(tt.pattern, tt.key))
		})
	}
}
