package testutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandler(t *testing.T) {
	t.Run("subscribes to the given types", func(t *testing.T) {
		handler := NewMockEventHandler("stock.changed", "sale.completed")

		assert.Equal(t, []string{"stock.changed", "sale.completed"}, handler.EventTypes())
		assert.Zero(t, handler.HandledCount())
	})

	t.Run("records handled events", func(t *testing.T) {
		handler := NewMockEventHandler("stock.changed")
		event := NewTestEvent("stock.changed")

		require.NoError(t, handler.Handle(context.Background(), event))

		assert.Equal(t, 1, handler.HandledCount())
		assert.Equal(t, event, handler.Handled()[0])
	})

	t.Run("injected error is returned", func(t *testing.T) {
		handler := NewMockEventHandler("stock.changed")
		handler.SetError(assert.AnError)

		err := handler.Handle(context.Background(), NewTestEvent("stock.changed"))

		assert.Equal(t, assert.AnError, err)
	})

	t.Run("reset clears events and error", func(t *testing.T) {
		handler := NewMockEventHandler("stock.changed")
		handler.SetError(assert.AnError)
		_ = handler.Handle(context.Background(), NewTestEvent("stock.changed"))
		require.Equal(t, 1, handler.HandledCount())

		handler.Reset()

		assert.Zero(t, handler.HandledCount())
		assert.NoError(t, handler.Handle(context.Background(), NewTestEvent("stock.changed")))
	})
}

func TestTestEvent(t *testing.T) {
	event := NewTestEvent("stock.changed")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "stock.changed", event.EventType())
	assert.False(t, event.OccurredAt().IsZero())
	assert.Equal(t, "test-data", event.Data)

	id := uuid.New()
	withID := NewTestEventWithID(id, "sale.completed")
	assert.Equal(t, id, withID.EventID())
	assert.Equal(t, "sale.completed", withID.EventType())
}

func TestWaitForCondition(t *testing.T) {
	t.Run("returns once the condition holds", func(t *testing.T) {
		var flag atomic.Bool
		go func() {
			time.Sleep(20 * time.Millisecond)
			flag.Store(true)
		}()

		met := WaitForCondition(t, flag.Load, 200*time.Millisecond, 10*time.Millisecond)

		assert.True(t, met)
	})

	t.Run("gives up at the timeout", func(t *testing.T) {
		met := WaitForCondition(t, func() bool { return false },
			50*time.Millisecond, 10*time.Millisecond)

		assert.False(t, met)
	})
}

func TestWaitForEventCount(t *testing.T) {
	handler := NewMockEventHandler("stock.changed")

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = handler.Handle(context.Background(), NewTestEvent("stock.changed"))
		_ = handler.Handle(context.Background(), NewTestEvent("stock.changed"))
	}()

	assert.True(t, WaitForEventCount(t, handler, 2, 200*time.Millisecond))
}
