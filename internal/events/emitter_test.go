package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []*BoardEvent
	err    error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *BoardEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func TestNewBoardEvent(t *testing.T) {
	owner, task := uuid.New(), uuid.New()

	event, err := NewBoardEvent(TypeTaskReordered, owner, task, TaskMovedPayload{
		FromStatus: "backlog", ToStatus: "done", Position: 2, SortOrder: 1500,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeTaskReordered, event.Type)
	assert.Equal(t, owner, event.OwnerID)
	assert.Equal(t, task, event.TaskID)
	assert.False(t, event.CreatedAt.IsZero())

	var payload TaskMovedPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, "done", payload.ToStatus)
	assert.Equal(t, 1500.0, payload.SortOrder)

	bare, err := NewBoardEvent(TypeTaskDeleted, owner, task, nil)
	require.NoError(t, err)
	assert.Nil(t, bare.Payload)

	_, err = NewBoardEvent(TypeTaskCreated, owner, task, make(chan int))
	assert.Error(t, err)
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	event, err := NewBoardEvent(TypeTaskCreated, uuid.New(), uuid.New(), nil)
	require.NoError(t, err)

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("every handler sees the event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		h1, h2 := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, []*BoardEvent{event}, h1.events)
		assert.Equal(t, []*BoardEvent{event}, h2.events)
	})

	t.Run("failing handler does not stop the rest", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		first := errors.New("first")
		failing := &recordingHandler{err: first}
		alsoFailing := &recordingHandler{err: errors.New("second")}
		ok := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(alsoFailing)
		emitter.RegisterHandler(ok)

		err := emitter.EmitEvent(context.Background(), event)
		assert.Same(t, first, err)
		assert.Len(t, ok.events, 1)
		assert.Len(t, alsoFailing.events, 1)
	})

	t.Run("handler func adapter", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		var got *BoardEvent
		emitter.RegisterHandler(HandlerFunc(func(ctx context.Context, e *BoardEvent) error {
			got = e
			return nil
		}))
		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Same(t, event, got)
	})
}
