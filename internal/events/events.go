package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Board event types.
const (
	TypeTaskCreated      = "task.created"
	TypeTaskUpdated      = "task.updated"
	TypeTaskReordered    = "task.reordered"
	TypeTaskDeleted      = "task.deleted"
	TypeColumnRebalanced = "column.rebalanced"
)

// BoardEvent records one committed change to a user's board.
type BoardEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// OwnerID is the board owner
	OwnerID uuid.UUID `json:"owner_id"`

	// TaskID is the affected task, or uuid.Nil for column-level events
	TaskID uuid.UUID `json:"task_id,omitempty"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TaskMovedPayload describes a reorder.
type TaskMovedPayload struct {
	FromStatus string  `json:"from_status"`
	ToStatus   string  `json:"to_status"`
	Position   int     `json:"position"`
	SortOrder  float64 `json:"sort_order"`
}

// ColumnRebalancedPayload describes a renumbered column.
type ColumnRebalancedPayload struct {
	Status    string `json:"status"`
	TaskCount int    `json:"task_count"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *BoardEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewBoardEvent creates a new BoardEvent. A nil payload leaves Payload empty.
func NewBoardEvent(eventType string, ownerID, taskID uuid.UUID, payload any) (*BoardEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &BoardEvent{
		ID:        uuid.New(),
		Type:      eventType,
		OwnerID:   ownerID,
		TaskID:    taskID,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *BoardEvent) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *BoardEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *BoardEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *BoardEvent) error
}
