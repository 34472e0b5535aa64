package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the board column a task lives in.
type Status string

// Possible task status values, listed in board order.
const (
	StatusBacklog    Status = "backlog"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusDone       Status = "done"
	StatusWontDo     Status = "wont_do"
)

// DefaultStatus is assigned to tasks created without an explicit status.
const DefaultStatus = StatusBacklog

var (
	// ErrInvalidStatus is returned when a status value is not recognized.
	ErrInvalidStatus = fmt.Errorf("%w: invalid task status", ErrValidation)

	// ErrTaskDeleted is returned when a mutation targets a soft-deleted task.
	ErrTaskDeleted = errors.New("task is deleted")
)

var boardOrder = []Status{
	StatusBacklog,
	StatusInProgress,
	StatusInReview,
	StatusDone,
	StatusWontDo,
}

// Statuses returns every status in board order.
func Statuses() []Status {
	out := make([]Status, len(boardOrder))
	copy(out, boardOrder)
	return out
}

// ParseStatus converts raw input into a Status. Surrounding whitespace is
// ignored; anything else must match a known value exactly.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.IsValid() {
		return "", NewValidationError("status", fmt.Sprintf("unrecognized value %q", raw), ErrInvalidStatus)
	}
	return s, nil
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	return s.Rank() >= 0
}

// Rank returns the zero-based column index of s on the board, or -1 for an
// unknown status.
func (s Status) Rank() int {
	for i, candidate := range boardOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

func (s Status) String() string {
	return string(s)
}

// Lifecycle is the composite state of a task: its column plus the
// soft-delete overlay. Any live status may move to any other status; a
// deleted task accepts no further transitions.
type Lifecycle struct {
	Status  Status
	Deleted bool
}

// Transition returns the lifecycle after moving to status to.
func (l Lifecycle) Transition(to Status) (Lifecycle, error) {
	if l.Deleted {
		return l, ErrTaskDeleted
	}
	if !to.IsValid() {
		return l, NewValidationError("status", fmt.Sprintf("unrecognized value %q", string(to)), ErrInvalidStatus)
	}
	return Lifecycle{Status: to}, nil
}

// Delete returns the lifecycle with the soft-delete flag set. The status is
// retained.
func (l Lifecycle) Delete() (Lifecycle, error) {
	if l.Deleted {
		return l, ErrTaskDeleted
	}
	return Lifecycle{Status: l.Status, Deleted: true}, nil
}
