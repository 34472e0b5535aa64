package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the maximum number of characters in a task title.
const MaxTitleLength = 200

// Common validation errors for Task
var (
	ErrEmptyTaskID     = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrEmptyTaskUserID = fmt.Errorf("%w: task user ID cannot be empty", ErrValidation)
	ErrEmptyTaskTitle  = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrTaskTitleLength = fmt.Errorf("%w: task title is too long", ErrValidation)
)

// Task is a single card on a user's board.
//
// SortOrder ranks the task inside its status column; lower keys come first.
// Optional text fields use the empty string for "not set".
type Task struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	Title              string     `json:"title"`
	Motivation         string     `json:"motivation,omitempty"`
	Description        string     `json:"description,omitempty"`
	Approach           string     `json:"approach,omitempty"`
	AcceptanceCriteria string     `json:"acceptance_criteria,omitempty"`
	Status             Status     `json:"status"`
	SortOrder          float64    `json:"sort_order"`
	Deleted            bool       `json:"-"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TaskFields holds the caller-supplied fields of a new task. An empty Status
// selects DefaultStatus.
type TaskFields struct {
	Title              string
	Motivation         string
	Description        string
	Approach           string
	AcceptanceCriteria string
	Status             Status
	DueDate            *time.Time
}

// TaskPatch is a partial update. Nil fields are left untouched. A patch never
// carries a sort key; repositioning goes through reorder.
type TaskPatch struct {
	Title              *string
	Motivation         *string
	Description        *string
	Approach           *string
	AcceptanceCriteria *string
	Status             *Status
	DueDate            *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Motivation == nil &&
		p.Description == nil &&
		p.Approach == nil &&
		p.AcceptanceCriteria == nil &&
		p.Status == nil &&
		p.DueDate == nil
}

// TaskSummary is the lightweight projection returned by list.
type TaskSummary struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Status    Status     `json:"status"`
	SortOrder float64    `json:"sort_order"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewTask creates a live task owned by userID. The sort key is left at zero
// for the caller to assign.
func NewTask(userID uuid.UUID, fields TaskFields) (*Task, error) {
	status := DefaultStatus
	if fields.Status != "" {
		parsed, err := ParseStatus(string(fields.Status))
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	now := time.Now().UTC()
	task := &Task{
		ID:                 uuid.New(),
		UserID:             userID,
		Title:              strings.TrimSpace(fields.Title),
		Motivation:         fields.Motivation,
		Description:        fields.Description,
		Approach:           fields.Approach,
		AcceptanceCriteria: fields.AcceptanceCriteria,
		Status:             status,
		DueDate:            normalizeDueDate(fields.DueDate),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", fmt.Sprintf("unrecognized value %q", string(t.Status)), ErrInvalidStatus)
	}
	return nil
}

// Lifecycle returns the task's composite status state.
func (t *Task) Lifecycle() Lifecycle {
	return Lifecycle{Status: t.Status, Deleted: t.Deleted}
}

// ApplyPatch applies p to the task. The task is left untouched when any
// field is invalid. The sort key is never modified.
func (t *Task) ApplyPatch(p TaskPatch, now time.Time) error {
	if t.Deleted {
		return ErrTaskDeleted
	}

	next := *t
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
		if err := validateTitle(next.Title); err != nil {
			return err
		}
	}
	if p.Status != nil {
		lc, err := t.Lifecycle().Transition(*p.Status)
		if err != nil {
			return err
		}
		next.Status = lc.Status
	}
	if p.Motivation != nil {
		next.Motivation = *p.Motivation
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Approach != nil {
		next.Approach = *p.Approach
	}
	if p.AcceptanceCriteria != nil {
		next.AcceptanceCriteria = *p.AcceptanceCriteria
	}
	if p.DueDate != nil {
		next.DueDate = normalizeDueDate(p.DueDate)
	}

	next.UpdatedAt = now.UTC()
	*t = next
	return nil
}

// MoveTo places the task in status at key. Status and key change together.
func (t *Task) MoveTo(status Status, key float64, now time.Time) error {
	lc, err := t.Lifecycle().Transition(status)
	if err != nil {
		return err
	}
	t.Status = lc.Status
	t.SortOrder = key
	t.UpdatedAt = now.UTC()
	return nil
}

// MarkDeleted sets the soft-delete flag. The status is retained.
func (t *Task) MarkDeleted(now time.Time) error {
	lc, err := t.Lifecycle().Delete()
	if err != nil {
		return err
	}
	t.Deleted = lc.Deleted
	t.UpdatedAt = now.UTC()
	return nil
}

// Summary returns the list projection of the task.
func (t *Task) Summary() TaskSummary {
	return TaskSummary{
		ID:        t.ID,
		Title:     t.Title,
		Status:    t.Status,
		SortOrder: t.SortOrder,
		DueDate:   t.DueDate,
		CreatedAt: t.CreatedAt,
	}
}

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTaskTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTaskTitleLength
	}
	return nil
}

func normalizeDueDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	utc := d.UTC()
	return &utc
}
