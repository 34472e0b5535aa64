package api

import (
	"time"

	"github.com/phrazzld/devtracker-api/internal/domain"
)

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title              string     `json:"title"                         validate:"required,max=200"`
	Motivation         string     `json:"motivation,omitempty"`
	Description        string     `json:"description,omitempty"`
	Approach           string     `json:"approach,omitempty"`
	AcceptanceCriteria string     `json:"acceptance_criteria,omitempty"`
	Status             string     `json:"status,omitempty"              validate:"omitempty,max=32"`
	DueDate            *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}. Omitted fields are
// left unchanged.
type UpdateTaskRequest struct {
	Title              *string    `json:"title,omitempty"               validate:"omitempty,max=200"`
	Motivation         *string    `json:"motivation,omitempty"`
	Description        *string    `json:"description,omitempty"`
	Approach           *string    `json:"approach,omitempty"`
	AcceptanceCriteria *string    `json:"acceptance_criteria,omitempty"`
	Status             *string    `json:"status,omitempty"              validate:"omitempty,max=32"`
	DueDate            *time.Time `json:"due_date,omitempty"`
}

// ReorderTaskRequest is the body of POST /api/tasks/{id}/reorder.
// Positions past the end of the column are clamped to its tail.
type ReorderTaskRequest struct {
	TargetStatus   string `json:"target_status"   validate:"required,max=32"`
	TargetPosition *int   `json:"target_position" validate:"required,gte=0"`
}

// TaskResponse is the full representation of a task.
type TaskResponse struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Motivation         string     `json:"motivation,omitempty"`
	Description        string     `json:"description,omitempty"`
	Approach           string     `json:"approach,omitempty"`
	AcceptanceCriteria string     `json:"acceptance_criteria,omitempty"`
	Status             string     `json:"status"`
	SortOrder          float64    `json:"sort_order"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TaskSummaryResponse is the list representation of a task.
type TaskSummaryResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	SortOrder float64    `json:"sort_order"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TaskListResponse is returned by GET /api/tasks.
type TaskListResponse struct {
	Tasks []TaskSummaryResponse `json:"tasks"`
}

// ColumnResponse is one status column of the board.
type ColumnResponse struct {
	Status string                `json:"status"`
	Tasks  []TaskSummaryResponse `json:"tasks"`
}

// BoardResponse is returned by GET /api/board.
type BoardResponse struct {
	Columns []ColumnResponse `json:"columns"`
}

func (r CreateTaskRequest) toFields() domain.TaskFields {
	return domain.TaskFields{
		Title:              r.Title,
		Motivation:         r.Motivation,
		Description:        r.Description,
		Approach:           r.Approach,
		AcceptanceCriteria: r.AcceptanceCriteria,
		Status:             domain.Status(r.Status),
		DueDate:            r.DueDate,
	}
}

func (r UpdateTaskRequest) toPatch() domain.TaskPatch {
	patch := domain.TaskPatch{
		Title:              r.Title,
		Motivation:         r.Motivation,
		Description:        r.Description,
		Approach:           r.Approach,
		AcceptanceCriteria: r.AcceptanceCriteria,
		DueDate:            r.DueDate,
	}
	if r.Status != nil {
		status := domain.Status(*r.Status)
		patch.Status = &status
	}
	return patch
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:                 t.ID.String(),
		Title:              t.Title,
		Motivation:         t.Motivation,
		Description:        t.Description,
		Approach:           t.Approach,
		AcceptanceCriteria: t.AcceptanceCriteria,
		Status:             string(t.Status),
		SortOrder:          t.SortOrder,
		DueDate:            t.DueDate,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func summariesToResponse(summaries []domain.TaskSummary) []TaskSummaryResponse {
	out := make([]TaskSummaryResponse, len(summaries))
	for i, s := range summaries {
		out[i] = TaskSummaryResponse{
			ID:        s.ID.String(),
			Title:     s.Title,
			Status:    string(s.Status),
			SortOrder: s.SortOrder,
			DueDate:   s.DueDate,
			CreatedAt: s.CreatedAt,
		}
	}
	return out
}

func boardToResponse(b *domain.Board) BoardResponse {
	resp := BoardResponse{Columns: make([]ColumnResponse, len(b.Columns))}
	for i, col := range b.Columns {
		resp.Columns[i] = ColumnResponse{
			Status: string(col.Status),
			Tasks:  summariesToResponse(col.Tasks),
		}
	}
	return resp
}
