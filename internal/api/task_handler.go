package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/devtracker-api/internal/api/shared"
	"github.com/phrazzld/devtracker-api/internal/platform/logger"
	"github.com/phrazzld/devtracker-api/internal/service"
)

// TaskHandler serves the task board endpoints.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("task service cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	summaries, err := h.tasks.ListTasks(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: summariesToResponse(summaries)})
}

// GetBoard handles GET /api/board
func (h *TaskHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	board, err := h.tasks.GetBoard(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load board")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, boardToResponse(board))
}

// CreateTask handles POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), ownerID, req.toFields())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /api/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, taskID, ok := requireOwnerAndTaskID(w, r, log)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), ownerID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, taskID, ok := requireOwnerAndTaskID(w, r, log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), ownerID, taskID, req.toPatch())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, taskID, ok := requireOwnerAndTaskID(w, r, log)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), ownerID, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderTask handles POST /api/tasks/{id}/reorder
func (h *TaskHandler) ReorderTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ownerID, taskID, ok := requireOwnerAndTaskID(w, r, log)
	if !ok {
		return
	}

	var req ReorderTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.ReorderTask(r.Context(), ownerID, taskID, req.TargetStatus, *req.TargetPosition)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reorder task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
