package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := getPrincipal(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	userID, err := domain.ParseID("userId", req.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := authorizeOwner(p, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), service.CreateTaskInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Deadline:    deadline,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTask handles PUT /tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	updated, err := h.tasks.UpdateTask(r.Context(), task.ID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UpdateTaskResponse{
		Message:     "Task updated successfully",
		UpdatedTask: updated,
	})
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	if _, err := h.tasks.DeleteTask(r.Context(), task.ID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: "Task deleted successfully"})
}

// ListUserTasks handles GET /tasks/user/{userId}.
func (h *TaskHandler) ListUserTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getAuthorizedUserParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	tasks, err := h.tasks.QueryTasks(r.Context(), userID, service.TaskQuery{
		Category:     q.Get("category"),
		Priority:     q.Get("priority"),
		Date:         q.Get("date"),
		Search:       q.Get("search"),
		DeadlineSort: q.Get("deadlineSort"),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("tasks queried",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(tasks)))
	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// loadOwnedTask resolves the {id} task and checks the caller may act on it.
// It writes the error response and returns false on failure.
func (h *TaskHandler) loadOwnedTask(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	p, ok := getPrincipal(w, r)
	if !ok {
		return nil, false
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}

	task, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	if err := authorizeOwner(p, task.UserID); err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return task, true
}
