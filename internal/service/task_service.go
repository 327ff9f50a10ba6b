package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Notification messages produced by task mutations.
const (
	taskCreatedMessage = "New Task Added: %s"
	taskUpdatedMessage = "Task updated: %s"
	taskDeletedMessage = "Task Deleted: %s"
)

// dateLayout is the calendar-date form accepted by the date filter.
const dateLayout = "2006-01-02"

// CreateTaskInput carries the fields of a new task.
type CreateTaskInput struct {
	UserID      uuid.UUID
	Name        string
	Description string
	Category    string
	Priority    string
	Deadline    time.Time
}

// TaskQuery holds the raw, optional filter parameters of a task search.
// Empty fields impose no constraint.
type TaskQuery struct {
	Category     string
	Priority     string
	Date         string
	Search       string
	DeadlineSort string
}

// TaskService provides task mutation and query operations.
type TaskService interface {
	// CreateTask persists a Pending task and emits a "task" notification.
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies patch atomically and emits a "task-updated" notification.
	UpdateTask(ctx context.Context, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes the task and emits a "task-delete" notification.
	DeleteTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// QueryTasks returns the user's tasks matching query.
	QueryTasks(ctx context.Context, userID uuid.UUID, query TaskQuery) ([]*domain.Task, error)
}

// TaskServiceImpl implements TaskService.
type TaskServiceImpl struct {
	tasks         store.TaskStore
	notifications NotificationService
	logger        *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(tasks store.TaskStore, notifications NotificationService, logger *slog.Logger) TaskService {
	if tasks == nil {
		panic("task store cannot be nil")
	}
	if notifications == nil {
		panic("notification service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		tasks:         tasks,
		notifications: notifications,
		logger:        logger.With("component", "task_service"),
	}
}

// CreateTask implements TaskService.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(
		input.UserID,
		input.Name,
		input.Description,
		input.Category,
		input.Priority,
		input.Deadline,
	)
	if err != nil {
		log.Debug("rejected invalid task", "error", err, "user_id", input.UserID)
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to save task", "error", err, "user_id", task.UserID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	log.Info("task created", "task_id", task.ID, "user_id", task.UserID)
	s.notify(ctx, task.UserID, fmt.Sprintf(taskCreatedMessage, task.Name), domain.NotificationTypeTask)
	return task, nil
}

// GetTask implements TaskService.
func (s *TaskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve task",
				"error", err,
				"task_id", taskID)
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return task, nil
}

// UpdateTask implements TaskService.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patch.Normalize(); err != nil {
		return nil, fmt.Errorf("invalid task update: %w", err)
	}

	task, err := s.tasks.Update(ctx, taskID, patch)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("update of missing task", "task_id", taskID)
		} else {
			log.Error("failed to update task", "error", err, "task_id", taskID)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	log.Info("task updated", "task_id", task.ID, "user_id", task.UserID)
	s.notify(ctx, task.UserID, fmt.Sprintf(taskUpdatedMessage, task.Name), domain.NotificationTypeTaskUpdated)
	return task, nil
}

// DeleteTask implements TaskService.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.Delete(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("delete of missing task", "task_id", taskID)
		} else {
			log.Error("failed to delete task", "error", err, "task_id", taskID)
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}

	log.Info("task deleted", "task_id", task.ID, "user_id", task.UserID)
	s.notify(ctx, task.UserID, fmt.Sprintf(taskDeletedMessage, task.Name), domain.NotificationTypeTaskDeleted)
	return task, nil
}

// QueryTasks implements TaskService.
func (s *TaskServiceImpl) QueryTasks(ctx context.Context, userID uuid.UUID, query TaskQuery) ([]*domain.Task, error) {
	filter, err := BuildTaskFilter(userID, query)
	if errors.Is(err, domain.ErrInvalidPriority) {
		// An unknown priority cannot match any stored task.
		return []*domain.Task{}, nil
	}
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.Find(ctx, filter)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query tasks",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return tasks, nil
}

// BuildTaskFilter converts raw query parameters into a store filter scoped to userID.
// It returns domain.ErrInvalidPriority for an unknown priority and a
// ValidationError for an unparseable date.
func BuildTaskFilter(userID uuid.UUID, query TaskQuery) (store.TaskFilter, error) {
	filter := store.TaskFilter{
		UserID:   userID,
		Category: query.Category,
		Search:   query.Search,
	}

	if query.Priority != "" {
		priority, err := domain.ParsePriority(query.Priority)
		if err != nil {
			return filter, err
		}
		filter.Priority = priority
	}

	if query.Date != "" {
		from, before, err := dayRange(query.Date)
		if err != nil {
			return filter, err
		}
		filter.DeadlineFrom = &from
		filter.DeadlineBefore = &before
	}

	switch query.DeadlineSort {
	case "":
		filter.Sort = store.SortNatural
	case "asc":
		filter.Sort = store.SortDeadlineAsc
	default:
		filter.Sort = store.SortDeadlineDesc
	}

	return filter, nil
}

// dayRange returns the start of the UTC calendar day named by value and the
// start of the following day.
func dayRange(value string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, value)
		if tsErr != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("date", "must be a date in YYYY-MM-DD format", nil)
		}
		ts = ts.UTC()
		day = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	return day, day.AddDate(0, 0, 1), nil
}

// notify emits a notification for a completed mutation. Failures are logged
// and never reported to the caller.
func (s *TaskServiceImpl) notify(ctx context.Context, userID uuid.UUID, message, notificationType string) {
	if _, err := s.notifications.Emit(ctx, userID, message, notificationType); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("task notification failed",
			"error", err,
			"user_id", userID,
			"type", notificationType)
	}
}
