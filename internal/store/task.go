package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// SortOrder selects the ordering of query results.
type SortOrder int

const (
	// SortNatural returns tasks in creation order.
	SortNatural SortOrder = iota
	// SortDeadlineAsc returns the earliest deadline first.
	SortDeadlineAsc
	// SortDeadlineDesc returns the latest deadline first.
	SortDeadlineDesc
)

// TaskFilter describes a task query. Zero-valued fields impose no constraint,
// except UserID which always scopes the query.
type TaskFilter struct {
	UserID   uuid.UUID
	Category string
	// Priority must already be canonical.
	Priority domain.Priority
	// DeadlineFrom is an inclusive lower bound and DeadlineBefore an
	// exclusive upper bound on the deadline.
	DeadlineFrom   *time.Time
	DeadlineBefore *time.Time
	// Search is a literal, case-insensitive substring matched against the
	// name or the description.
	Search string
	Sort   SortOrder
}

// Matches reports whether task satisfies every constraint in f.
// Backends that cannot push the filter down use it directly.
func (f TaskFilter) Matches(task *domain.Task) bool {
	if task.UserID != f.UserID {
		return false
	}
	if f.Category != "" && task.Category != f.Category {
		return false
	}
	if f.Priority != "" && task.Priority != f.Priority {
		return false
	}
	if f.DeadlineFrom != nil && task.Deadline.Before(*f.DeadlineFrom) {
		return false
	}
	if f.DeadlineBefore != nil && !task.Deadline.Before(*f.DeadlineBefore) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(task.Name), needle) &&
			!strings.Contains(strings.ToLower(task.Description), needle) {
			return false
		}
	}
	return true
}

// SortTasks orders tasks in place. Ties on deadline keep creation order.
func SortTasks(tasks []*domain.Task, order SortOrder) {
	byCreation := func(a, b *domain.Task) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	}

	switch order {
	case SortDeadlineAsc:
		slices.SortStableFunc(tasks, func(a, b *domain.Task) int {
			return cmp.Or(a.Deadline.Compare(b.Deadline), byCreation(a, b))
		})
	case SortDeadlineDesc:
		slices.SortStableFunc(tasks, func(a, b *domain.Task) int {
			return cmp.Or(b.Deadline.Compare(a.Deadline), byCreation(a, b))
		})
	default:
		slices.SortStableFunc(tasks, byCreation)
	}
}

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task. The owner's existence is not checked.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update applies patch to the task as a single atomic operation and
	// returns the task as it is after the update.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes the task and returns it as it was before removal.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Find returns the tasks matching filter in the requested order.
	// No matches yields an empty slice.
	Find(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
}
