package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// TaskStore implements store.TaskStore in memory.
// Tasks are kept in insertion order.
type TaskStore struct {
	mu    sync.RWMutex
	tasks []*domain.Task
}

// NewTaskStore creates an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *task
	s.tasks = append(s.tasks, &stored)
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		clone := *s.tasks[i]
		return &clone, nil
	}
	return nil, store.ErrTaskNotFound
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(_ context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Normalize(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, store.ErrTaskNotFound
	}

	s.tasks[i].Apply(patch, time.Now())
	clone := *s.tasks[i]
	return &clone, nil
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, store.ErrTaskNotFound
	}

	removed := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return removed, nil
}

// Find implements store.TaskStore.Find
func (s *TaskStore) Find(_ context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	s.mu.RLock()
	out := make([]*domain.Task, 0)
	for _, t := range s.tasks {
		if filter.Matches(t) {
			clone := *t
			out = append(out, &clone)
		}
	}
	s.mu.RUnlock()

	store.SortTasks(out, filter.Sort)
	return out, nil
}

// indexOf must be called with s.mu held.
func (s *TaskStore) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.tasks, func(t *domain.Task) bool { return t.ID == id })
}
