package store_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

func newTask(userID uuid.UUID, name, description string, priority domain.Priority, deadline, created time.Time) *domain.Task {
	return &domain.Task{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
		Category:    "work",
		Priority:    priority,
		Deadline:    deadline,
		Status:      domain.StatusPending,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestTaskFilterMatches(t *testing.T) {
	userID := uuid.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	task := newTask(userID, "Foobar", "plain", domain.PriorityHigh, base.Add(23*time.Hour), base)

	dayStart := base
	atDeadline := task.Deadline
	nextDay := base.Add(24 * time.Hour)

	tests := []struct {
		name   string
		filter store.TaskFilter
		want   bool
	}{
		{"owner only", store.TaskFilter{UserID: userID}, true},
		{"other owner", store.TaskFilter{UserID: uuid.New()}, false},
		{"category match", store.TaskFilter{UserID: userID, Category: "work"}, true},
		{"category mismatch", store.TaskFilter{UserID: userID, Category: "home"}, false},
		{"priority match", store.TaskFilter{UserID: userID, Priority: domain.PriorityHigh}, true},
		{"priority mismatch", store.TaskFilter{UserID: userID, Priority: domain.PriorityLow}, false},
		{"within day", store.TaskFilter{UserID: userID, DeadlineFrom: &dayStart, DeadlineBefore: &nextDay}, true},
		{"before bound is exclusive", store.TaskFilter{UserID: userID, DeadlineBefore: &atDeadline}, false},
		{"next day", store.TaskFilter{UserID: userID, DeadlineFrom: &nextDay}, false},
		{"search name case-insensitive", store.TaskFilter{UserID: userID, Search: "foo"}, true},
		{"search miss", store.TaskFilter{UserID: userID, Search: "baz"}, false},
		{"search treats metacharacters literally", store.TaskFilter{UserID: userID, Search: "F.o"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(task))
		})
	}

	described := newTask(userID, "other", "has foo inside", domain.PriorityLow, base, base)
	assert.True(t, store.TaskFilter{UserID: userID, Search: "FOO"}.Matches(described))
}

func TestSortTasks(t *testing.T) {
	userID := uuid.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := newTask(userID, "a", "d", domain.PriorityLow, base.Add(48*time.Hour), base)
	b := newTask(userID, "b", "d", domain.PriorityLow, base.Add(24*time.Hour), base.Add(time.Minute))
	c := newTask(userID, "c", "d", domain.PriorityLow, base.Add(48*time.Hour), base.Add(2*time.Minute))

	names := func(tasks []*domain.Task) []string {
		out := make([]string, len(tasks))
		for i, task := range tasks {
			out[i] = task.Name
		}
		return out
	}

	tasks := []*domain.Task{c, a, b}
	store.SortTasks(tasks, store.SortNatural)
	assert.Equal(t, []string{"a", "b", "c"}, names(tasks))

	store.SortTasks(tasks, store.SortDeadlineAsc)
	assert.Equal(t, []string{"b", "a", "c"}, names(tasks))

	store.SortTasks(tasks, store.SortDeadlineDesc)
	assert.Equal(t, []string{"a", "c", "b"}, names(tasks))
}
