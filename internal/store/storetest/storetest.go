// Package storetest holds behavioural tests shared by every store backend.
// Each backend's tests call the Run functions with a constructor that
// returns an empty store scoped to the calling test.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunUserStoreTests exercises a store.UserStore implementation.
func RunUserStoreTests(t *testing.T, newStore func(t *testing.T) store.UserStore) {
	t.Run("create and get", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t)
		user := mustUser(t, "Ada", "ada@example.com")
		require.NoError(t, users.Create(ctx, user))

		byID, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)
		assert.Equal(t, user.HashedPassword, byID.HashedPassword)
		assert.Equal(t, domain.RoleUser, byID.Role)
		assert.False(t, byID.Approved)

		byEmail, err := users.GetByEmail(ctx, "ADA@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("missing user", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t)

		_, err := users.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		_, err = users.GetByEmail(ctx, "ghost@example.com")
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t)
		require.NoError(t, users.Create(ctx, mustUser(t, "Ada", "dup@example.com")))

		err := users.Create(ctx, mustUser(t, "Imposter", "Dup@Example.com"))
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("list", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t)
		first := mustUser(t, "First", "first@example.com")
		second := mustUser(t, "Second", "second@example.com")
		require.NoError(t, users.Create(ctx, first))
		require.NoError(t, users.Create(ctx, second))

		list, err := users.List(ctx)
		require.NoError(t, err)
		ids := make([]uuid.UUID, 0, len(list))
		for _, u := range list {
			ids = append(ids, u.ID)
		}
		assert.Contains(t, ids, first.ID)
		assert.Contains(t, ids, second.ID)
	})

	t.Run("approve", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t)
		require.NoError(t, users.Create(ctx, mustUser(t, "Ada", "approve@example.com")))

		approved, err := users.Approve(ctx, "Approve@example.com")
		require.NoError(t, err)
		assert.True(t, approved.Approved)

		stored, err := users.GetByEmail(ctx, "approve@example.com")
		require.NoError(t, err)
		assert.True(t, stored.Approved)

		_, err = users.Approve(ctx, "approve@example.com")
		assert.ErrorIs(t, err, store.ErrAlreadyApproved)

		_, err = users.Approve(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("update password", func(t *testing.T) {
		ctx := context.Background()
		users := newStore(t)
		require.NoError(t, users.Create(ctx, mustUser(t, "Ada", "pw@example.com")))

		updated, err := users.UpdatePassword(ctx, "pw@example.com", "new-hash")
		require.NoError(t, err)
		assert.Equal(t, "new-hash", updated.HashedPassword)

		stored, err := users.GetByEmail(ctx, "pw@example.com")
		require.NoError(t, err)
		assert.Equal(t, "new-hash", stored.HashedPassword)

		_, err = users.UpdatePassword(ctx, "ghost@example.com", "hash")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

// RunTaskStoreTests exercises a store.TaskStore implementation.
func RunTaskStoreTests(t *testing.T, newStore func(t *testing.T) store.TaskStore) {
	t.Run("create and get", func(t *testing.T) {
		ctx := context.Background()
		tasks := newStore(t)
		task := mustTask(t, uuid.New(), "Write tests", "Work", "High", day(2030, 1, 15))
		require.NoError(t, tasks.Create(ctx, task))

		got, err := tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.UserID, got.UserID)
		assert.Equal(t, task.Name, got.Name)
		assert.Equal(t, domain.PriorityHigh, got.Priority)
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.True(t, task.Deadline.Equal(got.Deadline))

		_, err = tasks.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("update", func(t *testing.T) {
		ctx := context.Background()
		tasks := newStore(t)
		task := mustTask(t, uuid.New(), "Draft", "Work", "Low", day(2030, 1, 15))
		require.NoError(t, tasks.Create(ctx, task))

		name := "Final"
		status := domain.StatusCompleted
		deadline := day(2030, 2, 1)
		updated, err := tasks.Update(ctx, task.ID, domain.TaskPatch{
			Name:     &name,
			Status:   &status,
			Deadline: &deadline,
		})
		require.NoError(t, err)
		assert.Equal(t, "Final", updated.Name)
		assert.Equal(t, domain.StatusCompleted, updated.Status)
		assert.Equal(t, domain.PriorityLow, updated.Priority)
		assert.Equal(t, task.Description, updated.Description)
		assert.True(t, deadline.Equal(updated.Deadline))
		assert.False(t, updated.UpdatedAt.Before(task.UpdatedAt.Truncate(time.Millisecond)))

		_, err = tasks.Update(ctx, uuid.New(), domain.TaskPatch{Name: &name})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		ctx := context.Background()
		tasks := newStore(t)
		task := mustTask(t, uuid.New(), "Disposable", "Home", "Medium", day(2030, 1, 15))
		require.NoError(t, tasks.Create(ctx, task))

		deleted, err := tasks.Delete(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, deleted.ID)
		assert.Equal(t, "Disposable", deleted.Name)

		_, err = tasks.GetByID(ctx, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		_, err = tasks.Delete(ctx, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("find", func(t *testing.T) {
		ctx := context.Background()
		tasks := newStore(t)
		owner := uuid.New()

		groceries := mustTask(t, owner, "Groceries", "Home", "Low", day(2030, 3, 1))
		report := mustTask(t, owner, "Quarterly report", "Work", "High", day(2030, 1, 15).Add(9*time.Hour))
		offsite := mustTask(t, owner, "Offsite 100% booked", "Work", "Medium", day(2030, 2, 1))
		foreign := mustTask(t, uuid.New(), "Quarterly report", "Work", "High", day(2030, 1, 15))
		for _, task := range []*domain.Task{groceries, report, offsite, foreign} {
			require.NoError(t, tasks.Create(ctx, task))
			// Natural order is creation order; keep timestamps distinct.
			time.Sleep(2 * time.Millisecond)
		}

		from := day(2030, 1, 15)
		to := from.AddDate(0, 0, 1)

		tests := []struct {
			name   string
			filter store.TaskFilter
			want   []string
		}{
			{"all", store.TaskFilter{UserID: owner},
				[]string{"Groceries", "Quarterly report", "Offsite 100% booked"}},
			{"category", store.TaskFilter{UserID: owner, Category: "Work"},
				[]string{"Quarterly report", "Offsite 100% booked"}},
			{"priority", store.TaskFilter{UserID: owner, Priority: domain.PriorityHigh},
				[]string{"Quarterly report"}},
			{"deadline day", store.TaskFilter{UserID: owner, DeadlineFrom: &from, DeadlineBefore: &to},
				[]string{"Quarterly report"}},
			{"search name", store.TaskFilter{UserID: owner, Search: "QUARTERLY"},
				[]string{"Quarterly report"}},
			{"search description", store.TaskFilter{UserID: owner, Search: "about groceries"},
				[]string{"Groceries"}},
			{"search is literal", store.TaskFilter{UserID: owner, Search: "100%"},
				[]string{"Offsite 100% booked"}},
			{"search wildcard has no meaning", store.TaskFilter{UserID: owner, Search: "Q.*t"},
				[]string{}},
			{"deadline ascending", store.TaskFilter{UserID: owner, Sort: store.SortDeadlineAsc},
				[]string{"Quarterly report", "Offsite 100% booked", "Groceries"}},
			{"deadline descending", store.TaskFilter{UserID: owner, Sort: store.SortDeadlineDesc},
				[]string{"Groceries", "Offsite 100% booked", "Quarterly report"}},
			{"unknown user", store.TaskFilter{UserID: uuid.New()}, []string{}},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				found, err := tasks.Find(ctx, tc.filter)
				require.NoError(t, err)
				names := make([]string, 0, len(found))
				for _, task := range found {
					names = append(names, task.Name)
				}
				assert.Equal(t, tc.want, names)
			})
		}
	})

	t.Run("deadline day includes its last instant", func(t *testing.T) {
		ctx := context.Background()
		tasks := newStore(t)
		owner := uuid.New()

		from := day(2030, 1, 15)
		next := from.AddDate(0, 0, 1)
		late := mustTask(t, owner, "Late", "Work", "Low", next.Add(-500*time.Microsecond))
		midnight := mustTask(t, owner, "Midnight", "Work", "Low", next)
		require.NoError(t, tasks.Create(ctx, late))
		require.NoError(t, tasks.Create(ctx, midnight))

		found, err := tasks.Find(ctx, store.TaskFilter{UserID: owner, DeadlineFrom: &from, DeadlineBefore: &next})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, late.ID, found[0].ID)

		after := next.AddDate(0, 0, 1)
		found, err = tasks.Find(ctx, store.TaskFilter{UserID: owner, DeadlineFrom: &next, DeadlineBefore: &after})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, midnight.ID, found[0].ID)
	})

	t.Run("equal creation times keep insertion order", func(t *testing.T) {
		ctx := context.Background()
		tasks := newStore(t)
		owner := uuid.New()
		created := time.Now().UTC().Truncate(time.Millisecond)

		want := []string{"one", "two", "three", "four", "five"}
		for _, name := range want {
			task := mustTask(t, owner, name, "Work", "Low", day(2030, 1, 15))
			task.CreatedAt, task.UpdatedAt = created, created
			require.NoError(t, tasks.Create(ctx, task))
		}

		for _, order := range []store.SortOrder{store.SortNatural, store.SortDeadlineAsc, store.SortDeadlineDesc} {
			found, err := tasks.Find(ctx, store.TaskFilter{UserID: owner, Sort: order})
			require.NoError(t, err)
			names := make([]string, 0, len(found))
			for _, task := range found {
				names = append(names, task.Name)
			}
			assert.Equal(t, want, names, "sort order %d", order)
		}
	})
}

// RunNotificationStoreTests exercises a store.NotificationStore implementation.
func RunNotificationStoreTests(t *testing.T, newStore func(t *testing.T) store.NotificationStore) {
	t.Run("list in creation order and clear", func(t *testing.T) {
		ctx := context.Background()
		notifications := newStore(t)
		owner := uuid.New()
		other := uuid.New()

		for _, msg := range []string{"first", "second", "third"} {
			n, err := domain.NewNotification(owner, msg, domain.NotificationTypeTask)
			require.NoError(t, err)
			require.NoError(t, notifications.Create(ctx, n))
			time.Sleep(2 * time.Millisecond)
		}
		n, err := domain.NewNotification(other, "unrelated", domain.NotificationTypeProfile)
		require.NoError(t, err)
		require.NoError(t, notifications.Create(ctx, n))

		list, err := notifications.ListByUser(ctx, owner)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "first", list[0].Message)
		assert.Equal(t, "third", list[2].Message)
		assert.Equal(t, domain.NotificationTypeTask, list[0].Type)

		deleted, err := notifications.DeleteByUser(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)

		list, err = notifications.ListByUser(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, list)

		remaining, err := notifications.ListByUser(ctx, other)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)

		deleted, err = notifications.DeleteByUser(ctx, owner)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("equal creation times keep insertion order", func(t *testing.T) {
		ctx := context.Background()
		notifications := newStore(t)
		owner := uuid.New()
		created := time.Now().UTC().Truncate(time.Millisecond)

		want := []string{"New Task Added: a", "Task updated: a", "Task Deleted: a", "profile", "last"}
		for _, msg := range want {
			n, err := domain.NewNotification(owner, msg, domain.NotificationTypeTask)
			require.NoError(t, err)
			n.CreatedAt = created
			require.NoError(t, notifications.Create(ctx, n))
		}

		list, err := notifications.ListByUser(ctx, owner)
		require.NoError(t, err)
		messages := make([]string, 0, len(list))
		for _, n := range list {
			messages = append(messages, n.Message)
		}
		assert.Equal(t, want, messages)
	})
}

func mustUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(name, email, "$2a$04$hash-"+email)
	require.NoError(t, err)
	return user
}

func mustTask(t *testing.T, userID uuid.UUID, name, category, priority string, deadline time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(userID, name, "about "+name, category, priority, deadline)
	require.NoError(t, err)
	return task
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
