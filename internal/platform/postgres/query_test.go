package postgres

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

func TestBuildFindQueryOwnerOnly(t *testing.T) {
	userID := uuid.New()

	query, args := buildFindQuery(store.TaskFilter{UserID: userID})

	assert.Equal(t,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 ORDER BY created_at ASC, seq ASC",
		query)
	assert.Equal(t, []any{userID}, args)
}

func TestBuildFindQueryAllFilters(t *testing.T) {
	userID := uuid.New()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	query, args := buildFindQuery(store.TaskFilter{
		UserID:         userID,
		Category:       "work",
		Priority:       domain.PriorityHigh,
		DeadlineFrom:   &from,
		DeadlineBefore: &to,
		Search:         "50%_off",
		Sort:           store.SortDeadlineDesc,
	})

	assert.Contains(t, query, "user_id = $1 AND category = $2 AND priority = $3")
	assert.Contains(t, query, "deadline >= $4 AND deadline < $5")
	assert.Contains(t, query, `(name ILIKE $6 ESCAPE '\' OR description ILIKE $6 ESCAPE '\')`)
	assert.True(t, strings.HasSuffix(query, "ORDER BY deadline DESC, created_at ASC, seq ASC"))

	require.Len(t, args, 6)
	assert.Equal(t, "work", args[1])
	assert.Equal(t, "High", args[2])
	assert.Equal(t, from, args[3])
	assert.Equal(t, to, args[4])
	assert.Equal(t, `%50\%\_off%`, args[5])
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, `\%\_`, escapeLike("%_"))
	assert.Equal(t, "f.o*", escapeLike("f.o*"))
}

func TestOrderByClause(t *testing.T) {
	assert.Equal(t, "deadline ASC, created_at ASC, seq ASC", orderByClause(store.SortDeadlineAsc))
	assert.Equal(t, "deadline DESC, created_at ASC, seq ASC", orderByClause(store.SortDeadlineDesc))
	assert.Equal(t, "created_at ASC, seq ASC", orderByClause(store.SortNatural))
}

func TestBuildUpdateQuery(t *testing.T) {
	id := uuid.New()
	name := "renamed"
	status := domain.StatusCompleted
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	query, args := buildUpdateQuery(id, domain.TaskPatch{Name: &name, Status: &status}, now)

	assert.Equal(t,
		"UPDATE tasks SET name = $1, status = $2, updated_at = $3 WHERE id = $4 RETURNING "+taskColumns,
		query)
	assert.Equal(t, []any{"renamed", "Completed", now, id}, args)
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.Len(t, files, 4)

	for _, name := range files {
		content, err := fs.ReadFile(migrationsFS, name)
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- +goose Up", name)
		assert.Contains(t, string(content), "-- +goose Down", name)
	}
}
