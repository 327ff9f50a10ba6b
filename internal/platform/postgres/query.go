package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

const taskColumns = `id, user_id, name, description, category, priority, deadline, status, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using '\' as the escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// orderByClause returns the ORDER BY expression for a sort order.
// Creation order breaks ties so results are stable.
func orderByClause(order store.SortOrder) string {
	switch order {
	case store.SortDeadlineAsc:
		return "deadline ASC, created_at ASC, seq ASC"
	case store.SortDeadlineDesc:
		return "deadline DESC, created_at ASC, seq ASC"
	default:
		return "created_at ASC, seq ASC"
	}
}

// buildFindQuery renders a parameterized SELECT for filter.
func buildFindQuery(filter store.TaskFilter) (string, []any) {
	args := []any{filter.UserID}
	conds := []string{"user_id = $1"}

	add := func(format string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Priority != "" {
		add("priority = $%d", string(filter.Priority))
	}
	if filter.DeadlineFrom != nil {
		add("deadline >= $%d", filter.DeadlineFrom.UTC())
	}
	if filter.DeadlineBefore != nil {
		add("deadline < $%d", filter.DeadlineBefore.UTC())
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(name ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`, n, n))
	}

	query := "SELECT " + taskColumns + " FROM tasks WHERE " +
		strings.Join(conds, " AND ") + " ORDER BY " + orderByClause(filter.Sort)
	return query, args
}

// buildUpdateQuery renders a single UPDATE ... RETURNING for the set fields of patch.
// patch must be normalized and non-empty.
func buildUpdateQuery(id uuid.UUID, patch domain.TaskPatch, now time.Time) (string, []any) {
	var sets []string
	var args []any

	set := func(column string, arg any) {
		args = append(args, arg)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Priority != nil {
		set("priority", string(*patch.Priority))
	}
	if patch.Deadline != nil {
		set("deadline", patch.Deadline.UTC())
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	set("updated_at", now.UTC())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), taskColumns)
	return query, args
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var priority, status string
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Name,
		&t.Description,
		&t.Category,
		&priority,
		&t.Deadline,
		&status,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Priority = domain.Priority(priority)
	t.Status = domain.TaskStatus(status)
	t.Deadline = t.Deadline.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}
