package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

var statuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

// Task validation errors
var (
	ErrEmptyTaskID       = NewValidationError("id", "cannot be empty", ErrInvalidID)
	ErrEmptyTaskUserID   = NewValidationError("userId", "cannot be empty", ErrInvalidID)
	ErrEmptyTaskName     = NewValidationError("name", "cannot be empty", nil)
	ErrEmptyDescription  = NewValidationError("description", "cannot be empty", nil)
	ErrEmptyCategory     = NewValidationError("category", "cannot be empty", nil)
	ErrEmptyDeadline     = NewValidationError("deadline", "cannot be empty", nil)
	ErrInvalidPriority   = NewValidationError("priority", "must be one of Low, Medium, High", nil)
	ErrInvalidTaskStatus = NewValidationError("status", "must be one of Pending, In Progress, Completed", nil)
	ErrEmptyPatch        = NewValidationError("", "no fields to update", nil)
)

// ParsePriority matches s case-insensitively against the known priorities
// and returns the canonical value.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	for _, p := range priorities {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", ErrInvalidPriority
}

// ParseTaskStatus matches s case-insensitively against the known statuses
// and returns the canonical value.
func ParseTaskStatus(s string) (TaskStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrInvalidTaskStatus
}

// Task is a unit of work owned by a user.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    Priority   `json:"priority"`
	Deadline    time.Time  `json:"deadline"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask creates a Pending task for userID.
// priority is parsed case-insensitively and stored in canonical form.
func NewTask(userID uuid.UUID, name, description, category, priority string, deadline time.Time) (*Task, error) {
	p, err := ParsePriority(priority)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		Priority:    p,
		Deadline:    deadline.UTC(),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}
	if t.Name == "" {
		return ErrEmptyTaskName
	}
	if t.Description == "" {
		return ErrEmptyDescription
	}
	if t.Category == "" {
		return ErrEmptyCategory
	}
	if _, err := ParsePriority(string(t.Priority)); err != nil {
		return err
	}
	if t.Deadline.IsZero() {
		return ErrEmptyDeadline
	}
	if _, err := ParseTaskStatus(string(t.Status)); err != nil {
		return err
	}
	return nil
}

// TaskPatch is a partial update. Nil fields are left unchanged.
// The owner, id and timestamps of a task cannot be patched.
type TaskPatch struct {
	Name        *string
	Description *string
	Category    *string
	Priority    *Priority
	Deadline    *time.Time
	Status      *TaskStatus
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil &&
		p.Priority == nil && p.Deadline == nil && p.Status == nil
}

// Normalize trims string fields, canonicalizes enum fields and validates
// every field that is set.
func (p *TaskPatch) Normalize() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}

	if err := trimRequired(p.Name, ErrEmptyTaskName); err != nil {
		return err
	}
	if err := trimRequired(p.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if err := trimRequired(p.Category, ErrEmptyCategory); err != nil {
		return err
	}

	if p.Priority != nil {
		canonical, err := ParsePriority(string(*p.Priority))
		if err != nil {
			return err
		}
		p.Priority = &canonical
	}
	if p.Status != nil {
		canonical, err := ParseTaskStatus(string(*p.Status))
		if err != nil {
			return err
		}
		p.Status = &canonical
	}
	if p.Deadline != nil {
		if p.Deadline.IsZero() {
			return ErrEmptyDeadline
		}
		utc := p.Deadline.UTC()
		p.Deadline = &utc
	}

	return nil
}

func trimRequired(field *string, errEmpty error) error {
	if field == nil {
		return nil
	}
	*field = strings.TrimSpace(*field)
	if *field == "" {
		return errEmpty
	}
	return nil
}

// Apply copies the set fields of p onto t and stamps UpdatedAt.
// p should already be normalized.
func (t *Task) Apply(p TaskPatch, now time.Time) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	t.UpdatedAt = now.UTC()
}
