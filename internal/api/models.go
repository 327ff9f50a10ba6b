package api

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ApproveUserRequest defines the payload for the approval endpoint.
type ApproveUserRequest struct {
	Email string `json:"email" validate:"required"`
}

// UpdatePasswordRequest defines the payload for the password update endpoint.
type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Approved  bool        `json:"approved"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	// Token is the JWT used for API authorization
	Token string `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string `json:"expires_at"`

	User UserResponse `json:"user"`
}

// ApproveUserResponse defines the successful response for the approval endpoint.
type ApproveUserResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// CreateTaskRequest defines the payload for creating a task.
// Deadline accepts an RFC 3339 timestamp or a YYYY-MM-DD date.
type CreateTaskRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"    validate:"required"`
	Priority    string `json:"priority"    validate:"required"`
	Deadline    string `json:"deadline"    validate:"required"`
	UserID      string `json:"userId"      validate:"required"`
}

// UpdateTaskRequest defines the partial payload for updating a task.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Deadline    *string `json:"deadline"`
	Status      *string `json:"status"`
}

// UpdateTaskResponse defines the successful response for updating a task.
type UpdateTaskResponse struct {
	Message     string       `json:"message"`
	UpdatedTask *domain.Task `json:"updatedTask"`
}

// ClearNotificationsResponse reports how many notifications were removed.
type ClearNotificationsResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Approved:  u.Approved,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// toPatch converts the request into a domain patch. Enum and string values
// are validated by TaskPatch.Normalize in the service.
func (r UpdateTaskRequest) toPatch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		patch.Priority = &p
	}
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		patch.Status = &s
	}
	if r.Deadline != nil {
		deadline, err := parseDeadline(*r.Deadline)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.Deadline = &deadline
	}
	return patch, nil
}

var deadlineLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseDeadline accepts RFC 3339 timestamps and calendar dates; values without
// a zone are taken as UTC.
func parseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, domain.ErrEmptyDeadline
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError("deadline", "must be an RFC 3339 timestamp or a YYYY-MM-DD date", nil)
}
