package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Notification types written by the services.
const (
	NotificationTypeTask        = "task"
	NotificationTypeTaskUpdated = "task-updated"
	NotificationTypeTaskDeleted = "task-delete"
	NotificationTypeProfile     = "profile"
)

// Notification validation errors
var (
	ErrEmptyNotificationUserID = NewValidationError("userId", "cannot be empty", ErrInvalidID)
	ErrEmptyMessage            = NewValidationError("message", "cannot be empty", nil)
	ErrEmptyNotificationType   = NewValidationError("type", "cannot be empty", nil)
)

// Notification is a persisted record of a state change relevant to a user.
// Notifications are never updated, only listed and bulk-deleted by owner.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNotification creates a notification timestamped now.
func NewNotification(userID uuid.UUID, message, notificationType string) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Message:   message,
		Type:      strings.TrimSpace(notificationType),
		CreatedAt: time.Now().UTC(),
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Validate checks if the Notification has valid data.
func (n *Notification) Validate() error {
	if n.UserID == uuid.Nil {
		return ErrEmptyNotificationUserID
	}
	if strings.TrimSpace(n.Message) == "" {
		return ErrEmptyMessage
	}
	if n.Type == "" {
		return ErrEmptyNotificationType
	}
	return nil
}
