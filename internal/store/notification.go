package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// NotificationStore defines the interface for notification persistence.
type NotificationStore interface {
	// Create saves a new notification.
	Create(ctx context.Context, notification *domain.Notification) error

	// ListByUser returns the user's notifications in creation order.
	// A user without notifications yields an empty slice.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// DeleteByUser removes every notification owned by userID and reports
	// how many were removed. Zero is not an error.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
