package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// NotificationService records notifications and pushes them to real-time subscribers.
type NotificationService interface {
	// Emit persists a notification for userID and broadcasts a new-notification
	// event. The broadcast is attempted even when persisting fails, and a failed
	// broadcast never fails the call.
	Emit(ctx context.Context, userID uuid.UUID, message, notificationType string) (*domain.Notification, error)

	// List returns the user's notifications in creation order.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// Clear deletes all of the user's notifications and returns how many were removed.
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

// NotificationServiceImpl implements NotificationService.
type NotificationServiceImpl struct {
	notifications store.NotificationStore
	emitter       events.EventEmitter
	logger        *slog.Logger
}

// NewNotificationService creates a NotificationService. emitter may be nil,
// in which case notifications are only persisted.
func NewNotificationService(
	notifications store.NotificationStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) NotificationService {
	if notifications == nil {
		panic("notification store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationServiceImpl{
		notifications: notifications,
		emitter:       emitter,
		logger:        logger.With("component", "notification_service"),
	}
}

// Emit implements NotificationService.
func (s *NotificationServiceImpl) Emit(
	ctx context.Context,
	userID uuid.UUID,
	message, notificationType string,
) (*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	notification, persistErr := s.persist(ctx, userID, message, notificationType)
	if persistErr != nil {
		log.Error("failed to persist notification",
			"error", persistErr,
			"user_id", userID,
			"type", notificationType)
	}

	s.broadcast(ctx, log, userID, message)

	if persistErr != nil {
		return nil, persistErr
	}

	log.Debug("notification emitted",
		"notification_id", notification.ID,
		"user_id", userID,
		"type", notificationType)
	return notification, nil
}

func (s *NotificationServiceImpl) persist(
	ctx context.Context,
	userID uuid.UUID,
	message, notificationType string,
) (*domain.Notification, error) {
	notification, err := domain.NewNotification(userID, message, notificationType)
	if err != nil {
		return nil, fmt.Errorf("invalid notification: %w", err)
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}
	return notification, nil
}

func (s *NotificationServiceImpl) broadcast(ctx context.Context, log *slog.Logger, userID uuid.UUID, message string) {
	if s.emitter == nil {
		return
	}

	event, err := events.NewEvent(events.EventNewNotification, events.NotificationPayload{
		UserID:  userID.String(),
		Message: message,
	})
	if err != nil {
		log.Warn("failed to build notification event", "error", err)
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to broadcast notification",
			"error", err,
			"event_id", event.ID,
			"user_id", userID)
	}
}

// List implements NotificationService.
func (s *NotificationServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	notifications, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// Clear implements NotificationService.
func (s *NotificationServiceImpl) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	deleted, err := s.notifications.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("notifications cleared",
		"user_id", userID,
		"deleted", deleted)
	return deleted, nil
}
