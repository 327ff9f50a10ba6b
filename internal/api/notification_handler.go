package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// NotificationHandler serves a user's notification history.
type NotificationHandler struct {
	notifications service.NotificationService
	logger        *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications service.NotificationService, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NotificationHandler")
	}
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With(slog.String("component", "notification_handler")),
	}
}

// List handles GET /notifications/{userId}.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getAuthorizedUserParam(w, r)
	if !ok {
		return
	}

	notifications, err := h.notifications.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch notifications")
		return
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, notifications)
}

// Clear handles DELETE /notifications/{userId}.
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := getAuthorizedUserParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.notifications.Clear(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to clear notifications")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ClearNotificationsResponse{
		Message: "Notifications cleared",
		Deleted: deleted,
	})
}
