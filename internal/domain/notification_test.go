package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotification(t *testing.T) {
	userID := uuid.New()

	n, err := NewNotification(userID, "New Task Added: report", NotificationTypeTask)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, userID, n.UserID)
	assert.Equal(t, "task", n.Type)
	assert.False(t, n.CreatedAt.IsZero())

	_, err = NewNotification(uuid.Nil, "msg", NotificationTypeTask)
	assert.ErrorIs(t, err, ErrEmptyNotificationUserID)

	_, err = NewNotification(userID, "  ", NotificationTypeTask)
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = NewNotification(userID, "msg", "")
	assert.ErrorIs(t, err, ErrEmptyNotificationType)
}
