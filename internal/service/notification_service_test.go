package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationServiceEmit(t *testing.T) {
	t.Parallel()

	notifications := memory.NewNotificationStore()
	emitter := &recordingEmitter{}
	svc := NewNotificationService(notifications, emitter, testLogger())
	userID := uuid.New()

	n, err := svc.Emit(context.Background(), userID, "hello", domain.NotificationTypeTask)
	require.NoError(t, err)
	assert.Equal(t, userID, n.UserID)
	assert.Equal(t, "hello", n.Message)
	assert.Equal(t, domain.NotificationTypeTask, n.Type)
	assert.False(t, n.CreatedAt.IsZero())

	stored, err := notifications.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, n.ID, stored[0].ID)

	emitted := emitter.Events()
	require.Len(t, emitted, 1)
	assert.Equal(t, events.EventNewNotification, emitted[0].Name)

	var payload events.NotificationPayload
	require.NoError(t, emitted[0].UnmarshalPayload(&payload))
	assert.Equal(t, userID.String(), payload.UserID)
	assert.Equal(t, "hello", payload.Message)
}

func TestNotificationServiceEmitBroadcastsWhenPersistFails(t *testing.T) {
	t.Parallel()

	emitter := &recordingEmitter{}
	svc := NewNotificationService(failingNotificationStore{}, emitter, testLogger())

	n, err := svc.Emit(context.Background(), uuid.New(), "hello", domain.NotificationTypeTask)
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, n)
	assert.Len(t, emitter.Events(), 1)
}

func TestNotificationServiceEmitIgnoresBroadcastFailure(t *testing.T) {
	t.Parallel()

	notifications := memory.NewNotificationStore()
	svc := NewNotificationService(notifications, &recordingEmitter{err: errBoom}, testLogger())
	userID := uuid.New()

	_, err := svc.Emit(context.Background(), userID, "hello", domain.NotificationTypeProfile)
	require.NoError(t, err)

	stored, _ := notifications.ListByUser(context.Background(), userID)
	assert.Len(t, stored, 1)
}

func TestNotificationServiceEmitWithoutEmitter(t *testing.T) {
	t.Parallel()

	svc := NewNotificationService(memory.NewNotificationStore(), nil, testLogger())
	_, err := svc.Emit(context.Background(), uuid.New(), "hello", domain.NotificationTypeTask)
	assert.NoError(t, err)
}

func TestNotificationServiceListAndClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewNotificationService(memory.NewNotificationStore(), nil, testLogger())
	owner, other := uuid.New(), uuid.New()

	for _, msg := range []string{"first", "second", "third"} {
		_, err := svc.Emit(ctx, owner, msg, domain.NotificationTypeTask)
		require.NoError(t, err)
	}
	_, err := svc.Emit(ctx, other, "other", domain.NotificationTypeTask)
	require.NoError(t, err)

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Message)
	assert.Equal(t, "third", list[2].Message)

	deleted, err := svc.Clear(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	deleted, err = svc.Clear(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	list, err = svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.List(ctx, other)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
