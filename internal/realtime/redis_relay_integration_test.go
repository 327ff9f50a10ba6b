//go:build integration

package realtime_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/realtime"
	"github.com/phrazzld/taskflow-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRelay_FansOutAcrossInstances(t *testing.T) {
	url := testdb.Redis(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	channel := "taskflow:test:" + uuid.NewString()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan *events.Event, 1)
	subscriber, err := realtime.NewRedisRelay(ctx, url, channel, events.EventHandlerFunc(
		func(_ context.Context, event *events.Event) error {
			received <- event
			return nil
		}), logger)
	require.NoError(t, err)
	require.NoError(t, subscriber.Start(ctx))
	defer func() { _ = subscriber.Close() }()

	publisher, err := realtime.NewRedisRelay(ctx, url, channel, events.EventHandlerFunc(
		func(context.Context, *events.Event) error { return nil }), logger)
	require.NoError(t, err)
	defer func() { _ = publisher.Close() }()

	event, err := events.NewEvent(events.EventNewNotification, events.NotificationPayload{
		UserID:  uuid.NewString(),
		Message: "Task updated: Plan",
	})
	require.NoError(t, err)
	require.NoError(t, publisher.HandleEvent(ctx, event))

	select {
	case got := <-received:
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, events.EventNewNotification, got.Name)
		assert.JSONEq(t, string(event.Payload), string(got.Payload))
	case <-ctx.Done():
		t.Fatal("relayed event not received")
	}
}
