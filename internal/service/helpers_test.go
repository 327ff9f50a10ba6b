package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/memory"
	"github.com/phrazzld/taskflow-api/internal/store"
)

var errBoom = errors.New("boom")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingEmitter captures emitted events and optionally fails.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) Events() []*events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*events.Event(nil), e.events...)
}

// failingNotificationStore rejects every write.
type failingNotificationStore struct {
	store.NotificationStore
}

func (failingNotificationStore) Create(context.Context, *domain.Notification) error {
	return errBoom
}

type taskFixture struct {
	service       TaskService
	tasks         *memory.TaskStore
	notifications *memory.NotificationStore
	emitter       *recordingEmitter
}

func newTaskFixture() *taskFixture {
	tasks := memory.NewTaskStore()
	notifications := memory.NewNotificationStore()
	emitter := &recordingEmitter{}
	notifier := NewNotificationService(notifications, emitter, testLogger())
	return &taskFixture{
		service:       NewTaskService(tasks, notifier, testLogger()),
		tasks:         tasks,
		notifications: notifications,
		emitter:       emitter,
	}
}

func (f *taskFixture) notificationsFor(userID uuid.UUID) []*domain.Notification {
	list, _ := f.notifications.ListByUser(context.Background(), userID)
	return list
}
