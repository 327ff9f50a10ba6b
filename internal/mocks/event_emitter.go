package mocks

import (
	"context"

	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/stretchr/testify/mock"
)

// MockEventEmitter implements events.EventEmitter with testify expectations.
type MockEventEmitter struct {
	mock.Mock
}

var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements the events.EventEmitter interface
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
