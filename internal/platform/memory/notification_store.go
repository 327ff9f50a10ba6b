package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// NotificationStore implements store.NotificationStore in memory.
type NotificationStore struct {
	mu            sync.RWMutex
	notifications []*domain.Notification
}

// NewNotificationStore creates an empty NotificationStore.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

var _ store.NotificationStore = (*NotificationStore)(nil)

// Create implements store.NotificationStore.Create
func (s *NotificationStore) Create(_ context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *n
	s.notifications = append(s.notifications, &stored)
	return nil
}

// ListByUser implements store.NotificationStore.ListByUser
func (s *NotificationStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			clone := *n
			out = append(out, &clone)
		}
	}
	return out, nil
}

// DeleteByUser implements store.NotificationStore.DeleteByUser
func (s *NotificationStore) DeleteByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.notifications[:0]
	var deleted int64
	for _, n := range s.notifications {
		if n.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	clear(s.notifications[len(kept):])
	s.notifications = kept
	return deleted, nil
}
