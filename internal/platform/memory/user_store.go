package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// UserStore implements store.UserStore in memory.
type UserStore struct {
	mu      sync.RWMutex
	users   []*domain.User
	byEmail map[string]*domain.User
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{byEmail: make(map[string]*domain.User)}
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return store.ErrEmailExists
	}

	stored := *user
	stored.Email = email
	s.users = append(s.users, &stored)
	s.byEmail[email] = &stored
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// List implements store.UserStore.List
func (s *UserStore) List(_ context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

// Approve implements store.UserStore.Approve
func (s *UserStore) Approve(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	if u.Approved {
		return nil, store.ErrAlreadyApproved
	}

	u.Approved = true
	u.UpdatedAt = time.Now().UTC()
	clone := *u
	return &clone, nil
}

// UpdatePassword implements store.UserStore.UpdatePassword
func (s *UserStore) UpdatePassword(_ context.Context, email, hashedPassword string) (*domain.User, error) {
	if hashedPassword == "" {
		return nil, domain.ErrEmptyHashedPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}

	u.HashedPassword = hashedPassword
	u.UpdatedAt = time.Now().UTC()
	clone := *u
	return &clone, nil
}
