package mongodb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	usersCollection         = "users"
	tasksCollection         = "tasks"
	notificationsCollection = "notifications"
)

type userDocument struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Email          string    `bson:"email"`
	HashedPassword string    `bson:"hashed_password"`
	Approved       bool      `bson:"approved"`
	Role           string    `bson:"role"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func newUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:             u.ID.String(),
		Name:           u.Name,
		Email:          domain.NormalizeEmail(u.Email),
		HashedPassword: u.HashedPassword,
		Approved:       u.Approved,
		Role:           string(u.Role),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (d userDocument) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", d.ID, err)
	}
	return &domain.User{
		ID:             id,
		Name:           d.Name,
		Email:          d.Email,
		HashedPassword: d.HashedPassword,
		Approved:       d.Approved,
		Role:           domain.Role(d.Role),
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}, nil
}

type taskDocument struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Category    string    `bson:"category"`
	Priority    string    `bson:"priority"`
	Deadline    time.Time `bson:"deadline"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`

	// Seq orders documents created in the same millisecond. ObjectIDs from
	// one process increase monotonically.
	Seq primitive.ObjectID `bson:"seq"`
}

func newTaskDocument(t *domain.Task) taskDocument {
	return taskDocument{
		ID:          t.ID.String(),
		UserID:      t.UserID.String(),
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Priority:    string(t.Priority),
		Deadline:    t.Deadline.UTC(),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Seq:         primitive.NewObjectID(),
	}
}

func (d taskDocument) toDomain() (*domain.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid task id %q: %w", d.ID, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid task user id %q: %w", d.UserID, err)
	}
	return &domain.Task{
		ID:          id,
		UserID:      userID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Priority:    domain.Priority(d.Priority),
		Deadline:    d.Deadline.UTC(),
		Status:      domain.TaskStatus(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}

type notificationDocument struct {
	ID        string             `bson:"_id"`
	UserID    string             `bson:"user_id"`
	Message   string             `bson:"message"`
	Type      string             `bson:"type"`
	CreatedAt time.Time          `bson:"created_at"`
	Seq       primitive.ObjectID `bson:"seq"`
}

func newNotificationDocument(n *domain.Notification) notificationDocument {
	return notificationDocument{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		Message:   n.Message,
		Type:      n.Type,
		CreatedAt: n.CreatedAt,
		Seq:       primitive.NewObjectID(),
	}
}

func (d notificationDocument) toDomain() (*domain.Notification, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid notification id %q: %w", d.ID, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid notification user id %q: %w", d.UserID, err)
	}
	return &domain.Notification{
		ID:        id,
		UserID:    userID,
		Message:   d.Message,
		Type:      d.Type,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}
