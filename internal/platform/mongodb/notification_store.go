package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNotificationStore implements store.NotificationStore on MongoDB.
type MongoNotificationStore struct {
	notifications *mongo.Collection
	logger        *slog.Logger
}

// NewMongoNotificationStore creates a notification store backed by db.
func NewMongoNotificationStore(db *mongo.Database, logger *slog.Logger) *MongoNotificationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoNotificationStore{
		notifications: db.Collection(notificationsCollection),
		logger:        logger.With(slog.String("component", "notification_store")),
	}
}

var _ store.NotificationStore = (*MongoNotificationStore)(nil)

// Create implements store.NotificationStore.Create
func (s *MongoNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	if _, err := s.notifications.InsertOne(ctx, newNotificationDocument(n)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("user_id", n.UserID.String()))
		return mapError(err)
	}
	return nil
}

// ListByUser implements store.NotificationStore.ListByUser
func (s *MongoNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	opts := options.Find().SetSort(creationOrder())
	cursor, err := s.notifications.Find(ctx, bson.D{{Key: "user_id", Value: userID.String()}}, opts)
	if err != nil {
		return nil, mapError(err)
	}

	var docs []notificationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	out := make([]*domain.Notification, 0, len(docs))
	for _, doc := range docs {
		n, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// DeleteByUser implements store.NotificationStore.DeleteByUser
func (s *MongoNotificationStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := s.notifications.DeleteMany(ctx, bson.D{{Key: "user_id", Value: userID.String()}})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to clear notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, mapError(err)
	}
	return result.DeletedCount, nil
}
