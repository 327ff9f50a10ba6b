package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserStore implements store.UserStore on MongoDB.
type MongoUserStore struct {
	users  *mongo.Collection
	logger *slog.Logger
}

// NewMongoUserStore creates a user store backed by db.
func NewMongoUserStore(db *mongo.Database, logger *slog.Logger) *MongoUserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoUserStore{
		users:  db.Collection(usersCollection),
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*MongoUserStore)(nil)

// Create implements store.UserStore.Create
func (s *MongoUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	if _, err := s.users.InsertOne(ctx, newUserDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrEmailExists
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return mapError(err)
	}
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *MongoUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: domain.NormalizeEmail(email)}})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrUserNotFound
		}
		return nil, mapError(err)
	}
	return doc.toDomain()
}

// List implements store.UserStore.List
func (s *MongoUserStore) List(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, mapError(err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, doc := range docs {
		u, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Approve matches only unapproved users so that concurrent approvals
// succeed exactly once.
func (s *MongoUserStore) Approve(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	filter := bson.D{{Key: "email", Value: email}, {Key: "approved", Value: false}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "approved", Value: true},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err := s.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain()
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to approve user",
			slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	count, err := s.users.CountDocuments(ctx, bson.D{{Key: "email", Value: email}})
	if err != nil {
		return nil, mapError(err)
	}
	if count > 0 {
		return nil, store.ErrAlreadyApproved
	}
	return nil, store.ErrUserNotFound
}

// UpdatePassword implements store.UserStore.UpdatePassword
func (s *MongoUserStore) UpdatePassword(ctx context.Context, email, hashedPassword string) (*domain.User, error) {
	if hashedPassword == "" {
		return nil, domain.ErrEmptyHashedPassword
	}

	filter := bson.D{{Key: "email", Value: domain.NormalizeEmail(email)}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "hashed_password", Value: hashedPassword},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	if err := s.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update password",
			slog.String("error", err.Error()))
		return nil, mapError(err)
	}
	return doc.toDomain()
}
