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

// MongoTaskStore implements store.TaskStore on MongoDB.
type MongoTaskStore struct {
	tasks  *mongo.Collection
	logger *slog.Logger
}

// NewMongoTaskStore creates a task store backed by db.
func NewMongoTaskStore(db *mongo.Database, logger *slog.Logger) *MongoTaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoTaskStore{
		tasks:  db.Collection(tasksCollection),
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*MongoTaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *MongoTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	if _, err := s.tasks.InsertOne(ctx, newTaskDocument(task)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return mapError(err)
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *MongoTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var doc taskDocument
	if err := s.tasks.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		return nil, s.notFoundOr(err)
	}
	return doc.toDomain()
}

// Update implements store.TaskStore.Update
func (s *MongoTaskStore) Update(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Normalize(); err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDocument
	err := s.tasks.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id.String()}},
		taskUpdateDocument(patch, time.Now()),
		opts,
	).Decode(&doc)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("task update did not apply",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return nil, s.notFoundOr(err)
	}
	return doc.toDomain()
}

// Delete implements store.TaskStore.Delete
func (s *MongoTaskStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var doc taskDocument
	if err := s.tasks.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		return nil, s.notFoundOr(err)
	}
	return doc.toDomain()
}

// Find implements store.TaskStore.Find
func (s *MongoTaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	opts := options.Find().SetSort(taskSortDocument(filter.Sort))
	cursor, err := s.tasks.Find(ctx, taskFilterDocument(filter), opts)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", filter.UserID.String()))
		return nil, mapError(err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, doc := range docs {
		t, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *MongoTaskStore) notFoundOr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrTaskNotFound
	}
	return mapError(err)
}
