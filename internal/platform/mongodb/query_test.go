package mongodb

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

func TestTaskFilterDocumentOwnerOnly(t *testing.T) {
	userID := uuid.New()

	doc := taskFilterDocument(store.TaskFilter{UserID: userID})

	assert.Equal(t, bson.D{{Key: "user_id", Value: userID.String()}}, doc)
}

func TestTaskFilterDocumentAllFilters(t *testing.T) {
	userID := uuid.New()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	doc := taskFilterDocument(store.TaskFilter{
		UserID:         userID,
		Category:       "work",
		Priority:       domain.PriorityLow,
		DeadlineFrom:   &from,
		DeadlineBefore: &to,
		Search:         "a.b(c",
	})

	pattern := primitive.Regex{Pattern: `a\.b\(c`, Options: "i"}
	expected := bson.D{
		{Key: "user_id", Value: userID.String()},
		{Key: "category", Value: "work"},
		{Key: "priority", Value: "Low"},
		{Key: "deadline", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lt", Value: to}}},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: pattern}},
			bson.D{{Key: "description", Value: pattern}},
		}},
	}
	assert.Equal(t, expected, doc)
}

func TestTaskSortDocument(t *testing.T) {
	assert.Equal(t, 1, taskSortDocument(store.SortDeadlineAsc)[0].Value)
	assert.Equal(t, "deadline", taskSortDocument(store.SortDeadlineDesc)[0].Key)
	assert.Equal(t, -1, taskSortDocument(store.SortDeadlineDesc)[0].Value)
	assert.Equal(t, creationOrder(), taskSortDocument(store.SortNatural))
	assert.Equal(t, bson.D{{Key: "deadline", Value: 1}, {Key: "created_at", Value: 1}, {Key: "seq", Value: 1}},
		taskSortDocument(store.SortDeadlineAsc))
}

func TestDocumentsCarryIncreasingSeq(t *testing.T) {
	task, err := domain.NewTask(uuid.New(), "a", "b", "c", "Medium", time.Now())
	require.NoError(t, err)
	n, err := domain.NewNotification(task.UserID, "hello", domain.NotificationTypeTask)
	require.NoError(t, err)

	first := newTaskDocument(task)
	second := newTaskDocument(task)
	assert.Less(t, first.Seq.Hex(), second.Seq.Hex())

	third := newNotificationDocument(n)
	fourth := newNotificationDocument(n)
	assert.Less(t, second.Seq.Hex(), third.Seq.Hex())
	assert.Less(t, third.Seq.Hex(), fourth.Seq.Hex())
	assert.Equal(t, n.Message, fourth.Message)
}

func TestTaskUpdateDocument(t *testing.T) {
	priority := domain.PriorityHigh
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	doc := taskUpdateDocument(domain.TaskPatch{Priority: &priority}, now)

	expected := bson.D{{Key: "$set", Value: bson.D{
		{Key: "priority", Value: "High"},
		{Key: "updated_at", Value: now},
	}}}
	assert.Equal(t, expected, doc)
}

func TestTaskDocumentConversion(t *testing.T) {
	task, err := domain.NewTask(uuid.New(), "a", "b", "c", "Medium", time.Now())
	require.NoError(t, err)

	back, err := newTaskDocument(task).toDomain()
	require.NoError(t, err)
	assert.Equal(t, task.ID, back.ID)
	assert.Equal(t, task.UserID, back.UserID)
	assert.Equal(t, task.Priority, back.Priority)

	_, err = taskDocument{ID: "not-a-uuid"}.toDomain()
	assert.Error(t, err)
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(mongo.ErrNoDocuments), store.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, mapError(dup), store.ErrDuplicate)

	other := errors.New("socket closed")
	assert.Equal(t, other, mapError(other))
}
