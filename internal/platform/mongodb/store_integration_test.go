//go:build integration

package mongodb_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/taskflow-api/internal/platform/mongodb"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/phrazzld/taskflow-api/internal/store/storetest"
	"github.com/phrazzld/taskflow-api/internal/testdb"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// indexedDatabase returns an empty database with the unique email index in place.
func indexedDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	db := testdb.Mongo(t)
	require.NoError(t, mongodb.EnsureIndexes(context.Background(), db))
	return db
}

func TestMongoUserStore(t *testing.T) {
	storetest.RunUserStoreTests(t, func(t *testing.T) store.UserStore {
		return mongodb.NewMongoUserStore(indexedDatabase(t), quietLogger())
	})
}

func TestMongoTaskStore(t *testing.T) {
	storetest.RunTaskStoreTests(t, func(t *testing.T) store.TaskStore {
		return mongodb.NewMongoTaskStore(indexedDatabase(t), quietLogger())
	})
}

func TestMongoNotificationStore(t *testing.T) {
	storetest.RunNotificationStoreTests(t, func(t *testing.T) store.NotificationStore {
		return mongodb.NewMongoNotificationStore(indexedDatabase(t), quietLogger())
	})
}
