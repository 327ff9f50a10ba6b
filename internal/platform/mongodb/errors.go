package mongodb

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskflow-api/internal/store"
	"go.mongodb.org/mongo-driver/mongo"
)

// mapError translates driver errors into store errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}
