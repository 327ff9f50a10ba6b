package mongodb

import (
	"regexp"
	"time"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// taskFilterDocument translates filter into a query document.
// Search input is quoted so it matches literally.
func taskFilterDocument(filter store.TaskFilter) bson.D {
	doc := bson.D{{Key: "user_id", Value: filter.UserID.String()}}

	if filter.Category != "" {
		doc = append(doc, bson.E{Key: "category", Value: filter.Category})
	}
	if filter.Priority != "" {
		doc = append(doc, bson.E{Key: "priority", Value: string(filter.Priority)})
	}

	var deadline bson.D
	if filter.DeadlineFrom != nil {
		deadline = append(deadline, bson.E{Key: "$gte", Value: filter.DeadlineFrom.UTC()})
	}
	if filter.DeadlineBefore != nil {
		deadline = append(deadline, bson.E{Key: "$lt", Value: filter.DeadlineBefore.UTC()})
	}
	if len(deadline) > 0 {
		doc = append(doc, bson.E{Key: "deadline", Value: deadline})
	}

	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		doc = append(doc, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: pattern}},
			bson.D{{Key: "description", Value: pattern}},
		}})
	}

	return doc
}

// creationOrder sorts by creation time, then by insertion sequence.
func creationOrder() bson.D {
	return bson.D{{Key: "created_at", Value: 1}, {Key: "seq", Value: 1}}
}

// taskSortDocument returns the sort specification for order.
// Creation order breaks ties.
func taskSortDocument(order store.SortOrder) bson.D {
	switch order {
	case store.SortDeadlineAsc:
		return append(bson.D{{Key: "deadline", Value: 1}}, creationOrder()...)
	case store.SortDeadlineDesc:
		return append(bson.D{{Key: "deadline", Value: -1}}, creationOrder()...)
	default:
		return creationOrder()
	}
}

// taskUpdateDocument builds the $set document for a normalized patch.
func taskUpdateDocument(patch domain.TaskPatch, now time.Time) bson.D {
	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *patch.Category})
	}
	if patch.Priority != nil {
		set = append(set, bson.E{Key: "priority", Value: string(*patch.Priority)})
	}
	if patch.Deadline != nil {
		set = append(set, bson.E{Key: "deadline", Value: patch.Deadline.UTC()})
	}
	if patch.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*patch.Status)})
	}
	set = append(set, bson.E{Key: "updated_at", Value: now.UTC()})
	return bson.D{{Key: "$set", Value: set}}
}
