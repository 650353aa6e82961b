package services

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// QueryGuard injects a visibility constraint into a read filter. Guards are
// attached when a model service is constructed, so every read path of that
// service (single fetch, list, aggregation) carries the constraint without
// call sites repeating it.
type QueryGuard func(filter bson.M) bson.M

// TourVisibilityGuard hides secret tours from every default read path.
func TourVisibilityGuard(filter bson.M) bson.M {
	filter["secretTour"] = bson.M{"$ne": true}
	return filter
}

// UserVisibilityGuard treats soft-deleted users as absent.
func UserVisibilityGuard(filter bson.M) bson.M {
	filter["active"] = bson.M{"$ne": false}
	return filter
}

func applyGuards(filter bson.M, guards []QueryGuard) bson.M {
	for _, guard := range guards {
		filter = guard(filter)
	}
	return filter
}

// guardPipeline prepends one $match stage per guard so aggregations see the
// same visibility rules as plain finds.
func guardPipeline(pipeline mongo.Pipeline, guards []QueryGuard) mongo.Pipeline {
	if len(guards) == 0 {
		return pipeline
	}
	match := applyGuards(bson.M{}, guards)
	stage := bson.D{{Key: "$match", Value: match}}
	guarded := make(mongo.Pipeline, 0, len(pipeline)+1)
	guarded = append(guarded, stage)
	return append(guarded, pipeline...)
}
