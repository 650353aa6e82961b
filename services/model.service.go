package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ModelService is the uniform persistence contract every resource offers.
// Implementations wrap all storage failures into the domain error taxonomy;
// a caller only ever sees ErrNotFound, ErrMalformedID, ValidationError,
// ConflictError or a wrapped storage error.
type ModelService[T any] interface {
	// FindAll runs the feature-built query, merged with an optional scope
	// filter (e.g. reviews of one tour). An empty page is not an error.
	FindAll(ctx context.Context, features *APIFeatures, scope bson.M) ([]T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, doc *T) (*T, error)
	// UpdateByID applies a partial update, re-validating only the supplied
	// fields and silently dropping protected ones.
	UpdateByID(ctx context.Context, id string, patch bson.M) (*T, error)
	DeleteByID(ctx context.Context, id string) error
	// Aggregate runs a pipeline with the service's visibility guards
	// prepended and decodes all results into the given slice pointer.
	Aggregate(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error
}
