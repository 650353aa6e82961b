package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/domain"
)

type ReviewServiceImpl struct {
	*MongoModelServiceImpl[domain.Review]
	collection *mongo.Collection
	maintainer *RatingMaintainer
}

func NewReviewServiceImpl(collection *mongo.Collection, validate *validator.Validate, tr trace.Tracer) *ReviewServiceImpl {
	base := NewMongoModelServiceImpl[domain.Review](collection, ModelConfig[domain.Review]{
		Resource:     "review",
		ConflictName: "(tour, user) review pair",
		PatchRules:   domain.ReviewPatchRules,
		Protected:    domain.ReviewProtectedFields,
		Prepare:      func(r *domain.Review) { r.ApplyDefaults() },
		ValidateDoc:  func(r *domain.Review, v domain.Validator) error { return r.Validate(v) },
	}, validate, tr)
	return &ReviewServiceImpl{MongoModelServiceImpl: base, collection: collection}
}

// SetMaintainer wires the derived-aggregate maintainer. It is a separate
// step because the maintainer itself needs this service as its aggregation
// source.
func (s *ReviewServiceImpl) SetMaintainer(m *RatingMaintainer) {
	s.maintainer = m
}

// FindAll attaches the author's user document to every listed review.
func (s *ReviewServiceImpl) FindAll(ctx context.Context, features *APIFeatures, scope bson.M) ([]domain.Review, error) {
	reviews := []domain.Review{}
	if err := s.Aggregate(ctx, reviewListPipeline(scopedFilter(features, scope), features), &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *ReviewServiceImpl) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMalformedID()
	}

	pipeline := append(mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": oid}}}}, reviewUserLookup()...)
	var reviews []domain.Review
	if err := s.Aggregate(ctx, pipeline, &reviews); err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, domain.ErrNotFound()
	}
	return &reviews[0], nil
}

func reviewListPipeline(filter bson.M, features *APIFeatures) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: features.Sort}},
		{{Key: "$skip", Value: features.Skip}},
		{{Key: "$limit", Value: features.Limit}},
	}
	pipeline = append(pipeline, reviewUserLookup()...)
	if features.Projection != nil {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: features.Projection}})
	}
	return pipeline
}

func reviewUserLookup() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from": "users", "localField": "user", "foreignField": "_id", "as": "userInfo",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$userInfo", "preserveNullAndEmptyArrays": true}}},
	}
}

func (s *ReviewServiceImpl) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	created, err := s.MongoModelServiceImpl.Create(ctx, review)
	if err != nil {
		return nil, err
	}
	s.recalculate(ctx, created.Tour)
	return created, nil
}

// UpdateByID captures the parent tour id before the identifier-based update
// runs, then triggers recomputation after the write is durable. Reading the
// tour id only after the update would race with the mutation itself.
func (s *ReviewServiceImpl) UpdateByID(ctx context.Context, id string, patch bson.M) (*domain.Review, error) {
	before, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.MongoModelServiceImpl.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.recalculate(ctx, before.Tour)
	return updated, nil
}

// DeleteByID follows the same capture-before, recompute-after ordering as
// UpdateByID; after the delete the review no longer carries the tour id.
func (s *ReviewServiceImpl) DeleteByID(ctx context.Context, id string) error {
	before, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.MongoModelServiceImpl.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.recalculate(ctx, before.Tour)
	return nil
}

func (s *ReviewServiceImpl) recalculate(ctx context.Context, tourID primitive.ObjectID) {
	if s.maintainer != nil {
		s.maintainer.Recalculate(ctx, tourID)
	}
}

// TourRatingStats aggregates count and mean rating over all reviews of one
// tour. A tour without reviews yields nil; the maintainer resets to the
// schema default in that case.
func (s *ReviewServiceImpl) TourRatingStats(ctx context.Context, tourID primitive.ObjectID) (*ReviewStats, error) {
	ctx, span := s.Tracer.Start(ctx, "reviewService.TourRatingStats")
	defer span.End()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$tour",
			"nRating":   bson.M{"$sum": 1},
			"avgRating": bson.M{"$avg": "$rating"},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("aggregating review stats: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []ReviewStats
	if err := cursor.All(ctx, &stats); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("decoding review stats: %w", err)
	}
	if len(stats) == 0 {
		return nil, nil
	}
	return &stats[0], nil
}

// EnsureReviewIndexes creates the unique (tour, user) compound index that
// backs the one-review-per-user-per-tour invariant.
func EnsureReviewIndexes(ctx context.Context, collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tour", Value: 1}, {Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating review indexes: %w", err)
	}
	return nil
}
