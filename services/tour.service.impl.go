package services

import (
	"context"
	"fmt"
	"math"
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

type TourServiceImpl struct {
	*MongoModelServiceImpl[domain.Tour]
	collection *mongo.Collection
}

func NewTourServiceImpl(collection *mongo.Collection, validate *validator.Validate, tr trace.Tracer) TourService {
	base := NewMongoModelServiceImpl[domain.Tour](collection, ModelConfig[domain.Tour]{
		Resource:     "tour",
		ConflictName: "tour name",
		Guards:       []QueryGuard{TourVisibilityGuard},
		PatchRules:   domain.TourPatchRules,
		Protected:    domain.TourProtectedFields,
		Prepare:      func(t *domain.Tour) { t.ApplyDefaults() },
		ValidateDoc:  func(t *domain.Tour, v domain.Validator) error { return t.Validate(v) },
	}, validate, tr)
	return &TourServiceImpl{base, collection}
}

// FindByID resolves guide references and attaches the tour's reviews, the
// way the detail read serves a complete document. List reads stay lean; a
// hundred-document page does not fan out into lookups.
func (s *TourServiceImpl) FindByID(ctx context.Context, id string) (*domain.Tour, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMalformedID()
	}

	var tours []domain.Tour
	if err := s.Aggregate(ctx, tourDetailPipeline(oid), &tours); err != nil {
		return nil, err
	}
	if len(tours) == 0 {
		return nil, domain.ErrNotFound()
	}
	return &tours[0], nil
}

func tourDetailPipeline(id primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "users", "localField": "guides", "foreignField": "_id", "as": "guidesInfo",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "reviews", "localField": "_id", "foreignField": "tour", "as": "reviews",
		}}},
	}
}

// UpdateByID re-derives the slug when the name changes; everything else is
// the generic path. The slug write happens separately because slug sits on
// the protected list for client payloads.
func (s *TourServiceImpl) UpdateByID(ctx context.Context, id string, patch bson.M) (*domain.Tour, error) {
	name, renamed := patch["name"].(string)

	tour, err := s.MongoModelServiceImpl.UpdateByID(ctx, id, patch)
	if err != nil || !renamed {
		return tour, err
	}

	slug := domain.Slugify(name)
	if _, err := s.collection.UpdateOne(ctx, bson.M{"_id": tour.ID}, bson.M{"$set": bson.M{"slug": slug}}); err != nil {
		return nil, fmt.Errorf("updating tour slug: %w", err)
	}
	tour.Slug = slug
	return tour, nil
}

func (s *TourServiceImpl) TourStats(ctx context.Context) ([]TourStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ratingsAverage": bson.M{"$gte": 1.0}}}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$difficulty",
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingsQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingsAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"avgPrice": 1}}},
	}

	var stats []TourStat
	if err := s.Aggregate(ctx, pipeline, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *TourServiceImpl) MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error) {
	start := primitive.NewDateTimeFromTime(yearStart(year))
	end := primitive.NewDateTimeFromTime(yearStart(year + 1))

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": start, "$lt": end}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"$month": "$startDates"},
			"numTourStarts": bson.M{"$sum": 1},
			"tours":         bson.M{"$push": "$name"},
		}}},
		{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
		{{Key: "$sort", Value: bson.M{"numTourStarts": -1}}},
	}

	var plan []MonthlyPlanEntry
	if err := s.Aggregate(ctx, pipeline, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func (s *TourServiceImpl) ToursWithin(ctx context.Context, distance, lat, lng float64, unit string) ([]domain.Tour, error) {
	ctx, span := s.Tracer.Start(ctx, "tourService.ToursWithin")
	defer span.End()

	filter := applyGuards(bson.M{
		"startLocation": bson.M{"$geoWithin": bson.M{
			"$centerSphere": []interface{}{[]float64{lng, lat}, geoRadius(distance, unit)},
		}},
	}, s.cfg.Guards)

	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("finding tours within radius: %w", err)
	}
	defer cursor.Close(ctx)

	tours := []domain.Tour{}
	if err := cursor.All(ctx, &tours); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("decoding tours within radius: %w", err)
	}
	return tours, nil
}

// geoRadius converts a distance to the radians $centerSphere expects,
// dividing by the earth's radius in the given unit.
func geoRadius(distance float64, unit string) float64 {
	if unit == "mi" {
		return distance / 3963.2
	}
	return distance / 6378.1
}

// EnsureTourIndexes creates the unique name index backing the tour-name
// uniqueness rule and the 2dsphere index for the geo queries.
func EnsureTourIndexes(ctx context.Context, collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "startLocation", Value: "2dsphere"}}},
	})
	if err != nil {
		return fmt.Errorf("creating tour indexes: %w", err)
	}
	return nil
}

func (s *TourServiceImpl) SetRatingStats(ctx context.Context, tourID primitive.ObjectID, stats ReviewStats) error {
	ctx, span := s.Tracer.Start(ctx, "tourService.SetRatingStats")
	defer span.End()

	update := bson.M{"$set": bson.M{
		"ratingsQuantity": stats.Quantity,
		"ratingsAverage":  math.Round(stats.Average*10) / 10,
	}}
	// No visibility guard here: a secret tour still keeps its stats current.
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": tourID}, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("writing rating stats for tour %s: %w", tourID.Hex(), err)
	}
	return nil
}
