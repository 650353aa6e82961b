package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/thisIsAskari/natours/domain"
)

// TourStat is one difficulty bucket of the tour-stats aggregation.
type TourStat struct {
	Difficulty string  `bson:"_id" json:"difficulty"`
	NumTours   int     `bson:"numTours" json:"numTours"`
	NumRatings int     `bson:"numRatings" json:"numRatings"`
	AvgRating  float64 `bson:"avgRating" json:"avgRating"`
	AvgPrice   float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice   float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice" json:"maxPrice"`
}

// MonthlyPlanEntry counts the tours starting in one month of a year.
type MonthlyPlanEntry struct {
	Month         int      `bson:"month" json:"month"`
	NumTourStarts int      `bson:"numTourStarts" json:"numTourStarts"`
	Tours         []string `bson:"tours" json:"tours"`
}

type TourService interface {
	ModelService[domain.Tour]
	TourStats(ctx context.Context) ([]TourStat, error)
	MonthlyPlan(ctx context.Context, year int) ([]MonthlyPlanEntry, error)
	// ToursWithin lists tours whose start location lies inside the sphere
	// of the given radius around a center point. Unit is "mi" or "km".
	ToursWithin(ctx context.Context, distance, lat, lng float64, unit string) ([]domain.Tour, error)
	// SetRatingStats is the rating maintainer's write path; it bypasses the
	// protected-field rules that keep API clients away from the pair.
	SetRatingStats(ctx context.Context, tourID primitive.ObjectID, stats ReviewStats) error
}
