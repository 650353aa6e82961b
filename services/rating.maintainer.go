package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/thisIsAskari/natours/domain"
)

// ReviewStats is the denormalized pair kept on each tour.
type ReviewStats struct {
	Quantity int     `bson:"nRating"`
	Average  float64 `bson:"avgRating"`
}

// ReviewAggregator computes the current stats for one tour from its reviews.
type ReviewAggregator interface {
	TourRatingStats(ctx context.Context, tourID primitive.ObjectID) (*ReviewStats, error)
}

// TourStatsWriter persists the recomputed pair onto the tour document.
type TourStatsWriter interface {
	SetRatingStats(ctx context.Context, tourID primitive.ObjectID, stats ReviewStats) error
}

// TourCacheInvalidator drops a cached tour after its stats changed, so a
// cached read cannot serve the old pair for a full TTL.
type TourCacheInvalidator interface {
	InvalidateTour(tourID string, ctx context.Context)
}

// RatingMaintainer recomputes ratingsQuantity and ratingsAverage on a tour
// whenever one of its reviews changes. Recomputation is from scratch (full
// aggregation over the review set), so repeating it is idempotent.
// Recomputation per tour is serialized through a keyed mutex; two mutations
// against different tours still recompute concurrently.
//
// The triggering mutation has already been applied when Recalculate runs, so
// a failure here only leaves the aggregate stale; it is logged and never
// surfaced to the mutation's caller.
type RatingMaintainer struct {
	reviews ReviewAggregator
	tours   TourStatsWriter
	cache   TourCacheInvalidator
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger

	mu    sync.Mutex
	locks map[primitive.ObjectID]*tourLock
}

// tourLock is reference-counted so an entry can be evicted as soon as the
// last in-flight recomputation for that tour releases it; the map stays
// bounded by concurrency, not by how many tours were ever touched.
type tourLock struct {
	mu   sync.Mutex
	refs int
}

func NewRatingMaintainer(reviews ReviewAggregator, tours TourStatsWriter, logger *logrus.Logger) *RatingMaintainer {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "RatingMaintainer",
		Timeout: 10 * time.Second,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"path": "services/ratingMaintainer"}).
				Warnf("circuit breaker %s changed from %s to %s", name, from, to)
		},
	})
	return &RatingMaintainer{
		reviews: reviews,
		tours:   tours,
		breaker: breaker,
		logger:  logger,
		locks:   map[primitive.ObjectID]*tourLock{},
	}
}

// SetCacheInvalidator wires an optional tour cache; recomputation then
// drops the cached entry after every successful stats write.
func (m *RatingMaintainer) SetCacheInvalidator(cache TourCacheInvalidator) {
	m.cache = cache
}

// Recalculate brings the tour's stats in line with its current review set.
// Callers must capture the tour id before mutating the review, then call
// this after the mutation is durably applied.
func (m *RatingMaintainer) Recalculate(ctx context.Context, tourID primitive.ObjectID) {
	if tourID.IsZero() {
		return
	}

	lock := m.acquire(tourID)
	defer m.release(tourID, lock)

	_, err := m.breaker.Execute(func() (interface{}, error) {
		stats, err := m.reviews.TourRatingStats(ctx, tourID)
		if err != nil {
			return nil, err
		}
		if stats == nil || stats.Quantity == 0 {
			// No reviews left: reset to the schema default instead of
			// leaving stale values behind.
			stats = &ReviewStats{Quantity: 0, Average: domain.DefaultRatingsAverage}
		}
		return nil, m.tours.SetRatingStats(ctx, tourID, *stats)
	})
	if err != nil {
		m.logger.WithFields(logrus.Fields{
			"path": "services/ratingMaintainer",
			"tour": tourID.Hex(),
		}).Errorf("failed to recompute tour rating stats: %v", err)
		return
	}

	if m.cache != nil {
		m.cache.InvalidateTour(tourID.Hex(), ctx)
	}
}

func (m *RatingMaintainer) acquire(tourID primitive.ObjectID) *tourLock {
	m.mu.Lock()
	lock, ok := m.locks[tourID]
	if !ok {
		lock = &tourLock{}
		m.locks[tourID] = lock
	}
	lock.refs++
	m.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (m *RatingMaintainer) release(tourID primitive.ObjectID, lock *tourLock) {
	lock.mu.Unlock()

	m.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(m.locks, tourID)
	}
	m.mu.Unlock()
}
