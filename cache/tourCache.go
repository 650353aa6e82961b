package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/domain"
)

const (
	tourKeyFormat = "tours:%s"
	tourTTL       = 300 * time.Second
)

// TourCache keeps recently fetched tour documents in Redis so hot single-tour
// reads skip Mongo. Writers must invalidate on update and delete.
type TourCache struct {
	cli    *redis.Client
	logger *logrus.Logger
	Tracer trace.Tracer
}

func New(redisAddress string, logger *logrus.Logger, tracer trace.Tracer) *TourCache {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})

	return &TourCache{
		cli:    client,
		logger: logger,
		Tracer: tracer,
	}
}

func (tc *TourCache) Ping() error {
	_, err := tc.cli.Ping().Result()
	return err
}

func (tc *TourCache) PostTour(tour *domain.Tour, ctx context.Context) error {
	_, span := tc.Tracer.Start(ctx, "TourCache.PostTour")
	defer span.End()

	payload, err := json.Marshal(tour)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	key := constructTourKey(tour.ID.Hex())
	if err := tc.cli.Set(key, payload, tourTTL).Err(); err != nil {
		span.SetStatus(codes.Error, "Error setting tour in Redis: "+err.Error())
		return err
	}
	return nil
}

func (tc *TourCache) GetTour(tourID string, ctx context.Context) (*domain.Tour, error) {
	_, span := tc.Tracer.Start(ctx, "TourCache.GetTour")
	defer span.End()

	key := constructTourKey(tourID)
	payload, err := tc.cli.Get(key).Bytes()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var tour domain.Tour
	if err := json.Unmarshal(payload, &tour); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	tc.logger.WithFields(logrus.Fields{"path": "cache/tourCache"}).Debug("Tour cache hit")
	return &tour, nil
}

func (tc *TourCache) TourExists(tourID string, ctx context.Context) bool {
	_, span := tc.Tracer.Start(ctx, "TourCache.TourExists")
	defer span.End()

	cnt, err := tc.cli.Exists(constructTourKey(tourID)).Result()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false
	}
	return cnt == 1
}

func (tc *TourCache) InvalidateTour(tourID string, ctx context.Context) {
	_, span := tc.Tracer.Start(ctx, "TourCache.InvalidateTour")
	defer span.End()

	if err := tc.cli.Del(constructTourKey(tourID)).Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		tc.logger.WithFields(logrus.Fields{"path": "cache/tourCache"}).
			Errorf("Error invalidating tour %s in Redis: %v", tourID, err)
	}
}

func constructTourKey(tourID string) string {
	return fmt.Sprintf(tourKeyFormat, tourID)
}
