package handlers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/services"
)

// memGeoTourService extends the generic in-memory tour store with the
// tour-specific operations the handler needs.
type memGeoTourService struct {
	*memTourService
	within     []domain.Tour
	lastUnit   string
	lastRadius [3]float64
}

func (m *memGeoTourService) TourStats(context.Context) ([]services.TourStat, error) {
	return nil, nil
}

func (m *memGeoTourService) MonthlyPlan(context.Context, int) ([]services.MonthlyPlanEntry, error) {
	return nil, nil
}

func (m *memGeoTourService) ToursWithin(_ context.Context, distance, lat, lng float64, unit string) ([]domain.Tour, error) {
	m.lastRadius = [3]float64{distance, lat, lng}
	m.lastUnit = unit
	return m.within, nil
}

func (m *memGeoTourService) SetRatingStats(context.Context, primitive.ObjectID, services.ReviewStats) error {
	return nil
}

func geoTestRouter(service *memGeoTourService) *gin.Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	handler := NewTourHandler(service, nil, logger, trace.NewNoopTracerProvider().Tracer("test"))

	router := gin.New()
	router.GET("/tours-within/:distance/center/:latlng/unit/:unit", handler.GetToursWithin)
	return router
}

func TestGetToursWithinPassesParsedParams(t *testing.T) {
	service := &memGeoTourService{memTourService: newMemTourService(), within: []domain.Tour{{Name: "The Forest Hiker"}}}
	router := geoTestRouter(service)

	w := performRequest(router, http.MethodGet, "/tours-within/233/center/34.111745,-118.113491/unit/mi", nil)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "success", envelope["status"])
	assert.Equal(t, float64(1), envelope["results"])
	assert.Equal(t, [3]float64{233, 34.111745, -118.113491}, service.lastRadius)
	assert.Equal(t, "mi", service.lastUnit)
}

func TestGetToursWithinRejectsBadDistance(t *testing.T) {
	router := geoTestRouter(&memGeoTourService{memTourService: newMemTourService()})

	w := performRequest(router, http.MethodGet, "/tours-within/far/center/34.1,-118.1/unit/mi", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fail", decodeEnvelope(t, w)["status"])
}

func TestGetToursWithinRejectsMalformedCenter(t *testing.T) {
	router := geoTestRouter(&memGeoTourService{memTourService: newMemTourService()})

	w := performRequest(router, http.MethodGet, "/tours-within/233/center/34.1/unit/mi", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeEnvelope(t, w)["message"], "lat,lng")
}

func TestGetToursWithinRejectsUnknownUnit(t *testing.T) {
	router := geoTestRouter(&memGeoTourService{memTourService: newMemTourService()})

	w := performRequest(router, http.MethodGet, "/tours-within/233/center/34.1,-118.1/unit/furlongs", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
