package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/cache"
	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/services"
)

type TourHandler struct {
	*Factory[domain.Tour]
	tourService services.TourService
	tourCache   *cache.TourCache
	logger      *logrus.Logger
}

func NewTourHandler(tourService services.TourService, tourCache *cache.TourCache, logger *logrus.Logger, tr trace.Tracer) TourHandler {
	factory := NewFactory[domain.Tour](tourService, "tours", logger, tr)
	return TourHandler{factory, tourService, tourCache, logger}
}

// GetTour reads through the Redis cache; a miss falls back to Mongo and
// fills the cache. Cache faults only cost the shortcut, never the request.
func (h *TourHandler) GetTour(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "TourHandler.GetTour")
	defer span.End()

	tourID := c.Param("id")
	if h.tourCache != nil {
		if tour, err := h.tourCache.GetTour(tourID, ctx); err == nil {
			c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"tours": tour}})
			return
		}
	}

	tour, err := h.tourService.FindByID(ctx, tourID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if h.tourCache != nil {
		if err := h.tourCache.PostTour(tour, ctx); err != nil {
			h.logger.WithFields(logrus.Fields{"path": "handlers/tour"}).Warnf("could not cache tour %s: %v", tourID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"tours": tour}})
}

func (h *TourHandler) UpdateTour(c *gin.Context) {
	h.UpdateOne(c)
	if h.tourCache != nil {
		h.tourCache.InvalidateTour(c.Param("id"), c.Request.Context())
	}
}

func (h *TourHandler) DeleteTour(c *gin.Context) {
	h.DeleteOne(c)
	if h.tourCache != nil {
		h.tourCache.InvalidateTour(c.Param("id"), c.Request.Context())
	}
}

// AliasTopTours presets the query for the top-5-cheap listing before the
// generic GetAll runs.
func (h *TourHandler) AliasTopTours(c *gin.Context) {
	query := url.Values{}
	query.Set("limit", "5")
	query.Set("sort", "-ratingsAverage,price")
	query.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	c.Request.URL.RawQuery = query.Encode()
	c.Next()
}

func (h *TourHandler) GetTourStats(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "TourHandler.GetTourStats")
	defer span.End()

	stats, err := h.tourService.TourStats(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"stats": stats}})
}

// GetToursWithin answers /tours-within/:distance/center/:latlng/unit/:unit.
func (h *TourHandler) GetToursWithin(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "TourHandler.GetToursWithin")
	defer span.End()

	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil || distance < 0 {
		badRequest(c, "distance must be a positive number")
		return
	}

	latlng := strings.Split(c.Param("latlng"), ",")
	if len(latlng) != 2 {
		badRequest(c, "please provide the center in the format lat,lng")
		return
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(latlng[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(latlng[1]), 64)
	if latErr != nil || lngErr != nil {
		badRequest(c, "please provide the center in the format lat,lng")
		return
	}

	unit := c.Param("unit")
	if unit != "mi" && unit != "km" {
		badRequest(c, "unit must be mi or km")
		return
	}

	tours, err := h.tourService.ToursWithin(ctx, distance, lat, lng, unit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(tours),
		"data":    gin.H{"tours": tours},
	})
}

func (h *TourHandler) GetMonthlyPlan(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "TourHandler.GetMonthlyPlan")
	defer span.End()

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		badRequest(c, "year must be a number")
		return
	}

	plan, err := h.tourService.MonthlyPlan(ctx, year)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"plan": plan}})
}
