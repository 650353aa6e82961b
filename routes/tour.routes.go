package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/thisIsAskari/natours/config"
	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/handlers"
	"github.com/thisIsAskari/natours/services"
)

type TourRouteHandler struct {
	tourHandler   handlers.TourHandler
	reviewHandler handlers.ReviewHandler
	userService   services.UserService
	cfg           *config.Config
}

func NewTourRouteHandler(tourHandler handlers.TourHandler, reviewHandler handlers.ReviewHandler, userService services.UserService, cfg *config.Config) TourRouteHandler {
	return TourRouteHandler{tourHandler, reviewHandler, userService, cfg}
}

func (rc *TourRouteHandler) TourRoute(rg *gin.RouterGroup) {
	router := rg.Group("/tours")
	router.Use(handlers.ExtractTraceInfoMiddleware())

	protect := handlers.Protect(rc.userService, rc.cfg)

	router.GET("/top-5-cheap", rc.tourHandler.AliasTopTours, rc.tourHandler.GetAll)
	router.GET("/tour-stats", rc.tourHandler.GetTourStats)
	router.GET("/tours-within/:distance/center/:latlng/unit/:unit", rc.tourHandler.GetToursWithin)
	router.GET("/monthly-plan/:year", protect,
		handlers.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide, domain.RoleGuide),
		rc.tourHandler.GetMonthlyPlan)

	router.GET("", rc.tourHandler.GetAll)
	router.POST("", protect, handlers.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide), rc.tourHandler.CreateOne)
	router.GET("/:id", rc.tourHandler.GetTour)
	router.PATCH("/:id", protect, handlers.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide), rc.tourHandler.UpdateTour)
	router.DELETE("/:id", protect, handlers.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide), rc.tourHandler.DeleteTour)

	// nested reviews: /tours/:id/reviews (gin requires the same wildcard
	// name as the sibling /:id routes)
	nested := router.Group("/:id/reviews")
	nested.GET("", rc.reviewHandler.GetAll)
	nested.POST("", protect, handlers.RestrictTo(domain.RoleUser), rc.reviewHandler.CreateOne)
}
