package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/thisIsAskari/natours/config"
	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/handlers"
	"github.com/thisIsAskari/natours/services"
)

type ReviewRouteHandler struct {
	reviewHandler handlers.ReviewHandler
	userService   services.UserService
	cfg           *config.Config
}

func NewReviewRouteHandler(reviewHandler handlers.ReviewHandler, userService services.UserService, cfg *config.Config) ReviewRouteHandler {
	return ReviewRouteHandler{reviewHandler, userService, cfg}
}

func (rc *ReviewRouteHandler) ReviewRoute(rg *gin.RouterGroup) {
	router := rg.Group("/reviews")
	router.Use(handlers.ExtractTraceInfoMiddleware())

	protect := handlers.Protect(rc.userService, rc.cfg)

	router.GET("", rc.reviewHandler.GetAll)
	router.POST("", protect, handlers.RestrictTo(domain.RoleUser), rc.reviewHandler.CreateOne)
	router.GET("/:id", rc.reviewHandler.GetOne)
	router.PATCH("/:id", protect, handlers.RestrictTo(domain.RoleUser, domain.RoleAdmin), rc.reviewHandler.UpdateOne)
	router.DELETE("/:id", protect, handlers.RestrictTo(domain.RoleUser, domain.RoleAdmin), rc.reviewHandler.DeleteOne)
}
