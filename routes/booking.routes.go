package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/thisIsAskari/natours/config"
	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/handlers"
	"github.com/thisIsAskari/natours/services"
)

type BookingRouteHandler struct {
	bookingHandler handlers.BookingHandler
	userService    services.UserService
	cfg            *config.Config
}

func NewBookingRouteHandler(bookingHandler handlers.BookingHandler, userService services.UserService, cfg *config.Config) BookingRouteHandler {
	return BookingRouteHandler{bookingHandler, userService, cfg}
}

func (rc *BookingRouteHandler) BookingRoute(rg *gin.RouterGroup) {
	router := rg.Group("/bookings")
	router.Use(handlers.ExtractTraceInfoMiddleware())
	router.Use(handlers.Protect(rc.userService, rc.cfg))

	router.GET("/my-bookings", rc.bookingHandler.GetMyBookings)

	manage := handlers.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide)
	router.GET("", manage, rc.bookingHandler.GetAll)
	router.POST("", rc.bookingHandler.CreateOne)
	router.GET("/:id", manage, rc.bookingHandler.GetOne)
	router.PATCH("/:id", manage, rc.bookingHandler.UpdateOne)
	router.DELETE("/:id", manage, rc.bookingHandler.DeleteOne)
}
