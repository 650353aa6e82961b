package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/services"
)

type BookingHandler struct {
	*Factory[domain.Booking]
	bookingService services.BookingService
	logger         *logrus.Logger
}

func NewBookingHandler(bookingService services.BookingService, logger *logrus.Logger, tr trace.Tracer) BookingHandler {
	factory := NewFactory[domain.Booking](bookingService, "bookings", logger, tr).
		WithPrepare(setBookingUserID)
	return BookingHandler{factory, bookingService, logger}
}

func setBookingUserID(c *gin.Context, booking *domain.Booking) error {
	if booking.User.IsZero() {
		if user, ok := CurrentUser(c); ok {
			booking.User = user.ID
		}
	}
	return nil
}

// GetMyBookings is the user-scoped listing; everything else about it is the
// generic list path.
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "BookingHandler.GetMyBookings")
	defer span.End()

	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "you are not logged in"})
		return
	}

	features := services.NewAPIFeatures(c.Request.URL.Query())
	bookings, err := h.bookingService.FindAll(ctx, features, bson.M{"user": user.ID})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(bookings),
		"data":    gin.H{"bookings": bookings},
	})
}
