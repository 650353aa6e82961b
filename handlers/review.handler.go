package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/services"
)

type ReviewHandler struct {
	*Factory[domain.Review]
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService, logger *logrus.Logger, tr trace.Tracer) ReviewHandler {
	factory := NewFactory[domain.Review](reviewService, "reviews", logger, tr).
		WithScope(reviewScope).
		WithPrepare(setTourUserIDs)
	return ReviewHandler{factory, reviewService}
}

// tourParam reads the parent tour id off the nested route, whichever
// wildcard name the mounting router used.
func tourParam(c *gin.Context) string {
	if v := c.Param("tourId"); v != "" {
		return v
	}
	return c.Param("id")
}

// reviewScope narrows listing to one tour when the nested route is used.
func reviewScope(c *gin.Context) (bson.M, error) {
	tourID := tourParam(c)
	if tourID == "" {
		return bson.M{}, nil
	}
	oid, err := primitive.ObjectIDFromHex(tourID)
	if err != nil {
		return nil, domain.ErrMalformedID()
	}
	return bson.M{"tour": oid}, nil
}

// setTourUserIDs defaults the tour reference from the nested route and the
// user reference from the authenticated identity.
func setTourUserIDs(c *gin.Context, review *domain.Review) error {
	if tourID := tourParam(c); tourID != "" {
		oid, err := primitive.ObjectIDFromHex(tourID)
		if err != nil {
			return domain.ErrMalformedID()
		}
		review.Tour = oid
	}
	if user, ok := CurrentUser(c); ok {
		review.User = user.ID
	}
	return nil
}
