package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/thisIsAskari/natours/domain"
)

// respondError converts any service error into the uniform envelope.
// Client faults answer with status "fail" and the constraint message;
// everything else is a 500 with status "error" and a generic message, the
// real cause only goes to the log.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case domain.IsNotFound(err), domain.IsMalformedID(err):
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": err.Error()})
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": err.Error()})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"status": "fail", "message": err.Error()})
	default:
		logger.WithFields(logrus.Fields{"path": c.FullPath()}).Errorf("unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "something went very wrong"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": message})
}
