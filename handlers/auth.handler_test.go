package handlers

import (
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestLogoutExpiresTokenCookie(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	handler := NewAuthHandler(nil, logger, trace.NewNoopTracerProvider().Tracer("test"))

	router := gin.New()
	router.GET("/logout", handler.Logout)

	w := performRequest(router, http.MethodGet, "/logout", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", decodeEnvelope(t, w)["status"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge, "the cookie must be expired, not just emptied")
}
