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

	"github.com/thisIsAskari/natours/domain"
)

func userTestRouter(userService *memUserService, self *domain.User) *gin.Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	handler := NewUserHandler(userService, logger, trace.NewNoopTracerProvider().Tracer("test"))

	router := gin.New()
	router.PATCH("/updateMe", func(c *gin.Context) {
		c.Set(currentUserKey, self)
	}, handler.UpdateMe)
	router.PATCH("/users/:id", handler.UpdateUser)
	return router
}

func TestUpdateMeLowercasesEmail(t *testing.T) {
	userService := newMemUserService()
	self := userService.add(&domain.User{Name: "Jonas", Email: "jonas@example.com", Active: true})
	router := userTestRouter(userService, self)

	w := performRequest(router, http.MethodPatch, "/updateMe", gin.H{"email": "JONAS.NEW@Example.COM"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jonas.new@example.com", self.Email)
}

func TestUpdateMeRejectsTakenEmail(t *testing.T) {
	userService := newMemUserService()
	userService.add(&domain.User{Name: "Other", Email: "taken@example.com", Active: true})
	self := userService.add(&domain.User{Name: "Jonas", Email: "jonas@example.com", Active: true})
	router := userTestRouter(userService, self)

	w := performRequest(router, http.MethodPatch, "/updateMe", gin.H{"email": "Taken@Example.com"})

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "fail", decodeEnvelope(t, w)["status"])
	assert.Equal(t, "jonas@example.com", self.Email, "a rejected patch must not change the account")
}

func TestUpdateMeAcceptsOwnEmailRecased(t *testing.T) {
	userService := newMemUserService()
	self := userService.add(&domain.User{Name: "Jonas", Email: "jonas@example.com", Active: true})
	router := userTestRouter(userService, self)

	w := performRequest(router, http.MethodPatch, "/updateMe", gin.H{"email": "Jonas@Example.COM"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jonas@example.com", self.Email)
}

func TestUpdateMeRejectsNonStringEmail(t *testing.T) {
	userService := newMemUserService()
	self := userService.add(&domain.User{Name: "Jonas", Email: "jonas@example.com", Active: true})
	router := userTestRouter(userService, self)

	w := performRequest(router, http.MethodPatch, "/updateMe", gin.H{"email": 42})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateMeRejectsPasswordData(t *testing.T) {
	userService := newMemUserService()
	self := userService.add(&domain.User{Name: "Jonas", Email: "jonas@example.com", Active: true})
	router := userTestRouter(userService, self)

	w := performRequest(router, http.MethodPatch, "/updateMe", gin.H{"password": "newpass9876"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fail", decodeEnvelope(t, w)["status"])
}

func TestUpdateMeIgnoresRoleEscalation(t *testing.T) {
	userService := newMemUserService()
	self := userService.add(&domain.User{Name: "Jonas", Email: "jonas@example.com", Role: domain.RoleUser, Active: true})
	router := userTestRouter(userService, self)

	w := performRequest(router, http.MethodPatch, "/updateMe", gin.H{"name": "Jonas S", "role": "admin"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jonas S", self.Name)
	assert.Equal(t, domain.RoleUser, self.Role)
}

func TestAdminUpdateUserLowercasesAndProbesEmail(t *testing.T) {
	userService := newMemUserService()
	userService.add(&domain.User{Name: "Other", Email: "taken@example.com", Active: true})
	target := userService.add(&domain.User{Name: "Jonas", Email: "jonas@example.com", Active: true})
	router := userTestRouter(userService, target)

	w := performRequest(router, http.MethodPatch, "/users/"+target.ID.Hex(), gin.H{"email": "Taken@Example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(router, http.MethodPatch, "/users/"+target.ID.Hex(), gin.H{"email": "Jonas.Admin@Example.COM"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jonas.admin@example.com", target.Email)
}

func TestAdminUpdateUserMalformedID(t *testing.T) {
	router := userTestRouter(newMemUserService(), &domain.User{})

	w := performRequest(router, http.MethodPatch, "/users/not-an-id", gin.H{"name": "whoever"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}
