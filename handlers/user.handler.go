package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/services"
)

type UserHandler struct {
	*Factory[domain.User]
	userService services.UserService
	logger      *logrus.Logger
}

func NewUserHandler(userService services.UserService, logger *logrus.Logger, tr trace.Tracer) UserHandler {
	factory := NewFactory[domain.User](userService, "users", logger, tr)
	return UserHandler{factory, userService, logger}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "you are not logged in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"users": user}})
}

// UpdateMe lets a user change their own profile fields. Password data is
// rejected here; it has its own endpoint so the hash bookkeeping cannot be
// skipped.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "UserHandler.UpdateMe")
	defer span.End()

	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "you are not logged in"})
		return
	}

	body := bson.M{}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON request")
		return
	}
	if _, hasPassword := body["password"]; hasPassword {
		badRequest(c, "this route is not for password updates, please use /updateMyPassword")
		return
	}
	if _, hasConfirm := body["passwordConfirm"]; hasConfirm {
		badRequest(c, "this route is not for password updates, please use /updateMyPassword")
		return
	}

	patch := bson.M{}
	for _, field := range domain.UpdatableProfileFields {
		if value, ok := body[field]; ok {
			patch[field] = value
		}
	}

	if err := h.normalizeEmailPatch(ctx, patch, user.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	updated, err := h.userService.UpdateByID(ctx, user.ID.Hex(), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"users": updated}})
}

// UpdateUser is the admin patch endpoint. Unlike the generic factory update
// it runs the same email bookkeeping as UpdateMe, so an admin cannot slip a
// mixed-case or already-taken address past the store.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "UserHandler.UpdateUser")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, domain.ErrMalformedID())
		return
	}

	patch := bson.M{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid JSON request")
		return
	}
	if _, hasPassword := patch["password"]; hasPassword {
		badRequest(c, "passwords cannot be set through this route")
		return
	}

	if err := h.normalizeEmailPatch(ctx, patch, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	updated, err := h.userService.UpdateByID(ctx, id.Hex(), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"users": updated}})
}

// normalizeEmailPatch lowercases a patched email and probes the store for
// another account already holding it. selfID exempts the account being
// patched, so resubmitting your own address in a different case is fine.
func (h *UserHandler) normalizeEmailPatch(ctx context.Context, patch bson.M, selfID primitive.ObjectID) error {
	raw, ok := patch["email"]
	if !ok {
		return nil
	}
	email, ok := raw.(string)
	if !ok {
		return &domain.ValidationError{Field: "email", Message: "email must be a string"}
	}
	email = strings.ToLower(strings.TrimSpace(email))
	patch["email"] = email

	existing, err := h.userService.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return &domain.ConflictError{Relationship: "email"}
	}
	return nil
}

// DeleteMe soft-deletes: the account disappears from every guarded read but
// the document is kept.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "UserHandler.DeleteMe")
	defer span.End()

	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "you are not logged in"})
		return
	}

	if err := h.userService.Deactivate(ctx, user.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
