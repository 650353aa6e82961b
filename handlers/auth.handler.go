package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/services"
)

type AuthHandler struct {
	authService services.AuthService
	logger      *logrus.Logger
	Tracer      trace.Tracer
}

func NewAuthHandler(authService services.AuthService, logger *logrus.Logger, tr trace.Tracer) AuthHandler {
	return AuthHandler{authService, logger, tr}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "AuthHandler.Signup")
	defer span.End()

	var input domain.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON request")
		return
	}

	user, token, err := h.authService.Signup(ctx, &input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":      "success",
		"accessToken": token,
		"data":        gin.H{"users": user},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "AuthHandler.Login")
	defer span.End()

	var input domain.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON request")
		return
	}

	user, token, err := h.authService.Login(ctx, &input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"accessToken": token,
		"data":        gin.H{"users": user},
	})
}

// Logout clears the token cookie; bearer-header clients just drop the
// token on their side.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("jwt", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "AuthHandler.ForgotPassword")
	defer span.End()

	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
		badRequest(c, "please provide your email")
		return
	}

	if _, err := h.authService.ForgotPassword(ctx, body.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "reset token issued"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "AuthHandler.ResetPassword")
	defer span.End()

	var body struct {
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON request")
		return
	}

	token, err := h.authService.ResetPassword(ctx, c.Param("token"), body.Password, body.PasswordConfirm)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "accessToken": token})
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	ctx, span := h.Tracer.Start(c.Request.Context(), "AuthHandler.UpdatePassword")
	defer span.End()

	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "you are not logged in"})
		return
	}

	var body struct {
		PasswordCurrent string `json:"passwordCurrent"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON request")
		return
	}

	token, err := h.authService.UpdatePassword(ctx, user, body.PasswordCurrent, body.Password, body.PasswordConfirm)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "accessToken": token})
}
