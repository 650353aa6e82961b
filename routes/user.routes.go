package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/thisIsAskari/natours/config"
	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/handlers"
	"github.com/thisIsAskari/natours/services"
)

type UserRouteHandler struct {
	userHandler handlers.UserHandler
	authHandler handlers.AuthHandler
	userService services.UserService
	cfg         *config.Config
}

func NewUserRouteHandler(userHandler handlers.UserHandler, authHandler handlers.AuthHandler, userService services.UserService, cfg *config.Config) UserRouteHandler {
	return UserRouteHandler{userHandler, authHandler, userService, cfg}
}

func (rc *UserRouteHandler) UserRoute(rg *gin.RouterGroup) {
	router := rg.Group("/users")
	router.Use(handlers.ExtractTraceInfoMiddleware())

	router.POST("/signup", rc.authHandler.Signup)
	router.POST("/login", rc.authHandler.Login)
	router.POST("/forgotPassword", rc.authHandler.ForgotPassword)
	router.PATCH("/resetPassword/:token", rc.authHandler.ResetPassword)
	router.GET("/logout", rc.authHandler.Logout)

	// everything below requires a logged-in user
	router.Use(handlers.Protect(rc.userService, rc.cfg))

	router.PATCH("/updateMyPassword", rc.authHandler.UpdatePassword)
	router.GET("/me", rc.userHandler.GetMe)
	router.PATCH("/updateMe", rc.userHandler.UpdateMe)
	router.DELETE("/deleteMe", rc.userHandler.DeleteMe)

	// admin-only management
	admin := router.Group("", handlers.RestrictTo(domain.RoleAdmin))
	admin.GET("", rc.userHandler.GetAll)
	admin.GET("/:id", rc.userHandler.GetOne)
	admin.PATCH("/:id", rc.userHandler.UpdateUser)
	admin.DELETE("/:id", rc.userHandler.DeleteOne)
}
