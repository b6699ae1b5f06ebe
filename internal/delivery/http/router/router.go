// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"gatehouse/internal/delivery/http/middleware"
	"gatehouse/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AccountHandler *handler.AccountHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler *handler.AccountHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler: params.AccountHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Account routes
	userGroup := e.Group("/user")
	{
		userGroup.GET("/register", r.accountHandler.RegisterForm)
		userGroup.POST("/register", r.accountHandler.Register)
		userGroup.GET("/login", r.accountHandler.LoginForm)
		userGroup.POST("/login", r.accountHandler.Login)

		// Routes below require a valid token.
		userGroup.GET("/profile", r.accountHandler.Profile, r.authMiddleware.Authenticate)
	}
}
