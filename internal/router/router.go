// Package router wires handlers to URL paths and route groups.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/handler"
	"github.com/greenloop/waste-pickup/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication: the
// health check and the public contact form.
func RegisterRoutes(e *echo.Echo, contact *handler.ContactHandler) {
	e.GET("/healthz", handler.Health)
	e.POST("/v1/contact", contact.Submit)
}

// RegisterAuth registers the auth endpoints.  Register, login and
// refresh live under /v1/auth without middleware; /v1/me and logout
// require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)
}
