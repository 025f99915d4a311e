package router

import (
	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/handler"
	"github.com/greenloop/waste-pickup/internal/middleware"
	"github.com/greenloop/waste-pickup/internal/model"
)

// RegisterOversight registers the NGO and admin screens.  NGOs get
// read-only views; reconciliation and the contact mailbox are admin
// only.
func RegisterOversight(e *echo.Echo, jwtSecret string, adm *handler.AdminHandler, contact *handler.ContactHandler) {
	g := e.Group("/v1/oversight")
	g.Use(middleware.JWTAuth(jwtSecret))

	view := g.Group("", middleware.RequireRole(model.RoleNGO, model.RoleAdmin))
	view.GET("/pickups", adm.ListPickups)
	view.GET("/users", adm.ListUsers)

	admin := g.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/users/:id/reconcile", adm.ReconcileUser)
	admin.GET("/messages", contact.List)
	admin.PUT("/messages/:id", contact.SetStatus)
}
