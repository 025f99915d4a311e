package router

import (
	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/handler"
	"github.com/greenloop/waste-pickup/internal/middleware"
	"github.com/greenloop/waste-pickup/internal/model"
)

// RegisterCollector registers the collector workflow endpoints.
func RegisterCollector(e *echo.Echo, jwtSecret string, col *handler.CollectorHandler) {
	g := e.Group("/v1/collector")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleCollector))

	g.GET("/pickups/open", col.ListOpen)
	g.GET("/pickups", col.ListMine)
	g.POST("/pickups/:id/accept", col.Accept)
	g.POST("/pickups/:id/reject", col.Reject)
	g.POST("/pickups/:id/bill", col.GenerateBill)
	g.POST("/pickups/:id/complete", col.Complete)
	g.PUT("/location", col.UpdateLocation)
}
