package router

import (
	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/handler"
	"github.com/greenloop/waste-pickup/internal/middleware"
	"github.com/greenloop/waste-pickup/internal/model"
)

// RegisterRequester registers the pickup CRUD endpoints for household
// and business users, plus their profile, reward and payment views.
func RegisterRequester(e *echo.Echo, jwtSecret string, pick *handler.RequesterPickupHandler, prof *handler.ProfileHandler, rew *handler.RewardHandler, pay *handler.PaymentHandler) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))

	// Profile editing is open to every authenticated role.
	g.PUT("/profile", prof.Update)

	req := g.Group("/pickups", middleware.RequireRole(model.RoleHousehold, model.RoleBusiness))
	req.POST("", pick.Create)
	req.GET("", pick.List)
	req.GET("/:id", pick.Get)
	req.PUT("/:id", pick.Update)
	req.POST("/:id/cancel", pick.Cancel)
	req.DELETE("/:id", pick.Delete)

	g.GET("/rewards/me", rew.MyPoints, middleware.RequireRole(model.RoleHousehold, model.RoleBusiness))
	g.GET("/waste/history", pick.WasteHistory, middleware.RequireRole(model.RoleHousehold, model.RoleBusiness))

	biz := g.Group("/payments", middleware.RequireRole(model.RoleBusiness))
	biz.POST("/pickups/:id/order", pay.PayBill)
	biz.POST("/verify", pay.Verify)
	biz.GET("/history", pay.History)
}
