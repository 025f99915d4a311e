package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/greenloop/waste-pickup/internal/config"
	"github.com/greenloop/waste-pickup/internal/handler"
	"github.com/greenloop/waste-pickup/internal/middleware"
)

// RegisterLeaderboards registers the public ranking endpoints.  When a
// Redis client is available, responses are cached so repeated board
// reads skip the database; the boards tolerate that much staleness.
func RegisterLeaderboards(e *echo.Echo, lb *handler.LeaderboardHandler, rdb *redis.Client, cacheCfg config.CacheConfig) {
	g := e.Group("/v1/leaderboard")
	if rdb != nil && cacheCfg.Enabled {
		g.Use(middleware.NewRedisCache(cacheCfg, rdb))
	}
	g.GET("/households", lb.Households)
	g.GET("/businesses", lb.Businesses)
}
