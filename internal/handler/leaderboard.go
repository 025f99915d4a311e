package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/repository"
)

// LeaderboardHandler serves the public community rankings.  Responses
// sit behind the Redis response cache, so standings may lag the ledger
// by up to the cache TTL.
type LeaderboardHandler struct {
	Standings *repository.StandingRepo
}

func NewLeaderboardHandler(s *repository.StandingRepo) *LeaderboardHandler {
	return &LeaderboardHandler{Standings: s}
}

// Households ranks household users by eco points.  An optional ?city=
// filter narrows the board to one city.
func (h *LeaderboardHandler) Households(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.Standings.HouseholdLeaderboard(ctx, strings.TrimSpace(c.QueryParam("city")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"leaderboard": rows})
}

// Businesses ranks business users by sustainability score.
func (h *LeaderboardHandler) Businesses(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.Standings.BusinessLeaderboard(ctx, strings.TrimSpace(c.QueryParam("city")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"leaderboard": rows})
}
