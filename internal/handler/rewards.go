package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/model"
	"github.com/greenloop/waste-pickup/internal/pickup"
	"github.com/greenloop/waste-pickup/internal/repository"
	"github.com/greenloop/waste-pickup/internal/reward"
)

// RewardHandler exposes the eco-points view.  Reading your own points
// runs a synchronous reconcile first, so the answer always reflects the
// ledger even if an aggregate drifted.
type RewardHandler struct {
	Reconciler *reward.Reconciler
	Rewards    *repository.RewardRepo
}

func NewRewardHandler(rec *reward.Reconciler, rw *repository.RewardRepo) *RewardHandler {
	return &RewardHandler{Reconciler: rec, Rewards: rw}
}

// MyPoints returns the caller's reconciled totals plus recent ledger
// entries.
func (h *RewardHandler) MyPoints(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role := pickup.RoleHousehold
	if currentRole(c) == model.RoleBusiness {
		role = pickup.RoleBusiness
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	totals, corrected, err := h.Reconciler.Reconcile(ctx, uid, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reconcile failed"})
	}
	recent, err := h.Rewards.ListRecentByUser(ctx, uid, 10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	entries := make([]echo.Map, 0, len(recent))
	for _, ev := range recent {
		entries = append(entries, echo.Map{
			"id":          ev.ID,
			"pickup_id":   ev.PickupID,
			"points":      ev.Points,
			"weight_kg":   ev.WeightKg,
			"reward_type": ev.RewardType,
			"earned_at":   ev.EarnedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"totals":    totals,
		"corrected": corrected,
		"recent":    entries,
	})
}
