package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/model"
	"github.com/greenloop/waste-pickup/internal/pickup"
	qu "github.com/greenloop/waste-pickup/internal/queue"
	"github.com/greenloop/waste-pickup/internal/repository"
	queue_publisher "github.com/greenloop/waste-pickup/internal/service"
	"github.com/greenloop/waste-pickup/internal/waste"
)

// CollectorHandler serves the collector-facing endpoints: browsing open
// requests, claiming them, billing businesses and completing pickups.
// The billing and completion flows run inside transactions so a status
// transition, its capture record and its reward commit or roll back as
// one unit.
type CollectorHandler struct {
	DB        *sql.DB
	Users     *repository.UserRepo
	Pickups   *repository.PickupRepo
	WasteLogs *repository.WasteLogRepo
	Payments  *repository.PaymentRepo
	Rewards   *repository.RewardRepo
	Standings *repository.StandingRepo
}

func NewCollectorHandler(db *sql.DB, u *repository.UserRepo, p *repository.PickupRepo, w *repository.WasteLogRepo, pay *repository.PaymentRepo, rw *repository.RewardRepo, st *repository.StandingRepo) *CollectorHandler {
	if db == nil || u == nil || p == nil || w == nil || pay == nil || rw == nil || st == nil {
		panic("nil dependency passed to NewCollectorHandler")
	}
	return &CollectorHandler{DB: db, Users: u, Pickups: p, WasteLogs: w, Payments: pay, Rewards: rw, Standings: st}
}

// ListOpen returns every PENDING, unassigned request.
func (h *CollectorHandler) ListOpen(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	ps, err := h.Pickups.ListOpen(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"pickups": toPickupResps(ps)})
}

// ListMine returns the requests assigned to the calling collector.
func (h *CollectorHandler) ListMine(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	ps, err := h.Pickups.ListByCollector(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"pickups": toPickupResps(ps)})
}

// Accept claims a PENDING request for the calling collector.  The claim
// is a single conditional UPDATE, so when two collectors race exactly
// one wins and the loser gets 409.
func (h *CollectorHandler) Accept(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	switch err := h.Pickups.Accept(ctx, id, uid); {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "pickup assigned"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "pickup not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "pickup already taken"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "accept failed"})
	}
}

// Reject cancels a request previously accepted by the calling collector.
func (h *CollectorHandler) Reject(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	switch err := h.Pickups.RejectByCollector(ctx, id, uid); {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "pickup rejected"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "pickup not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "pickup not assigned to you"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "pickup can no longer be rejected"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reject failed"})
	}
}

type generateBillReq struct {
	WeightKg float64 `json:"weight_kg"`
	Amount   float64 `json:"amount"`
	PhotoURL *string `json:"photo_url,omitempty"`
	Notes    string  `json:"notes"`
}

// GenerateBill records the collected weight for a business pickup and
// opens (or re-prices) its PENDING payment, moving the request to
// PAYMENT_PENDING.  Re-billing before the business pays replaces the
// previous amount.
func (h *CollectorHandler) GenerateBill(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req generateBillReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.WeightKg < model.MinWeightKg || req.WeightKg > model.MaxWeightKg {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "weight out of range"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, err := h.Pickups.GetByIDTx(ctx, tx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pickup not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.CollectorID == nil || *p.CollectorID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "pickup not assigned to you"})
	}
	requester, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if requester.Role != model.RoleBusiness {
		return c.JSON(http.StatusConflict, echo.Map{"error": "billing applies to business pickups only"})
	}
	next, err := pickup.Next(pickup.RoleBusiness, p.Status, pickup.EventGenerateBill)
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "pickup not ready for billing"})
	}

	logEntry := model.WasteLog{
		PickupID:  id,
		WasteType: p.WasteType,
		WeightKg:  req.WeightKg,
		PhotoURL:  req.PhotoURL,
		Notes:     req.Notes,
	}
	if err := h.WasteLogs.UpsertTx(ctx, tx, &logEntry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record waste failed"})
	}
	paymentID, err := h.Payments.UpsertPendingTx(ctx, tx, p.UserID, id, req.Amount)
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "payment already completed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "open payment failed"})
	}
	if p.Status != next {
		if err := h.Pickups.UpdateStatusTx(ctx, tx, id, p.Status, next); err != nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "pickup changed, retry"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "bill generated",
		"payment_id": paymentID,
		"amount":     req.Amount,
		"status":     string(next),
	})
}

type completeReq struct {
	WeightKg float64 `json:"weight_kg"`
	PhotoURL *string `json:"photo_url,omitempty"`
	Notes    string  `json:"notes"`
}

// Complete finishes a pickup.  For household requests the collector
// submits the measured weight here; for business requests the weight was
// captured at billing and the request must already be paid.  Reward
// credit, standing bump and the status transition share one transaction.
func (h *CollectorHandler) Complete(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req completeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, err := h.Pickups.GetByIDTx(ctx, tx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pickup not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.CollectorID == nil || *p.CollectorID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "pickup not assigned to you"})
	}
	requester, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	role := pickup.RoleHousehold
	if requester.Role == model.RoleBusiness {
		role = pickup.RoleBusiness
	}
	next, err := pickup.Next(role, p.Status, pickup.EventComplete)
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "pickup not ready for completion"})
	}

	var weight float64
	switch role {
	case pickup.RoleHousehold:
		if req.WeightKg < model.MinWeightKg || req.WeightKg > model.MaxWeightKg {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "weight out of range"})
		}
		weight = req.WeightKg
		logEntry := model.WasteLog{
			PickupID:  id,
			WasteType: p.WasteType,
			WeightKg:  weight,
			PhotoURL:  req.PhotoURL,
			Notes:     req.Notes,
		}
		if err := h.WasteLogs.UpsertTx(ctx, tx, &logEntry); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record waste failed"})
		}
	case pickup.RoleBusiness:
		// Weight was captured when the bill was generated.
		logEntry, err := h.WasteLogs.GetByPickupTx(ctx, tx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusConflict, echo.Map{"error": "no waste record for pickup"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		weight = logEntry.WeightKg
	}

	points := waste.Points(p.WasteType, weight)
	if err := creditRewardTx(ctx, tx, h.Rewards, h.Standings, requester, id, p.WasteType, weight, points); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "credit reward failed"})
	}
	if err := h.Pickups.UpdateStatusTx(ctx, tx, id, p.Status, next); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "pickup changed, retry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	publishCompleted(p, requester, uid, weight, points)

	return c.JSON(http.StatusOK, echo.Map{
		"message":       "pickup completed",
		"points_earned": points,
		"weight_kg":     weight,
	})
}

type locationReq struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpdateLocation stores the collector's last reported position.
func (h *CollectorHandler) UpdateLocation(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid coordinates"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.UpdateLocation(ctx, uid, req.Latitude, req.Longitude); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update location failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "location updated"})
}

// creditRewardTx appends the ledger entry and bumps the requester's
// standing inside the caller's transaction.  Households accumulate both
// points and weight; businesses track weight only.
func creditRewardTx(ctx context.Context, tx *sql.Tx, rewards *repository.RewardRepo, standings *repository.StandingRepo, requester model.User, pickupID uint64, cat waste.Category, weightKg float64, points int) error {
	ev := model.EcoReward{
		UserID:     requester.ID,
		PickupID:   &pickupID,
		Points:     points,
		WeightKg:   weightKg,
		RewardType: model.RewardPickupCompleted,
	}
	if err := rewards.AppendTx(ctx, tx, &ev); err != nil {
		return err
	}
	if requester.Role == model.RoleBusiness {
		return standings.AddBusinessWeightTx(ctx, tx, requester.ID, weightKg)
	}
	return standings.AddHouseholdTotalsTx(ctx, tx, requester.ID, weightKg, points)
}

// publishCompleted emits the completion event after commit.  Broker
// trouble must not fail the request, so errors are logged inside the
// publisher and ignored here.
func publishCompleted(p model.PickupRequest, requester model.User, collectorID uint64, weightKg float64, points int) {
	ev := qu.PickupCompletedEvent{
		PickupID:      p.ID,
		UserID:        p.UserID,
		CollectorID:   collectorID,
		WasteType:     string(p.WasteType),
		WeightKg:      weightKg,
		PointsEarned:  points,
		RequesterRole: requester.Role,
		CompletedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishPickupCompleted(ctx, ev)
	}()
}
