package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/billing"
	"github.com/greenloop/waste-pickup/internal/model"
	"github.com/greenloop/waste-pickup/internal/pickup"
	"github.com/greenloop/waste-pickup/internal/repository"
	"github.com/greenloop/waste-pickup/internal/waste"
)

// PaymentHandler drives the business payment flow: opening a gateway
// order for a pending bill and settling it once the gateway confirms.
type PaymentHandler struct {
	DB        *sql.DB
	Gateway   billing.Gateway
	Currency  string
	Users     *repository.UserRepo
	Pickups   *repository.PickupRepo
	WasteLogs *repository.WasteLogRepo
	Payments  *repository.PaymentRepo
	Rewards   *repository.RewardRepo
	Standings *repository.StandingRepo
}

func NewPaymentHandler(db *sql.DB, gw billing.Gateway, currency string, u *repository.UserRepo, p *repository.PickupRepo, w *repository.WasteLogRepo, pay *repository.PaymentRepo, rw *repository.RewardRepo, st *repository.StandingRepo) *PaymentHandler {
	if db == nil || gw == nil || u == nil || p == nil || w == nil || pay == nil || rw == nil || st == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	if currency == "" {
		currency = "INR"
	}
	return &PaymentHandler{DB: db, Gateway: gw, Currency: currency, Users: u, Pickups: p, WasteLogs: w, Payments: pay, Rewards: rw, Standings: st}
}

// PayBill creates a gateway order for the pickup's pending payment and
// returns the order id the client needs for checkout.  Calling it again
// before verification issues a fresh order for the same payment.
func (h *PaymentHandler) PayBill(c echo.Context) error {
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

	pay, err := h.Payments.GetByPickup(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no bill for pickup"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if pay.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if pay.Status != model.PaymentPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment already completed"})
	}

	order, err := h.Gateway.CreateOrder(ctx, pay.Amount, h.Currency, receiptForPickup(id))
	if err != nil {
		if errors.Is(err, billing.ErrGatewayUnavailable) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}
	if err := h.Payments.SetOrderID(ctx, pay.ID, order.ID); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "payment already completed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save order failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_id": order.ID,
		"amount":   order.Amount, // minor units, as the gateway expects
		"currency": order.Currency,
	})
}

type verifyReq struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// Verify checks the gateway signature and, inside one transaction, marks
// the payment COMPLETED, moves the pickup to COMPLETED and credits the
// business its reward.  A replayed verification gets 409 from the
// payment's status guard.
func (h *PaymentHandler) Verify(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.PaymentID = strings.TrimSpace(req.PaymentID)
	req.Signature = strings.TrimSpace(req.Signature)
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id/payment_id/signature required"})
	}
	if !h.Gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "signature mismatch"})
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

	pay, err := h.Payments.GetByOrderIDTx(ctx, tx, req.OrderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if pay.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	p, err := h.Pickups.GetByIDTx(ctx, tx, pay.PickupID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	next, err := pickup.Next(pickup.RoleBusiness, p.Status, pickup.EventSettle)
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "pickup not awaiting payment"})
	}
	logEntry, err := h.WasteLogs.GetByPickupTx(ctx, tx, pay.PickupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no waste record for pickup"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	requester, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Payments.MarkCompletedTx(ctx, tx, pay.ID, req.PaymentID, req.Signature); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "payment already completed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settle payment failed"})
	}

	points := pointsFor(p, logEntry)
	if err := creditRewardTx(ctx, tx, h.Rewards, h.Standings, requester, p.ID, p.WasteType, logEntry.WeightKg, points); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "credit reward failed"})
	}
	if err := h.Pickups.UpdateStatusTx(ctx, tx, p.ID, p.Status, next); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "pickup changed, retry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	collectorID := uint64(0)
	if p.CollectorID != nil {
		collectorID = *p.CollectorID
	}
	publishCompleted(p, requester, collectorID, logEntry.WeightKg, points)

	return c.JSON(http.StatusOK, echo.Map{
		"message":       "payment verified",
		"points_earned": points,
		"weight_kg":     logEntry.WeightKg,
	})
}

func receiptForPickup(id uint64) string {
	return fmt.Sprintf("pickup_%d", id)
}

func pointsFor(p model.PickupRequest, l model.WasteLog) int {
	return waste.Points(p.WasteType, l.WeightKg)
}

// History lists the caller's payments, newest first.
func (h *PaymentHandler) History(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	pays, err := h.Payments.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(pays))
	for _, pay := range pays {
		out = append(out, echo.Map{
			"id":         pay.ID,
			"pickup_id":  pay.PickupID,
			"amount":     pay.Amount,
			"status":     pay.Status,
			"order_id":   pay.GatewayOrderID,
			"created_at": pay.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": out})
}
