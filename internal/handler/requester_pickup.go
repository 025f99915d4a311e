package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/model"
	"github.com/greenloop/waste-pickup/internal/pickup"
	"github.com/greenloop/waste-pickup/internal/repository"
	"github.com/greenloop/waste-pickup/internal/waste"
)

// RequesterPickupHandler serves the endpoints households and businesses
// use to manage their own pickup requests.
type RequesterPickupHandler struct {
	Pickups   *repository.PickupRepo
	WasteLogs *repository.WasteLogRepo
}

func NewRequesterPickupHandler(p *repository.PickupRepo, w *repository.WasteLogRepo) *RequesterPickupHandler {
	return &RequesterPickupHandler{Pickups: p, WasteLogs: w}
}

const maxNotesLen = 500

type pickupReq struct {
	WasteType     string   `json:"waste_type"`
	ScheduledDate string   `json:"scheduled_date"` // "2006-01-02"
	ScheduledTime string   `json:"scheduled_time"` // "15:04" or "15:04:05"
	Notes         string   `json:"notes"`
	Frequency     *string  `json:"pickup_frequency,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

type pickupResp struct {
	ID            uint64   `json:"id"`
	UserID        uint64   `json:"user_id"`
	CollectorID   *uint64  `json:"collector_id,omitempty"`
	WasteType     string   `json:"waste_type"`
	ScheduledDate string   `json:"scheduled_date"`
	ScheduledTime string   `json:"scheduled_time"`
	Status        string   `json:"status"`
	Notes         string   `json:"notes,omitempty"`
	Frequency     *string  `json:"pickup_frequency,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	CreatedAt     string   `json:"created_at"`
}

func toPickupResp(p model.PickupRequest) pickupResp {
	return pickupResp{
		ID:            p.ID,
		UserID:        p.UserID,
		CollectorID:   p.CollectorID,
		WasteType:     string(p.WasteType),
		ScheduledDate: p.ScheduledDate.Format("2006-01-02"),
		ScheduledTime: p.ScheduledTime,
		Status:        string(p.Status),
		Notes:         p.Notes,
		Frequency:     p.Frequency,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toPickupResps(ps []model.PickupRequest) []pickupResp {
	out := make([]pickupResp, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPickupResp(p))
	}
	return out
}

// parsePickupReq validates the shared create/update body and returns the
// normalized fields.  The schedule must lie in the future.
func parsePickupReq(req pickupReq) (waste.Category, time.Time, string, error) {
	cat := waste.Category(strings.ToUpper(strings.TrimSpace(req.WasteType)))
	if !waste.Valid(cat) {
		return "", time.Time{}, "", echo.NewHTTPError(http.StatusBadRequest, "invalid waste type")
	}
	date, err := time.ParseInLocation("2006-01-02", req.ScheduledDate, time.UTC)
	if err != nil {
		return "", time.Time{}, "", echo.NewHTTPError(http.StatusBadRequest, "invalid scheduled_date")
	}
	clock := strings.TrimSpace(req.ScheduledTime)
	if t, err := time.Parse("15:04", clock); err == nil {
		clock = t.Format("15:04:05")
	} else if t, err := time.Parse("15:04:05", clock); err == nil {
		clock = t.Format("15:04:05")
	} else {
		return "", time.Time{}, "", echo.NewHTTPError(http.StatusBadRequest, "invalid scheduled_time")
	}
	if len(req.Notes) > maxNotesLen {
		return "", time.Time{}, "", echo.NewHTTPError(http.StatusBadRequest, "notes too long")
	}
	draft := model.PickupRequest{ScheduledDate: date, ScheduledTime: clock}
	if !draft.ScheduledAt().After(time.Now().UTC()) {
		return "", time.Time{}, "", echo.NewHTTPError(http.StatusBadRequest, "schedule must be in the future")
	}
	return cat, date, clock, nil
}

func writeHTTPError(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// Create schedules a new pickup request in PENDING status.
func (h *RequesterPickupHandler) Create(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req pickupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cat, date, clock, err := parsePickupReq(req)
	if err != nil {
		return writeHTTPError(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := model.PickupRequest{
		UserID:        uid,
		WasteType:     cat,
		ScheduledDate: date,
		ScheduledTime: clock,
		Status:        pickup.StatusPending,
		Notes:         strings.TrimSpace(req.Notes),
		Frequency:     req.Frequency,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
	}
	if err := h.Pickups.Create(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create pickup failed"})
	}
	return c.JSON(http.StatusCreated, toPickupResp(p))
}

// List returns the requester's own pickups, newest first.
func (h *RequesterPickupHandler) List(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	ps, err := h.Pickups.ListByRequester(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"pickups": toPickupResps(ps)})
}

// Get returns one of the requester's pickups.
func (h *RequesterPickupHandler) Get(c echo.Context) error {
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
	p, err := h.Pickups.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pickup not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	resp := echo.Map{"pickup": toPickupResp(p)}
	// Once a collector has captured a weight, surface it on the detail view.
	if wl, err := h.WasteLogs.GetByPickup(ctx, id); err == nil {
		resp["waste_log"] = toWasteLogResp(wl)
	} else if err != sql.ErrNoRows {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

type wasteLogResp struct {
	ID          uint64  `json:"id"`
	PickupID    uint64  `json:"pickup_id"`
	WasteType   string  `json:"waste_type"`
	WeightKg    float64 `json:"weight_kg"`
	PhotoURL    *string `json:"photo_url,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	CollectedAt string  `json:"collected_at"`
}

func toWasteLogResp(l model.WasteLog) wasteLogResp {
	return wasteLogResp{
		ID:          l.ID,
		PickupID:    l.PickupID,
		WasteType:   string(l.WasteType),
		WeightKg:    l.WeightKg,
		PhotoURL:    l.PhotoURL,
		Notes:       l.Notes,
		CollectedAt: l.CollectedAt.UTC().Format(time.RFC3339),
	}
}

// WasteHistory lists the capture records behind the requester's pickups,
// newest first.
func (h *RequesterPickupHandler) WasteHistory(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	logs, err := h.WasteLogs.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]wasteLogResp, 0, len(logs))
	for _, l := range logs {
		out = append(out, toWasteLogResp(l))
	}
	return c.JSON(http.StatusOK, echo.Map{"waste_logs": out})
}

// Update rewrites a pending pickup.  Requests inside the two hour window
// before the scheduled moment can no longer be modified.
func (h *RequesterPickupHandler) Update(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req pickupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cat, date, clock, err := parsePickupReq(req)
	if err != nil {
		return writeHTTPError(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Pickups.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pickup not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if existing.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if !pickup.CanModify(existing.Status, existing.ScheduledAt(), time.Now().UTC()) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "pickup can no longer be modified"})
	}

	p := model.PickupRequest{
		ID:            id,
		WasteType:     cat,
		ScheduledDate: date,
		ScheduledTime: clock,
		Notes:         strings.TrimSpace(req.Notes),
		Frequency:     req.Frequency,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
	}
	if err := h.Pickups.UpdateByRequester(ctx, &p, uid); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "pickup can no longer be modified"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update pickup failed"})
	}
	updated, err := h.Pickups.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toPickupResp(updated))
}

// Cancel moves a pickup to CANCELLED under the same two hour rule.
func (h *RequesterPickupHandler) Cancel(c echo.Context) error {
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

	existing, err := h.Pickups.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pickup not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if existing.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	// Cancellation is open to PENDING and ASSIGNED requests but honours
	// the same buffer before the scheduled moment as modification.
	cancellable := existing.Status == pickup.StatusPending || existing.Status == pickup.StatusAssigned
	if !cancellable || !time.Now().UTC().Before(existing.ScheduledAt().Add(-pickup.ModifyBuffer)) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "pickup can no longer be cancelled"})
	}

	if err := h.Pickups.Cancel(ctx, id); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "pickup can no longer be cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel pickup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "pickup cancelled"})
}

// Delete removes a pending, unassigned pickup entirely.
func (h *RequesterPickupHandler) Delete(c echo.Context) error {
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

	existing, err := h.Pickups.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pickup not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if existing.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if !pickup.CanModify(existing.Status, existing.ScheduledAt(), time.Now().UTC()) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "pickup can no longer be deleted"})
	}

	if err := h.Pickups.Delete(ctx, id, uid); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "only pending pickups can be deleted"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete pickup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "pickup deleted"})
}
