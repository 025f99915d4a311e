package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/greenloop/waste-pickup/internal/model"
	"github.com/greenloop/waste-pickup/internal/pickup"
)

// PickupRepo provides persistence for pickup requests.  Status changes go
// through conditional UPDATEs that include the expected current status in
// the WHERE clause, so a transition commits only when the row still
// satisfies its precondition.
type PickupRepo struct{ DB *sql.DB }

func NewPickupRepo(db *sql.DB) *PickupRepo { return &PickupRepo{DB: db} }

const pickupCols = "id,user_id,collector_id,waste_type,scheduled_date,scheduled_time,pickup_status,notes,pickup_frequency,latitude,longitude,created_at"

// Create inserts a new request in PENDING and populates the generated ID
// and creation timestamp on the passed record.
func (r *PickupRepo) Create(ctx context.Context, p *model.PickupRequest) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO pickup_requests
		 (user_id, waste_type, scheduled_date, scheduled_time, pickup_status, notes, pickup_frequency, latitude, longitude)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		p.UserID, p.WasteType, p.ScheduledDate.Format("2006-01-02"), p.ScheduledTime,
		pickup.StatusPending, p.Notes, p.Frequency, p.Latitude, p.Longitude)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.Status = pickup.StatusPending
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM pickup_requests WHERE id=?", p.ID).Scan(&p.CreatedAt)
}

// GetByID fetches a single request.
func (r *PickupRepo) GetByID(ctx context.Context, id uint64) (model.PickupRequest, error) {
	return scanPickup(r.DB.QueryRowContext(ctx,
		"SELECT "+pickupCols+" FROM pickup_requests WHERE id=? LIMIT 1", id))
}

// GetByIDTx is GetByID inside an open transaction, with FOR UPDATE so the
// row stays stable for the remainder of the transaction.
func (r *PickupRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.PickupRequest, error) {
	return scanPickup(tx.QueryRowContext(ctx,
		"SELECT "+pickupCols+" FROM pickup_requests WHERE id=? LIMIT 1 FOR UPDATE", id))
}

// ListByRequester returns a user's own requests, newest first.
func (r *PickupRepo) ListByRequester(ctx context.Context, userID uint64) ([]model.PickupRequest, error) {
	return r.list(ctx, "SELECT "+pickupCols+" FROM pickup_requests WHERE user_id=? ORDER BY created_at DESC", userID)
}

// ListOpen returns every unassigned PENDING request, newest first.  This
// is the pool collectors claim from.
func (r *PickupRepo) ListOpen(ctx context.Context) ([]model.PickupRequest, error) {
	return r.list(ctx, "SELECT "+pickupCols+" FROM pickup_requests WHERE pickup_status=? ORDER BY created_at DESC", pickup.StatusPending)
}

// ListByCollector returns the requests assigned to a collector.
func (r *PickupRepo) ListByCollector(ctx context.Context, collectorID uint64) ([]model.PickupRequest, error) {
	return r.list(ctx, "SELECT "+pickupCols+" FROM pickup_requests WHERE collector_id=? ORDER BY created_at DESC", collectorID)
}

// ListAll returns every request, newest first, for oversight screens.
func (r *PickupRepo) ListAll(ctx context.Context) ([]model.PickupRequest, error) {
	return r.list(ctx, "SELECT "+pickupCols+" FROM pickup_requests ORDER BY created_at DESC")
}

// Accept atomically claims a PENDING request for a collector.  The status
// check and collector assignment happen in one conditional UPDATE, so when
// several collectors race on the same request exactly one succeeds; the
// rest get ErrConflict (or sql.ErrNoRows when the id is unknown).
func (r *PickupRepo) Accept(ctx context.Context, pickupID, collectorID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE pickup_requests SET collector_id=?, pickup_status=? WHERE id=? AND pickup_status=? AND collector_id IS NULL",
		collectorID, pickup.StatusAssigned, pickupID, pickup.StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	// Zero rows: either the request vanished or someone else won the race.
	var exists bool
	if err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM pickup_requests WHERE id=?)", pickupID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return sql.ErrNoRows
	}
	return ErrConflict
}

// RejectByCollector cancels an ASSIGNED request claimed by collectorID.
// The ownership and status checks ride in the UPDATE's WHERE clause; on
// zero rows a follow-up read classifies the failure as sql.ErrNoRows,
// ErrForbidden (claimed by someone else) or ErrConflict (wrong status).
func (r *PickupRepo) RejectByCollector(ctx context.Context, pickupID, collectorID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE pickup_requests SET pickup_status=? WHERE id=? AND collector_id=? AND pickup_status=?",
		pickup.StatusCancelled, pickupID, collectorID, pickup.StatusAssigned)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var status pickup.Status
	var collector sql.NullInt64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT pickup_status, collector_id FROM pickup_requests WHERE id=? LIMIT 1",
		pickupID).Scan(&status, &collector); err != nil {
		return err
	}
	if !collector.Valid || uint64(collector.Int64) != collectorID {
		return ErrForbidden
	}
	return ErrConflict
}

// Cancel moves a request to CANCELLED.  Only PENDING and ASSIGNED rows
// qualify; anything further along returns ErrConflict.
func (r *PickupRepo) Cancel(ctx context.Context, pickupID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE pickup_requests SET pickup_status=? WHERE id=? AND pickup_status IN (?,?)",
		pickup.StatusCancelled, pickupID, pickup.StatusPending, pickup.StatusAssigned)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// UpdateByRequester rewrites the mutable fields of a still-PENDING
// request owned by userID.  The PENDING guard lives in the WHERE clause;
// the 2-hour buffer is checked by the handler before calling.
func (r *PickupRepo) UpdateByRequester(ctx context.Context, p *model.PickupRequest, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE pickup_requests SET waste_type=?, scheduled_date=?, scheduled_time=?, notes=?, pickup_frequency=?
		 WHERE id=? AND user_id=? AND pickup_status=?`,
		p.WasteType, p.ScheduledDate.Format("2006-01-02"), p.ScheduledTime, p.Notes, p.Frequency,
		p.ID, userID, pickup.StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// Delete removes a still-PENDING request owned by userID.
func (r *PickupRepo) Delete(ctx context.Context, pickupID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM pickup_requests WHERE id=? AND user_id=? AND pickup_status=?",
		pickupID, userID, pickup.StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// UpdateStatusTx applies a status transition inside a transaction with the
// expected current status as precondition.  Zero affected rows means the
// row moved underneath us and the whole transaction should roll back.
func (r *PickupRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, pickupID uint64, from, to pickup.Status) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE pickup_requests SET pickup_status=? WHERE id=? AND pickup_status=?",
		to, pickupID, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *PickupRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.PickupRequest, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.PickupRequest, 0)
	for rows.Next() {
		p, err := scanPickupRows(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

type pickupScanner interface {
	Scan(dest ...interface{}) error
}

func scanPickup(row *sql.Row) (model.PickupRequest, error)       { return scanPickupFrom(row) }
func scanPickupRows(rows *sql.Rows) (model.PickupRequest, error) { return scanPickupFrom(rows) }

func scanPickupFrom(s pickupScanner) (model.PickupRequest, error) {
	var p model.PickupRequest
	var collector sql.NullInt64
	var freq sql.NullString
	var lat, lng sql.NullFloat64
	// parseTime=true in the DSN turns DATE columns into time.Time; TIME
	// columns always arrive as text.
	var date time.Time
	var timeStr string
	err := s.Scan(&p.ID, &p.UserID, &collector, &p.WasteType, &date, &timeStr,
		&p.Status, &p.Notes, &freq, &lat, &lng, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	p.ScheduledDate = date
	p.ScheduledTime = timeStr
	if collector.Valid {
		v := uint64(collector.Int64)
		p.CollectorID = &v
	}
	if freq.Valid {
		v := freq.String
		p.Frequency = &v
	}
	if lat.Valid {
		v := lat.Float64
		p.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		p.Longitude = &v
	}
	return p, nil
}
