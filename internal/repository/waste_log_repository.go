package repository

import (
	"context"
	"database/sql"

	"github.com/greenloop/waste-pickup/internal/model"
)

// WasteLogRepo persists capture records.  The unique index on
// waste_logs.pickup_id guarantees at most one record per request; the
// upsert path is what lets a collector re-generate a bill with a
// corrected weight without ever producing a second row.
type WasteLogRepo struct{ DB *sql.DB }

func NewWasteLogRepo(db *sql.DB) *WasteLogRepo { return &WasteLogRepo{DB: db} }

// UpsertTx creates the capture record for a pickup, or overwrites the
// measured weight and notes when one already exists.  Runs inside the
// caller's transaction so the record commits together with the status
// transition it belongs to.
func (r *WasteLogRepo) UpsertTx(ctx context.Context, tx *sql.Tx, l *model.WasteLog) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO waste_logs (pickup_id, waste_type, weight_kg, photo_url, notes, collected_at)
		 VALUES (?,?,?,?,?,NOW())
		 ON DUPLICATE KEY UPDATE waste_type=VALUES(waste_type), weight_kg=VALUES(weight_kg),
		 photo_url=VALUES(photo_url), notes=VALUES(notes), collected_at=NOW()`,
		l.PickupID, l.WasteType, l.WeightKg, l.PhotoURL, l.Notes)
	return err
}

// GetByPickupTx loads the capture record for a pickup inside an open
// transaction.  sql.ErrNoRows means no bill/completion ever captured a
// weight for this request.
func (r *WasteLogRepo) GetByPickupTx(ctx context.Context, tx *sql.Tx, pickupID uint64) (model.WasteLog, error) {
	return scanWasteLog(tx.QueryRowContext(ctx,
		"SELECT id,pickup_id,waste_type,weight_kg,photo_url,notes,collected_at FROM waste_logs WHERE pickup_id=? LIMIT 1",
		pickupID))
}

// GetByPickup is the non-transactional variant.
func (r *WasteLogRepo) GetByPickup(ctx context.Context, pickupID uint64) (model.WasteLog, error) {
	return scanWasteLog(r.DB.QueryRowContext(ctx,
		"SELECT id,pickup_id,waste_type,weight_kg,photo_url,notes,collected_at FROM waste_logs WHERE pickup_id=? LIMIT 1",
		pickupID))
}

// ListByUser returns the capture records behind a requester's pickups,
// newest first.
func (r *WasteLogRepo) ListByUser(ctx context.Context, userID uint64) ([]model.WasteLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT w.id,w.pickup_id,w.waste_type,w.weight_kg,w.photo_url,w.notes,w.collected_at
		 FROM waste_logs w JOIN pickup_requests p ON p.id = w.pickup_id
		 WHERE p.user_id=? ORDER BY w.collected_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	logs := make([]model.WasteLog, 0)
	for rows.Next() {
		var l model.WasteLog
		var photo sql.NullString
		if err := rows.Scan(&l.ID, &l.PickupID, &l.WasteType, &l.WeightKg, &photo, &l.Notes, &l.CollectedAt); err != nil {
			return nil, err
		}
		if photo.Valid {
			v := photo.String
			l.PhotoURL = &v
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// SumWeightForUser totals the captured weight across a requester's
// completed pickups.  Used to cross-check the ledger-derived totals.
func (r *WasteLogRepo) SumWeightForUser(ctx context.Context, userID uint64) (float64, error) {
	var total sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		`SELECT SUM(w.weight_kg) FROM waste_logs w
		 JOIN pickup_requests p ON p.id = w.pickup_id
		 WHERE p.user_id=? AND p.pickup_status='COMPLETED'`, userID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}

func scanWasteLog(row *sql.Row) (model.WasteLog, error) {
	var l model.WasteLog
	var photo sql.NullString
	err := row.Scan(&l.ID, &l.PickupID, &l.WasteType, &l.WeightKg, &photo, &l.Notes, &l.CollectedAt)
	if err != nil {
		return l, err
	}
	if photo.Valid {
		v := photo.String
		l.PhotoURL = &v
	}
	return l, nil
}
