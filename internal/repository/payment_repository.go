package repository

import (
	"context"
	"database/sql"

	"github.com/greenloop/waste-pickup/internal/model"
)

// PaymentRepo persists billing records for business pickups.  One payment
// exists per request (unique index on payments.pickup_id); the amount can
// be revised only while the payment is still PENDING.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentCols = "id,user_id,pickup_id,amount,status,gateway_order_id,gateway_payment_id,gateway_signature,created_at,updated_at"

// UpsertPendingTx creates the payment for a pickup or, when a PENDING one
// already exists, updates its amount in place.  A payment that has
// reached COMPLETED is immutable: the upsert's status guard leaves it
// untouched and the method reports ErrConflict.
func (r *PaymentRepo) UpsertPendingTx(ctx context.Context, tx *sql.Tx, userID, pickupID uint64, amount float64) (uint64, error) {
	var (
		id     uint64
		status string
	)
	err := tx.QueryRowContext(ctx,
		"SELECT id, status FROM payments WHERE pickup_id=? LIMIT 1 FOR UPDATE", pickupID).Scan(&id, &status)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx,
			"INSERT INTO payments (user_id, pickup_id, amount, status) VALUES (?,?,?,?)",
			userID, pickupID, amount, model.PaymentPending)
		if err != nil {
			return 0, err
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		return uint64(newID), nil
	case err != nil:
		return 0, err
	}
	if status != model.PaymentPending {
		return 0, ErrConflict
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE payments SET amount=? WHERE id=? AND status=?", amount, id, model.PaymentPending); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByPickup fetches the payment attached to a pickup.
func (r *PaymentRepo) GetByPickup(ctx context.Context, pickupID uint64) (model.Payment, error) {
	return scanPayment(r.DB.QueryRowContext(ctx,
		"SELECT "+paymentCols+" FROM payments WHERE pickup_id=? LIMIT 1", pickupID))
}

// GetByOrderIDTx fetches and locks the payment the gateway order was
// created for.
func (r *PaymentRepo) GetByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID string) (model.Payment, error) {
	return scanPayment(tx.QueryRowContext(ctx,
		"SELECT "+paymentCols+" FROM payments WHERE gateway_order_id=? LIMIT 1 FOR UPDATE", orderID))
}

// SetOrderID records the gateway order created for a still-PENDING
// payment.
func (r *PaymentRepo) SetOrderID(ctx context.Context, paymentID uint64, orderID string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE payments SET gateway_order_id=? WHERE id=? AND status=?",
		orderID, paymentID, model.PaymentPending)
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

// MarkCompletedTx flips a PENDING payment to COMPLETED with the gateway's
// payment id and signature.  This is the only write path that completes a
// payment; the status guard makes a second settlement attempt a conflict.
func (r *PaymentRepo) MarkCompletedTx(ctx context.Context, tx *sql.Tx, paymentID uint64, gatewayPaymentID, signature string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE payments SET status=?, gateway_payment_id=?, gateway_signature=? WHERE id=? AND status=?",
		model.PaymentCompleted, gatewayPaymentID, signature, paymentID, model.PaymentPending)
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

// ListByUser returns a user's payment history, newest first.
func (r *PaymentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+paymentCols+" FROM payments WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Payment, 0)
	for rows.Next() {
		p, err := scanPaymentRows(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

type paymentScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row *sql.Row) (model.Payment, error)       { return scanPaymentFrom(row) }
func scanPaymentRows(rows *sql.Rows) (model.Payment, error) { return scanPaymentFrom(rows) }

func scanPaymentFrom(s paymentScanner) (model.Payment, error) {
	var p model.Payment
	var orderID, paymentID, signature sql.NullString
	err := s.Scan(&p.ID, &p.UserID, &p.PickupID, &p.Amount, &p.Status,
		&orderID, &paymentID, &signature, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if orderID.Valid {
		v := orderID.String
		p.GatewayOrderID = &v
	}
	if paymentID.Valid {
		v := paymentID.String
		p.GatewayPaymentID = &v
	}
	if signature.Valid {
		v := signature.String
		p.GatewaySignature = &v
	}
	return p, nil
}
