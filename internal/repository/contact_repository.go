package repository

import (
	"context"
	"database/sql"

	"github.com/greenloop/waste-pickup/internal/model"
)

// ContactRepo stores contact-form submissions for the NGO/admin mailbox.
type ContactRepo struct{ DB *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{DB: db} }

// Create inserts a new UNREAD message and returns its ID.
func (r *ContactRepo) Create(ctx context.Context, m *model.ContactMessage) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO contact_messages (name, email, subject, message, status) VALUES (?,?,?,?,?)",
		m.Name, m.Email, m.Subject, m.Message, model.MessageUnread)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns all messages, newest first.
func (r *ContactRepo) List(ctx context.Context) ([]model.ContactMessage, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,subject,message,status,created_at FROM contact_messages ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	msgs := make([]model.ContactMessage, 0)
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// SetStatus moves a message between UNREAD/READ/REPLIED.
func (r *ContactRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE contact_messages SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
