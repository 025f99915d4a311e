package database

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"

	"github.com/greenloop/waste-pickup/internal/utils"
)

// SeedAdmin creates the bootstrap admin account on first start.  The seed
// is idempotent: if a user already holds the admin email nothing happens.
// Credentials come from ADMIN_EMAIL and ADMIN_PASSWORD; when either is
// unset the seed is skipped, which is the normal case outside of dev.
func SeedAdmin(ctx context.Context, db *sql.DB, bcryptCost int) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var exists int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE email=? LIMIT 1", email).Scan(&exists)
	if err == nil {
		return nil // already seeded
	}
	if err != sql.ErrNoRows {
		return err
	}

	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		"Administrator", email, hash, "ADMIN")
	if err != nil {
		return err
	}
	log.Printf("seeded admin account %s", email)
	return nil
}
