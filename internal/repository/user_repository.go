package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/greenloop/waste-pickup/internal/model"
	"github.com/greenloop/waste-pickup/internal/utils"
)

// UserRepo persists accounts for every actor role.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userCols = "id,name,email,password_hash,role,phone,address,city,vehicle_type,license_number,org_name,latitude,longitude,is_active,created_at,updated_at"

// Create inserts a user and returns its ID.  The email is normalized to
// lower case; a duplicate-key failure maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, phone, address, city, vehicle_type, license_number, org_name) VALUES (?,?,?,?,?,?,?,?,?,?)",
		u.Name, email, hash, u.Role, u.Phone, u.Address, u.City, u.VehicleType, u.LicenseNumber, u.OrgName)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// ListByRole returns all users holding a role, newest first.  Used by the
// NGO/admin listing screens.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users WHERE role=? ORDER BY created_at DESC", role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		u, err := r.scanRows(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateProfile overwrites the mutable profile columns of a user.
// Role, email and password are not touched here.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, phone=?, address=?, city=?, vehicle_type=?, license_number=?, org_name=? WHERE id=?",
		u.Name, u.Phone, u.Address, u.City, u.VehicleType, u.LicenseNumber, u.OrgName, u.ID)
	return err
}

// UpdateLocation stores a collector's last reported coordinates.
func (r *UserRepo) UpdateLocation(ctx context.Context, id uint64, lat, lng float64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET latitude=?, longitude=? WHERE id=?", lat, lng, id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	var vehicle, licence, org sql.NullString
	var lat, lng sql.NullFloat64
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.Address, &u.City,
		&vehicle, &licence, &org, &lat, &lng, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	applyNullables(&u, vehicle, licence, org, lat, lng)
	return u, nil
}

func (r *UserRepo) scanRows(rows *sql.Rows) (model.User, error) {
	var u model.User
	var vehicle, licence, org sql.NullString
	var lat, lng sql.NullFloat64
	err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.Address, &u.City,
		&vehicle, &licence, &org, &lat, &lng, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	applyNullables(&u, vehicle, licence, org, lat, lng)
	return u, nil
}

func applyNullables(u *model.User, vehicle, licence, org sql.NullString, lat, lng sql.NullFloat64) {
	if vehicle.Valid {
		v := vehicle.String
		u.VehicleType = &v
	}
	if licence.Valid {
		v := licence.String
		u.LicenseNumber = &v
	}
	if org.Valid {
		v := org.String
		u.OrgName = &v
	}
	if lat.Valid {
		v := lat.Float64
		u.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		u.Longitude = &v
	}
}
