package model

import "time"

// Roles stored in users.role.  HOUSEHOLD and BUSINESS create pickup
// requests, COLLECTOR fulfils them, NGO and ADMIN get the oversight
// screens.
const (
	RoleHousehold = "HOUSEHOLD"
	RoleBusiness  = "BUSINESS"
	RoleCollector = "COLLECTOR"
	RoleNGO       = "NGO"
	RoleAdmin     = "ADMIN"
)

// User represents a row of the `users` table.  Profile columns that only
// apply to some roles (vehicle, licence, organization) are nullable.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Name          – display name.
//  Email         – unique email address.
//  PasswordHash  – bcrypt hashed password.
//  Role          – account role (see constants above).
//  Phone         – contact phone number.
//  Address       – street address.
//  City          – city, used for leaderboard filtering.
//  VehicleType   – collector vehicle (nullable).
//  LicenseNumber – collector licence (nullable).
//  OrgName       – NGO organization name (nullable).
//  Latitude      – last reported latitude (collectors, nullable).
//  Longitude     – last reported longitude (collectors, nullable).
//  IsActive      – whether the account is active.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    // users.id
	Name          string    // users.name
	Email         string    // users.email
	PasswordHash  string    // users.password_hash
	Role          string    // users.role
	Phone         string    // users.phone
	Address       string    // users.address
	City          string    // users.city
	VehicleType   *string   // users.vehicle_type (nullable)
	LicenseNumber *string   // users.license_number (nullable)
	OrgName       *string   // users.org_name (nullable)
	Latitude      *float64  // users.latitude (nullable)
	Longitude     *float64  // users.longitude (nullable)
	IsActive      bool      // users.is_active
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
