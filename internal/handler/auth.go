package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/config"
	"github.com/greenloop/waste-pickup/internal/model"
	"github.com/greenloop/waste-pickup/internal/repository"
	"github.com/greenloop/waste-pickup/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Users     *repository.UserRepo
	Tokens    *repository.TokenRepo
	Standings *repository.StandingRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, s *repository.StandingRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Standings: s}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // HOUSEHOLD | BUSINESS | COLLECTOR | NGO
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`

	// Role specific extras.
	FamilySize      *int    `json:"family_size,omitempty"`      // HOUSEHOLD
	BusinessType    string  `json:"business_type,omitempty"`    // BUSINESS
	PickupFrequency string  `json:"pickup_frequency,omitempty"` // BUSINESS
	VehicleType     *string `json:"vehicle_type,omitempty"`     // COLLECTOR
	LicenseNumber   *string `json:"license_number,omitempty"`   // COLLECTOR
	OrgName         *string `json:"org_name,omitempty"`         // NGO
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

var registerableRoles = map[string]bool{
	model.RoleHousehold: true,
	model.RoleBusiness:  true,
	model.RoleCollector: true,
	model.RoleNGO:       true,
}

// Register creates a user plus the standing row its role needs and
// returns a token pair right away.  ADMIN accounts cannot be registered
// through this endpoint.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !registerableRoles[role] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u := model.User{
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Role:    role,
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
	}
	switch role {
	case model.RoleCollector:
		u.VehicleType = req.VehicleType
		u.LicenseNumber = req.LicenseNumber
	case model.RoleNGO:
		u.OrgName = req.OrgName
	}

	uid, err := h.Users.Create(ctx, &u, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	// Standing rows back the leaderboards and start at zero.
	switch role {
	case model.RoleHousehold:
		if err := h.Standings.CreateHousehold(ctx, uid, req.FamilySize); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
		}
	case model.RoleBusiness:
		if err := h.Standings.CreateBusiness(ctx, uid, req.BusinessType, req.PickupFrequency); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
		}
	}

	access, refresh, err := h.issuePair(c, uid, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusCreated, authResp{
		User:    userPart{ID: uid, Name: u.Name, Email: u.Email, Role: role},
		Access:  access,
		Refresh: refresh,
	})
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	}
	if !utils.CheckPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, refresh, err := h.issuePair(c, u.ID, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
		Access:  access,
		Refresh: refresh,
	})
}

// Refresh rotates a refresh token: validate by hash, revoke the old one,
// issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	access, refresh, err := h.issuePair(c, u.ID, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
		Access:  access,
		Refresh: refresh,
	})
}

// Logout revokes every refresh token of the current user.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, profileResp(u))
}

// issuePair signs an access token and stores a fresh refresh token.
func (h *AuthHandler) issuePair(c echo.Context, uid uint64, role string) (tokenPart, tokenPart, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	return tokenPart{Token: access.Token, Expires: access.Exp.Format(time.RFC3339)},
		tokenPart{Token: refresh.Raw, Expires: refresh.Exp.Format(time.RFC3339)},
		nil
}
