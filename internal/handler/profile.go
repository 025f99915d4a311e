package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-pickup/internal/model"
	"github.com/greenloop/waste-pickup/internal/repository"
)

// ProfileHandler manages the authenticated user's own account data.
type ProfileHandler struct {
	Users *repository.UserRepo
}

func NewProfileHandler(u *repository.UserRepo) *ProfileHandler {
	return &ProfileHandler{Users: u}
}

func profileResp(u model.User) echo.Map {
	return echo.Map{
		"id":             u.ID,
		"name":           u.Name,
		"email":          u.Email,
		"role":           u.Role,
		"phone":          u.Phone,
		"address":        u.Address,
		"city":           u.City,
		"vehicle_type":   u.VehicleType,
		"license_number": u.LicenseNumber,
		"org_name":       u.OrgName,
		"is_active":      u.IsActive,
		"created_at":     u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type updateProfileReq struct {
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	VehicleType   *string `json:"vehicle_type,omitempty"`
	LicenseNumber *string `json:"license_number,omitempty"`
	OrgName       *string `json:"org_name,omitempty"`
}

// Update rewrites the caller's mutable profile fields.  Email, role and
// password are not editable here.
func (h *ProfileHandler) Update(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
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

	u.Name = strings.TrimSpace(req.Name)
	u.Phone = strings.TrimSpace(req.Phone)
	u.Address = strings.TrimSpace(req.Address)
	u.City = strings.TrimSpace(req.City)
	switch u.Role {
	case model.RoleCollector:
		u.VehicleType = req.VehicleType
		u.LicenseNumber = req.LicenseNumber
	case model.RoleNGO:
		u.OrgName = req.OrgName
	}

	if err := h.Users.UpdateProfile(ctx, &u); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
	return c.JSON(http.StatusOK, profileResp(u))
}
