// Package handler contains the HTTP endpoints.  Handlers bind request
// bodies, enforce ownership and role rules, call repositories and answer
// with echo.Map JSON payloads.
package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the incoming request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentUserID reads the subject claim stored by the JWT middleware.
// Numeric claims arrive as float64 after JSON decoding.
func currentUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// currentRole reads the role claim stored by the JWT middleware.
func currentRole(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
