// Package handler defines the HTTP handlers for the volunteer shift API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-volunteer-shifts/internal/middleware"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWT numeric claims arrive as float64 after JSON decoding.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the authenticated request carries the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == middleware.RoleAdmin
}

// pathID parses a numeric path parameter, writing a 400 response itself
// when the parameter is malformed.  The bool result tells the caller
// whether to continue.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
