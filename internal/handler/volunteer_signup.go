package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-volunteer-shifts/internal/middleware"
	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
)

type signupReq struct {
	TimeslotID uint64 `json:"timeslot_id"`
}

// CreateSignup handles POST /v1/signups.  An ineligible attempt is a 422
// carrying the structured reason, not an error: the board moves fast and
// losing a race for the last place is a normal outcome.
func (h *VolunteerHandler) CreateSignup(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req signupReq
	if err := c.Bind(&req); err != nil || req.TimeslotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "timeslot_id required"})
	}

	ctx := c.Request().Context()
	s, rejection, err := h.Engine.CreateSignup(ctx, uid, req.TimeslotID)
	if err != nil {
		if err == repository.ErrTimeslotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "timeslot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}
	if rejection != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"reason":                 rejection.Reason,
			"message":                rejection.Message(),
			"missing_qualifications": rejection.Missing,
		})
	}

	middleware.InvalidateCache(ctx, h.Redis, h.CacheCfg.Prefix)
	return c.JSON(http.StatusCreated, s)
}

// CancelSignup handles DELETE /v1/signups/:id.  Volunteers cancel their
// own signups; admins may cancel anyone's.
func (h *VolunteerHandler) CancelSignup(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}

	ctx := c.Request().Context()
	if err := h.Engine.CancelSignup(ctx, id, uid, isAdmin(c)); err != nil {
		switch err {
		case repository.ErrSignupNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "signup not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	middleware.InvalidateCache(ctx, h.Redis, h.CacheCfg.Prefix)
	return c.NoContent(http.StatusNoContent)
}
