package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
	"github.com/iliyamo/conference-volunteer-shifts/internal/scheduler"
)

type enrollmentBody struct {
	ConferenceID      uint64            `json:"conference_id"`
	ProgramID         uint64            `json:"program_id"`
	DaySchedule       model.DaySchedule `json:"day_schedule"`
	MaxVolunteers     *uint32           `json:"max_volunteers,omitempty"`
	PublicDescription string            `json:"public_description"`
}

// validDaySchedule pre-checks the wall-clock strings so a bad payload is
// a 400, not a failed generation later.  Bounds left empty are fine; they
// fall back to the conference hours or skip the day silently.
func validDaySchedule(ds model.DaySchedule) bool {
	for _, win := range ds {
		for _, hm := range []string{win.Start, win.End} {
			if hm == "" {
				continue
			}
			if _, err := time.Parse("15:04", hm); err != nil {
				return false
			}
		}
	}
	return true
}

// CreateEnrollment handles POST /v1/admin/enrollments.  The enrollment's
// timeslots are generated immediately from its day-schedule.
func (h *AdminHandler) CreateEnrollment(c echo.Context) error {
	var body enrollmentBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ConferenceID == 0 || body.ProgramID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "conference_id and program_id are required"})
	}
	if body.MaxVolunteers != nil && *body.MaxVolunteers == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_volunteers must be positive"})
	}
	if !validDaySchedule(body.DaySchedule) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "day_schedule times must be HH:MM"})
	}

	ctx := c.Request().Context()
	e := &model.Enrollment{
		ConferenceID:      body.ConferenceID,
		ProgramID:         body.ProgramID,
		DaySchedule:       body.DaySchedule,
		MaxVolunteers:     body.MaxVolunteers,
		PublicDescription: body.PublicDescription,
	}
	if err := h.Enrollments.Create(ctx, e); err != nil {
		if err == repository.ErrEnrollmentExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "program already enrolled in this conference"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create enrollment"})
	}

	_, created, err := h.Reconciler.RegenerateEnrollment(ctx, e.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "timeslot generation failed"})
	}
	h.invalidateBoards(ctx)
	return c.JSON(http.StatusCreated, echo.Map{"enrollment": e, "timeslots_created": created})
}

// ListEnrollments handles GET /v1/admin/conferences/:id/enrollments.
func (h *AdminHandler) ListEnrollments(c echo.Context) error {
	confID, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	items, err := h.Enrollments.ListByConference(c.Request().Context(), confID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, items)
}

// GetEnrollment handles GET /v1/admin/enrollments/:id, including its
// timeslots.
func (h *AdminHandler) GetEnrollment(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	ctx := c.Request().Context()
	e, err := h.Enrollments.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrEnrollmentNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "enrollment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	slots, err := h.Timeslots.ListByEnrollment(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"enrollment": e, "timeslots": slots})
}

// UpdateEnrollment handles PUT /v1/admin/enrollments/:id.  A changed
// day-schedule rebuilds the enrollment's timeslots from scratch,
// destroying any existing signups on them.
func (h *AdminHandler) UpdateEnrollment(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var body enrollmentBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.MaxVolunteers != nil && *body.MaxVolunteers == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_volunteers must be positive"})
	}
	if !validDaySchedule(body.DaySchedule) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "day_schedule times must be HH:MM"})
	}

	ctx := c.Request().Context()
	prev, err := h.Enrollments.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrEnrollmentNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "enrollment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	e := &model.Enrollment{
		ID:                id,
		ConferenceID:      prev.ConferenceID,
		ProgramID:         prev.ProgramID,
		DaySchedule:       body.DaySchedule,
		MaxVolunteers:     body.MaxVolunteers,
		PublicDescription: body.PublicDescription,
	}
	if err := h.Enrollments.Update(ctx, e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	resp := echo.Map{"enrollment": e}
	switch {
	case !sameSchedule(prev.DaySchedule, body.DaySchedule):
		destroyed, created, err := h.Reconciler.RegenerateEnrollment(ctx, id)
		if err != nil {
			if errors.Is(err, scheduler.ErrBadDaySchedule) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "day_schedule times must be HH:MM"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule regeneration failed"})
		}
		resp["regenerated"] = echo.Map{"destroyed": destroyed, "created": created}
	case capacityChanged(prev.MaxVolunteers, body.MaxVolunteers) && body.MaxVolunteers != nil:
		// A capacity-only change must not destroy signups, so the
		// existing slots get the cascade instead of a rebuild.
		res, err := h.Cascade.Apply(ctx, id, *body.MaxVolunteers)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "capacity cascade failed"})
		}
		resp["cascade"] = res
	}
	h.invalidateBoards(ctx)
	return c.JSON(http.StatusOK, resp)
}

func capacityChanged(prev, next *uint32) bool {
	if prev == nil || next == nil {
		return prev != next
	}
	return *prev != *next
}

// sameSchedule compares two day-schedules structurally.  The maps are
// tiny, so JSON round-tripping them is the simplest faithful comparison.
func sameSchedule(a, b model.DaySchedule) bool {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return string(ab) == string(bb)
}

// DeleteEnrollment handles DELETE /v1/admin/enrollments/:id.  Timeslots
// and signups cascade away in the database.
func (h *AdminHandler) DeleteEnrollment(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Enrollments.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrEnrollmentNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "enrollment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.invalidateBoards(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
