package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-volunteer-shifts/internal/queue"
	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
	queue_publisher "github.com/iliyamo/conference-volunteer-shifts/internal/service"
)

type capacityBody struct {
	Capacity uint32 `json:"capacity"`
}

type cascadeBody struct {
	NewCapacity uint32 `json:"new_capacity"`
}

// UpdateEnrollmentCapacity handles POST /v1/admin/enrollments/:id/capacity.
// The new capacity is stored as the enrollment's override and then pushed
// onto the enrollment's existing timeslots.  By default the cascade rides
// the capacity.update queue and the endpoint answers 202 with a job ID;
// with ?sync=true (or when no broker is configured) it runs inline and
// answers 200 with the {updated, skipped} tally.
func (h *AdminHandler) UpdateEnrollmentCapacity(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var body cascadeBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.NewCapacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_capacity must be positive"})
	}

	ctx := c.Request().Context()
	e, err := h.Enrollments.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrEnrollmentNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "enrollment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	e.MaxVolunteers = &body.NewCapacity
	if err := h.Enrollments.Update(ctx, e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	actorID, _ := getUserID(c)

	if h.AMQPURL != "" && c.QueryParam("sync") != "true" {
		ev := queue.CapacityUpdateRequested{
			JobID:        uuid.NewString(),
			EnrollmentID: id,
			Capacity:     body.NewCapacity,
			RequestedBy:  actorID,
			RequestedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if err := queue_publisher.PublishCapacityUpdate(ctx, h.AMQPURL, ev); err == nil {
			return c.JSON(http.StatusAccepted, echo.Map{"job_id": ev.JobID})
		}
		// Broker unavailable: fall through to the inline cascade so the
		// admin's change still lands.
	}

	res, err := h.Cascade.Apply(ctx, id, body.NewCapacity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cascade failed"})
	}
	h.invalidateBoards(ctx)
	return c.JSON(http.StatusOK, res)
}

// UpdateTimeslotCapacity handles PATCH /v1/admin/timeslots/:id/capacity.
// A single slot's capacity may be edited directly, but never below its
// live signup count.
func (h *AdminHandler) UpdateTimeslotCapacity(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var body capacityBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}

	ctx := c.Request().Context()
	if err := h.Timeslots.UpdateCapacityGuarded(ctx, id, body.Capacity); err != nil {
		switch err {
		case repository.ErrTimeslotNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "timeslot not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "capacity below current signups"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	slot, err := h.Timeslots.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	h.invalidateBoards(ctx)
	return c.JSON(http.StatusOK, slot)
}

type rosterAddBody struct {
	UserID uint64 `json:"user_id"`
}

// CreateTimeslotSignup handles POST /v1/admin/timeslots/:id/signups.  An
// admin placing a volunteer on a slot goes through the same eligibility
// path as a self-signup, so the roster can never hold an entry a
// volunteer could not have created.
func (h *AdminHandler) CreateTimeslotSignup(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var body rosterAddBody
	if err := c.Bind(&body); err != nil || body.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}

	ctx := c.Request().Context()
	s, rejection, err := h.Engine.CreateSignup(ctx, body.UserID, id)
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
	h.invalidateBoards(ctx)
	return c.JSON(http.StatusCreated, s)
}

// GetTimeslotRoster handles GET /v1/admin/timeslots/:id/roster and lists
// the volunteers signed up for one slot.
func (h *AdminHandler) GetTimeslotRoster(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	ctx := c.Request().Context()
	slot, err := h.Timeslots.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrTimeslotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "timeslot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	roster, err := h.Signups.ListRosterByTimeslot(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"timeslot": slot, "roster": roster})
}
