package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/conference-volunteer-shifts/internal/config"
	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
	"github.com/iliyamo/conference-volunteer-shifts/internal/scheduler"
)

// VolunteerHandler bundles what the volunteer surface needs: browsing the
// schedule board and claiming or cancelling shifts.
type VolunteerHandler struct {
	Conferences *repository.ConferenceRepo
	Timeslots   *repository.TimeslotRepo
	Signups     *repository.SignupRepo
	Engine      *scheduler.SignupEngine
	Redis       *redis.Client // nil disables cache invalidation
	CacheCfg    config.CacheConfig
}

// NewVolunteerHandler constructs a VolunteerHandler and panics if a
// required dependency is nil.  Redis is optional.
func NewVolunteerHandler(conferences *repository.ConferenceRepo, timeslots *repository.TimeslotRepo, signups *repository.SignupRepo, engine *scheduler.SignupEngine, rdb *redis.Client, cacheCfg config.CacheConfig) *VolunteerHandler {
	if conferences == nil || timeslots == nil || signups == nil || engine == nil {
		panic("nil dependency passed to NewVolunteerHandler")
	}
	return &VolunteerHandler{
		Conferences: conferences,
		Timeslots:   timeslots,
		Signups:     signups,
		Engine:      engine,
		Redis:       rdb,
		CacheCfg:    cacheCfg,
	}
}

// ListConferences handles GET /v1/conferences for volunteers.  Archived
// conferences never appear here.
func (h *VolunteerHandler) ListConferences(c echo.Context) error {
	items, err := h.Conferences.List(c.Request().Context(), false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, items)
}

// GetScheduleBoard handles GET /v1/conferences/:id/schedule and returns
// every timeslot of the conference with program names and live occupancy,
// ordered by start time.  This is the read the response cache fronts.
func (h *VolunteerHandler) GetScheduleBoard(c echo.Context) error {
	confID, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	ctx := c.Request().Context()
	if _, err := h.Conferences.GetByID(ctx, confID); err != nil {
		if err == repository.ErrConferenceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "conference not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	board, err := h.Timeslots.ListBoardByConference(ctx, confID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, board)
}

// MySignups handles GET /v1/signups and lists the caller's signups,
// optionally filtered with ?conference_id=N.
func (h *VolunteerHandler) MySignups(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var confID uint64
	if raw := c.QueryParam("conference_id"); raw != "" {
		confID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conference_id"})
		}
	}
	items, err := h.Signups.ListByUser(c.Request().Context(), uid, confID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, items)
}
