package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/conference-volunteer-shifts/internal/config"
	"github.com/iliyamo/conference-volunteer-shifts/internal/middleware"
	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
	"github.com/iliyamo/conference-volunteer-shifts/internal/scheduler"
)

// AdminHandler bundles everything the admin surface needs: CRUD
// repositories plus the scheduling engine pieces that react to changes.
type AdminHandler struct {
	Conferences    *repository.ConferenceRepo
	Programs       *repository.ProgramRepo
	Enrollments    *repository.EnrollmentRepo
	Timeslots      *repository.TimeslotRepo
	Signups        *repository.SignupRepo
	Qualifications *repository.QualificationRepo
	Reconciler     *scheduler.Reconciler
	Cascade        *scheduler.CascadeUpdater
	Engine         *scheduler.SignupEngine
	AMQPURL        string        // empty disables the async cascade queue
	Redis          *redis.Client // nil disables cache invalidation
	CacheCfg       config.CacheConfig
}

// NewAdminHandler constructs an AdminHandler and panics if any dependency
// is nil.
func NewAdminHandler(conferences *repository.ConferenceRepo, programs *repository.ProgramRepo, enrollments *repository.EnrollmentRepo, timeslots *repository.TimeslotRepo, signups *repository.SignupRepo, qualifications *repository.QualificationRepo, reconciler *scheduler.Reconciler, cascade *scheduler.CascadeUpdater, engine *scheduler.SignupEngine, amqpURL string, rdb *redis.Client, cacheCfg config.CacheConfig) *AdminHandler {
	if conferences == nil || programs == nil || enrollments == nil || timeslots == nil || signups == nil || qualifications == nil || reconciler == nil || cascade == nil || engine == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{
		Conferences:    conferences,
		Programs:       programs,
		Enrollments:    enrollments,
		Timeslots:      timeslots,
		Signups:        signups,
		Qualifications: qualifications,
		Reconciler:     reconciler,
		Cascade:        cascade,
		Engine:         engine,
		AMQPURL:        amqpURL,
		Redis:          rdb,
		CacheCfg:       cacheCfg,
	}
}

// invalidateBoards bumps the cache generation so cached schedule boards
// are rebuilt after a mutation.
func (h *AdminHandler) invalidateBoards(ctx context.Context) {
	middleware.InvalidateCache(ctx, h.Redis, h.CacheCfg.Prefix)
}

const dateLayout = "2006-01-02"

type conferenceBody struct {
	Name       string `json:"name"`
	Location   string `json:"location"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD
	EndDate    string `json:"end_date"`   // YYYY-MM-DD
	HoursStart string `json:"hours_start,omitempty"`
	HoursEnd   string `json:"hours_end,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}

// parseConferenceBody validates a conference payload into a model value.
// The string it returns is a client-facing validation message; empty means
// valid.
func parseConferenceBody(b conferenceBody) (model.Conference, string) {
	var conf model.Conference
	conf.Name = strings.TrimSpace(b.Name)
	if conf.Name == "" {
		return conf, "name is required"
	}
	conf.Location = strings.TrimSpace(b.Location)

	start, err := time.Parse(dateLayout, b.StartDate)
	if err != nil {
		return conf, "start_date must be YYYY-MM-DD"
	}
	end, err := time.Parse(dateLayout, b.EndDate)
	if err != nil {
		return conf, "end_date must be YYYY-MM-DD"
	}
	if end.Before(start) {
		return conf, "end_date must not precede start_date"
	}
	conf.StartDate, conf.EndDate = start, end

	for _, hm := range []string{b.HoursStart, b.HoursEnd} {
		if hm == "" {
			continue
		}
		if _, err := time.Parse("15:04", hm); err != nil {
			return conf, "hours must be HH:MM"
		}
	}
	conf.HoursStart, conf.HoursEnd = b.HoursStart, b.HoursEnd

	conf.Timezone = strings.TrimSpace(b.Timezone)
	if conf.Timezone == "" {
		conf.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(conf.Timezone); err != nil {
		return conf, "timezone must be an IANA zone name"
	}
	return conf, ""
}

// CreateConference handles POST /v1/admin/conferences.
func (h *AdminHandler) CreateConference(c echo.Context) error {
	var body conferenceBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	conf, msg := parseConferenceBody(body)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Conferences.Create(c.Request().Context(), &conf); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create conference"})
	}
	h.invalidateBoards(c.Request().Context())
	return c.JSON(http.StatusCreated, conf)
}

// ListConferences handles GET /v1/admin/conferences.  Archived
// conferences appear only with ?archived=true.
func (h *AdminHandler) ListConferences(c echo.Context) error {
	includeArchived := c.QueryParam("archived") == "true"
	items, err := h.Conferences.List(c.Request().Context(), includeArchived)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, items)
}

// GetConference handles GET /v1/admin/conferences/:id.
func (h *AdminHandler) GetConference(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	conf, err := h.Conferences.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrConferenceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "conference not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, conf)
}

// UpdateConference handles PUT /v1/admin/conferences/:id.  When the dates
// or default hours change, every enrollment's timeslots are rebuilt from
// scratch; existing signups on the old slots are destroyed with them.
func (h *AdminHandler) UpdateConference(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var body conferenceBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	conf, msg := parseConferenceBody(body)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	conf.ID = id

	ctx := c.Request().Context()
	prev, err := h.Conferences.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrConferenceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "conference not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if err := h.Conferences.Update(ctx, &conf); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	scheduleChanged := !prev.StartDate.Equal(conf.StartDate) ||
		!prev.EndDate.Equal(conf.EndDate) ||
		prev.HoursStart != conf.HoursStart ||
		prev.HoursEnd != conf.HoursEnd ||
		prev.Timezone != conf.Timezone

	resp := echo.Map{"conference": conf}
	if scheduleChanged {
		destroyed, created, err := h.Reconciler.RegenerateConference(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule regeneration failed"})
		}
		resp["regenerated"] = echo.Map{"destroyed": destroyed, "created": created}
	}
	h.invalidateBoards(ctx)
	return c.JSON(http.StatusOK, resp)
}

// ArchiveConference handles POST /v1/admin/conferences/:id/archive.
// Archiving only hides the conference from default listings.
func (h *AdminHandler) ArchiveConference(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Conferences.Archive(c.Request().Context(), id); err != nil {
		if err == repository.ErrConferenceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "conference not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "archive failed"})
	}
	h.invalidateBoards(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"archived": id})
}

// DeleteConference handles DELETE /v1/admin/conferences/:id.  Enrollments,
// timeslots and signups cascade away in the database.
func (h *AdminHandler) DeleteConference(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Conferences.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrConferenceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "conference not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.invalidateBoards(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
