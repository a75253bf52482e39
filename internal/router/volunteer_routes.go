package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-volunteer-shifts/internal/handler"
	"github.com/iliyamo/conference-volunteer-shifts/internal/middleware"
)

// RegisterVolunteer registers the volunteer-facing endpoints under /v1.
// All routes require a valid JWT; admins may use them too (an admin
// cancelling someone's signup goes through the same route).  The optional
// cache middleware wraps only the schedule board reads.
func RegisterVolunteer(e *echo.Echo, h *handler.VolunteerHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleVolunteer, middleware.RoleAdmin),
	)

	if cache != nil {
		g.GET("/conferences", h.ListConferences, cache)
		g.GET("/conferences/:id/schedule", h.GetScheduleBoard, cache)
	} else {
		g.GET("/conferences", h.ListConferences)
		g.GET("/conferences/:id/schedule", h.GetScheduleBoard)
	}

	g.GET("/signups", h.MySignups)
	g.POST("/signups", h.CreateSignup)
	g.DELETE("/signups/:id", h.CancelSignup)
}
