package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-volunteer-shifts/internal/handler"
	"github.com/iliyamo/conference-volunteer-shifts/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.  All
// routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)

	// ---- Conferences ----
	g.POST("/conferences", a.CreateConference)
	g.GET("/conferences", a.ListConferences)
	g.GET("/conferences/:id", a.GetConference)
	g.PUT("/conferences/:id", a.UpdateConference)
	g.POST("/conferences/:id/archive", a.ArchiveConference)
	g.DELETE("/conferences/:id", a.DeleteConference)
	g.GET("/conferences/:id/enrollments", a.ListEnrollments)

	// ---- Programs ----
	g.POST("/programs", a.CreateProgram)
	g.GET("/programs", a.ListPrograms)
	g.GET("/programs/:id", a.GetProgram)
	g.PUT("/programs/:id", a.UpdateProgram)
	g.DELETE("/programs/:id", a.DeleteProgram)

	// ---- Enrollments ----
	g.POST("/enrollments", a.CreateEnrollment)
	g.GET("/enrollments/:id", a.GetEnrollment)
	g.PUT("/enrollments/:id", a.UpdateEnrollment)
	g.DELETE("/enrollments/:id", a.DeleteEnrollment)
	g.POST("/enrollments/:id/capacity", a.UpdateEnrollmentCapacity)

	// ---- Timeslots ----
	g.PATCH("/timeslots/:id/capacity", a.UpdateTimeslotCapacity)
	g.GET("/timeslots/:id/roster", a.GetTimeslotRoster)
	g.POST("/timeslots/:id/signups", a.CreateTimeslotSignup)

	// ---- Qualifications ----
	g.POST("/qualifications", a.CreateQualification)
	g.GET("/qualifications", a.ListQualifications)
	g.DELETE("/qualifications/:id", a.DeleteQualification)
	g.POST("/programs/:id/qualifications/:qid", a.RequireQualification)
	g.DELETE("/programs/:id/qualifications/:qid", a.UnrequireQualification)
	g.POST("/users/:id/qualifications/:qid", a.GrantQualification)
	g.DELETE("/users/:id/qualifications/:qid", a.RevokeQualification)
}
