package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
)

type programBody struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	MaxVolunteers uint32 `json:"max_volunteers"`
}

// CreateProgram handles POST /v1/admin/programs.
func (h *AdminHandler) CreateProgram(c echo.Context) error {
	var body programBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.MaxVolunteers == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_volunteers must be positive"})
	}
	p := &model.Program{Name: name, Description: body.Description, MaxVolunteers: body.MaxVolunteers}
	if err := h.Programs.Create(c.Request().Context(), p); err != nil {
		if err == repository.ErrProgramNameExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "program name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create program"})
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPrograms handles GET /v1/admin/programs.
func (h *AdminHandler) ListPrograms(c echo.Context) error {
	items, err := h.Programs.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, items)
}

// GetProgram handles GET /v1/admin/programs/:id, including the program's
// required qualifications.
func (h *AdminHandler) GetProgram(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	ctx := c.Request().Context()
	p, err := h.Programs.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrProgramNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "program not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	required, err := h.Qualifications.NamesRequiredByProgram(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"program": p, "required_qualifications": required})
}

// UpdateProgram handles PUT /v1/admin/programs/:id.  Changing
// max_volunteers here only moves the default for future generation;
// existing timeslots change only through an explicit capacity cascade.
func (h *AdminHandler) UpdateProgram(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	var body programBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.MaxVolunteers == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_volunteers must be positive"})
	}
	p := &model.Program{ID: id, Name: name, Description: body.Description, MaxVolunteers: body.MaxVolunteers}
	if err := h.Programs.Update(c.Request().Context(), p); err != nil {
		switch err {
		case repository.ErrProgramNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "program not found"})
		case repository.ErrProgramNameExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "program name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteProgram handles DELETE /v1/admin/programs/:id.
func (h *AdminHandler) DeleteProgram(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Programs.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrProgramNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "program not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
