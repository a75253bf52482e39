package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-volunteer-shifts/internal/model"
	"github.com/iliyamo/conference-volunteer-shifts/internal/repository"
)

type qualificationBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateQualification handles POST /v1/admin/qualifications.
func (h *AdminHandler) CreateQualification(c echo.Context) error {
	var body qualificationBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	q := &model.Qualification{Name: name, Description: body.Description}
	if err := h.Qualifications.Create(c.Request().Context(), q); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "qualification name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create qualification"})
	}
	return c.JSON(http.StatusCreated, q)
}

// ListQualifications handles GET /v1/admin/qualifications.
func (h *AdminHandler) ListQualifications(c echo.Context) error {
	items, err := h.Qualifications.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, items)
}

// DeleteQualification handles DELETE /v1/admin/qualifications/:id.
// Program requirements and user grants referencing it cascade away.
func (h *AdminHandler) DeleteQualification(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	if err := h.Qualifications.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrQualificationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "qualification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RequireQualification handles POST /v1/admin/programs/:id/qualifications/:qid
// and marks the qualification as required by the program.
func (h *AdminHandler) RequireQualification(c echo.Context) error {
	programID, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	qualID, ok := pathID(c, "qid")
	if !ok {
		return nil
	}
	if err := h.Qualifications.AttachToProgram(c.Request().Context(), programID, qualID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "attach failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"program_id": programID, "qualification_id": qualID})
}

// UnrequireQualification handles DELETE /v1/admin/programs/:id/qualifications/:qid.
func (h *AdminHandler) UnrequireQualification(c echo.Context) error {
	programID, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	qualID, ok := pathID(c, "qid")
	if !ok {
		return nil
	}
	if err := h.Qualifications.DetachFromProgram(c.Request().Context(), programID, qualID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "detach failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// GrantQualification handles POST /v1/admin/users/:id/qualifications/:qid
// and awards the qualification to a volunteer.  Granting twice is a no-op.
func (h *AdminHandler) GrantQualification(c echo.Context) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	qualID, ok := pathID(c, "qid")
	if !ok {
		return nil
	}
	if err := h.Qualifications.GrantToUser(c.Request().Context(), userID, qualID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "qualification_id": qualID})
}

// RevokeQualification handles DELETE /v1/admin/users/:id/qualifications/:qid.
func (h *AdminHandler) RevokeQualification(c echo.Context) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return nil
	}
	qualID, ok := pathID(c, "qid")
	if !ok {
		return nil
	}
	if err := h.Qualifications.RevokeFromUser(c.Request().Context(), userID, qualID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
