package handlers

import (
	"errors"
	"net/http"

	"studio_site_go/models"
	"studio_site_go/services"

	"github.com/labstack/echo/v4"
)

type contactStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListContacts returns the inbox, newest first
func (h *Handler) ListContacts(c echo.Context) error {
	submissions, err := services.ListContactSubmissions(c.Request().Context(), h.DB, c.QueryParam("status"))
	if err != nil {
		return badRequestOr(err, "Failed to fetch contact submissions")
	}
	if submissions == nil {
		submissions = []models.ContactSubmission{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    submissions,
	})
}

// UpdateContactStatus moves a submission between inbox states
func (h *Handler) UpdateContactStatus(c echo.Context) error {
	var req contactStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Status is required")
	}

	submission, err := services.UpdateContactStatus(c.Request().Context(), h.DB, c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Contact submission not found")
		}
		return badRequestOr(err, "Failed to update contact submission")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    submission,
	})
}

// ExportContacts downloads every submission as an xlsx workbook
func (h *Handler) ExportContacts(c echo.Context) error {
	submissions, err := services.ListContactSubmissions(c.Request().Context(), h.DB, c.QueryParam("status"))
	if err != nil {
		return badRequestOr(err, "Failed to export contact submissions")
	}

	buf, err := services.ExportContactSubmissionsXLSX(submissions)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to export contact submissions").SetInternal(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="contact_submissions.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
