package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"studio_site_go/models"
	"studio_site_go/services"

	"github.com/labstack/echo/v4"
)

// SubmitContact stores a contact form message and notifies the owner in the background
func (h *Handler) SubmitContact(c echo.Context) error {
	var req services.ContactInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	submission, err := services.SubmitContact(c.Request().Context(), h.DB, req)
	if err != nil {
		return badRequestOr(err, "Failed to save contact submission")
	}

	h.dispatchContactNotification(submission)

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Contact submission received",
		"data":    submission,
	})
}

func (h *Handler) dispatchContactNotification(submission *models.ContactSubmission) {
	if h.Mailer == nil {
		return
	}
	details := services.SubmissionDetails(submission)
	mailer := h.Mailer
	to, business := h.Config.NotifyEmail, h.Config.BusinessName

	h.Dispatcher.Go("contact notification "+submission.ID, func(ctx context.Context) error {
		email, err := services.BuildContactNotificationEmail(to, business, details)
		if err != nil {
			return err
		}
		if _, err := mailer.Send(ctx, email); err != nil {
			if errors.Is(err, services.ErrNotConfigured) {
				log.Printf("[INFO] Contact notification skipped: %v", err)
				return nil
			}
			return err
		}
		return nil
	})
}

// SendEmail renders and sends the owner notification synchronously
func (h *Handler) SendEmail(c echo.Context) error {
	var req services.ContactInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	req = req.Sanitized()
	if err := c.Validate(req); err != nil {
		return badRequestOr(err, "Failed to send email")
	}

	email, err := services.BuildContactNotificationEmail(h.Config.NotifyEmail, h.Config.BusinessName, req.Details())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send email").SetInternal(err)
	}

	if h.Mailer == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send email").SetInternal(services.ErrNotConfigured)
	}

	var id string
	err = h.Dispatcher.Run(func(ctx context.Context) error {
		var sendErr error
		id, sendErr = h.Mailer.Send(ctx, email)
		return sendErr
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send email").SetInternal(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Email sent successfully",
		"id":      id,
	})
}
