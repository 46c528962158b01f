package handlers

import (
	"context"
	"log"
	"net/http"

	"studio_site_go/models"
	"studio_site_go/services"

	"github.com/labstack/echo/v4"
)

type calendarSyncRequest struct {
	Date   string  `json:"date"`
	Status string  `json:"status"`
	Note   *string `json:"note"`
	Action string  `json:"action"`
}

// CalendarSync applies one change to the external calendar and reports the outcome
func (h *Handler) CalendarSync(c echo.Context) error {
	if h.Mirror == nil || !h.Mirror.Configured() {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Calendar sync skipped - not configured",
		})
	}

	var req calendarSyncRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Date is required")
	}

	action := services.SyncActionUpsert
	if req.Action == string(services.SyncActionDelete) {
		action = services.SyncActionDelete
	}
	status, _ := models.ParseAvailabilityStatus(req.Status)

	var result *services.SyncResult
	err := h.Dispatcher.Run(func(ctx context.Context) error {
		var syncErr error
		result, syncErr = h.Mirror.Sync(ctx, services.SyncRequest{
			Date:   req.Date,
			Status: status,
			Note:   req.Note,
			Action: action,
		})
		return syncErr
	})
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			return echo.NewHTTPError(http.StatusBadRequest, msg)
		}
		log.Printf("[WARNING] Calendar sync for %s failed: %v", req.Date, err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to sync with calendar",
			"details": err.Error(),
		})
	}

	code := http.StatusOK
	if result.Outcome == services.SyncCreated {
		code = http.StatusCreated
	}
	body := map[string]interface{}{
		"success": true,
		"message": result.Message,
		"outcome": result.Outcome,
	}
	if result.EventID != "" {
		body["eventId"] = result.EventID
	}
	return c.JSON(code, body)
}
