package handlers

import (
	"context"
	"log"
	"net/http"

	"studio_site_go/models"
	"studio_site_go/services"

	"github.com/labstack/echo/v4"
)

type availabilityRequest struct {
	Date   string  `json:"date"`
	Status string  `json:"status"`
	Note   *string `json:"note"`
}

type deleteAvailabilityRequest struct {
	Date string `json:"date"`
}

// PutAvailability upserts one day. The response reflects the store write only.
func (h *Handler) PutAvailability(c echo.Context) error {
	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Date == "" || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Date and status are required")
	}
	status, ok := models.ParseAvailabilityStatus(req.Status)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Status must be one of: free, partial, busy")
	}
	if _, err := services.ParseAvailabilityDate(req.Date); err != nil {
		return badRequestOr(err, "Failed to update availability")
	}

	entry, err := services.UpsertAvailability(c.Request().Context(), h.DB, req.Date, status, req.Note)
	if err != nil {
		return badRequestOr(err, "Failed to update availability")
	}

	sync := h.dispatchMirrorSync(services.SyncRequest{
		Date:   entry.Date,
		Status: entry.Status,
		Note:   entry.Note,
		Action: services.SyncActionUpsert,
	})

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":       true,
		"message":       "Availability updated",
		"data":          entry,
		"calendar_sync": sync,
	})
}

// DeleteAvailability removes one day and its mirrored event
func (h *Handler) DeleteAvailability(c echo.Context) error {
	var req deleteAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Date is required")
	}
	if _, err := services.ParseAvailabilityDate(req.Date); err != nil {
		return badRequestOr(err, "Failed to delete availability")
	}

	if err := services.DeleteAvailability(c.Request().Context(), h.DB, req.Date); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete availability").SetInternal(err)
	}

	sync := h.dispatchMirrorSync(services.SyncRequest{
		Date:   req.Date,
		Action: services.SyncActionDelete,
	})

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":       true,
		"message":       "Availability deleted",
		"calendar_sync": sync,
	})
}

// dispatchMirrorSync hands the change to the dispatcher without waiting on it
func (h *Handler) dispatchMirrorSync(req services.SyncRequest) string {
	if h.Mirror == nil || !h.Mirror.Configured() {
		return CalendarSyncDisabled
	}

	mirror := h.Mirror
	h.Dispatcher.Go("calendar sync "+req.Date, func(ctx context.Context) error {
		result, err := mirror.Sync(ctx, req)
		if err != nil {
			return err
		}
		log.Printf("[INFO] Calendar sync for %s: %s", req.Date, result.Outcome)
		return nil
	})
	return CalendarSyncQueued
}
