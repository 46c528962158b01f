package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"studio_site_go/models"
	"studio_site_go/services"

	"github.com/labstack/echo/v4"
)

// monthFilter returns the half-open date range for year/month query params.
// Anything that does not parse as a valid month means no filter.
func monthFilter(c echo.Context) (string, string, bool) {
	yearParam, monthParam := c.QueryParam("year"), c.QueryParam("month")
	if yearParam == "" || monthParam == "" {
		return "", "", false
	}
	year, err := strconv.Atoi(yearParam)
	if err != nil || year < 1 || year > 9999 {
		return "", "", false
	}
	month, err := strconv.Atoi(monthParam)
	if err != nil || services.ValidateMonth(month) != nil {
		return "", "", false
	}
	start, end := services.MonthRange(year, month)
	return start, end, true
}

func (h *Handler) loadAvailability(c echo.Context) ([]models.AvailabilityEntry, error) {
	ctx := c.Request().Context()
	if start, end, ok := monthFilter(c); ok {
		return services.GetAvailabilityRange(ctx, h.DB, start, end)
	}
	return services.GetAllAvailability(ctx, h.DB)
}

// GetAvailability returns the date -> status map plus the raw entries
func (h *Handler) GetAvailability(c echo.Context) error {
	entries, err := h.loadAvailability(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch availability").SetInternal(err)
	}
	if entries == nil {
		entries = []models.AvailabilityEntry{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    services.AvailabilityMap(entries),
		"raw":     entries,
	})
}

// GetAvailabilityICS serves booked days as an iCalendar feed
func (h *Handler) GetAvailabilityICS(c echo.Context) error {
	entries, err := h.loadAvailability(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch availability").SetInternal(err)
	}

	host := c.Request().Host
	if u, err := url.Parse(h.Config.AppURL); err == nil && u.Host != "" {
		host = u.Hostname()
	}

	body, err := services.GenerateAvailabilityICS(entries, h.Config.BusinessName, host, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render calendar feed").SetInternal(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="availability.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", body)
}
