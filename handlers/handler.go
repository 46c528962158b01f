package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"studio_site_go/config"
	"studio_site_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Calendar sync states reported on accepted admin writes
const (
	CalendarSyncQueued   = "queued"
	CalendarSyncDisabled = "disabled"
)

// Handler carries the long-lived clients shared by every request
type Handler struct {
	DB         *gorm.DB
	Config     *config.Config
	Mirror     services.Mirror
	Mailer     services.Mailer
	Dispatcher *services.Dispatcher
}

// NewHandler wires the request handlers to their dependencies
func NewHandler(db *gorm.DB, cfg *config.Config, mirror services.Mirror, mailer services.Mailer, dispatcher *services.Dispatcher) *Handler {
	if dispatcher == nil {
		dispatcher = services.NewDispatcher(cfg.SideEffectTimeout)
	}
	return &Handler{
		DB:         db,
		Config:     cfg,
		Mirror:     mirror,
		Mailer:     mailer,
		Dispatcher: dispatcher,
	}
}

// HTTPErrorHandler renders every error as {success: false, error: "..."}
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
		if he.Internal != nil {
			log.Printf("[WARNING] %s %s: %v", c.Request().Method, c.Request().URL.Path, he.Internal)
		}
	} else {
		log.Printf("[CRITICAL] Unhandled error on %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]interface{}{
			"success": false,
			"error":   message,
		})
	}
	if err != nil {
		log.Printf("[WARNING] Failed to write error response: %v", err)
	}
}

// validationMessage returns the caller-facing message of a ValidationError
func validationMessage(err error) (string, bool) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message, true
	}
	return "", false
}

// badRequestOr maps a ValidationError to 400 and anything else to a 500 with fallback
func badRequestOr(err error, fallback string) error {
	if msg, ok := validationMessage(err); ok {
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
}

// Health reports liveness and which optional integrations are configured
func (h *Handler) Health(c echo.Context) error {
	status := "ok"
	if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   status,
		"calendar": h.Mirror != nil && h.Mirror.Configured(),
		"email":    h.Config.ResendAPIKey != "" || h.Config.EmailTestMode,
	})
}
