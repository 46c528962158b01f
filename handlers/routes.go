package handlers

import (
	"net/http"

	"studio_site_go/middleware"
	"studio_site_go/services"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the API. Every route answers OPTIONS through the CORS
// middleware; methods that are not registered get echo's 405.
func RegisterRoutes(e *echo.Echo, h *Handler, verifier services.TokenVerifier, loginLimiter *middleware.RateLimiter) {
	e.Validator = services.RequestValidator{}
	origins := h.Config.AllowedOrigins
	noop := func(c echo.Context) error { return nil }

	route := func(path string, handlers map[string]echo.HandlerFunc, mw ...echo.MiddlewareFunc) {
		methods := make([]string, 0, len(handlers))
		for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
			if _, ok := handlers[m]; ok {
				methods = append(methods, m)
			}
		}
		cors := middleware.CORS(origins, methods...)
		for _, m := range methods {
			e.Add(m, path, handlers[m], append([]echo.MiddlewareFunc{cors}, mw...)...)
		}
		e.OPTIONS(path, noop, cors)
	}

	admin := []echo.MiddlewareFunc{middleware.RequireBearer(verifier), middleware.AuditContext()}

	// Public
	route("/api/availability", map[string]echo.HandlerFunc{http.MethodGet: h.GetAvailability})
	route("/api/availability.ics", map[string]echo.HandlerFunc{http.MethodGet: h.GetAvailabilityICS})
	route("/api/calendar-sync", map[string]echo.HandlerFunc{http.MethodPost: h.CalendarSync})
	route("/api/contact", map[string]echo.HandlerFunc{http.MethodPost: h.SubmitContact})
	route("/api/send-email", map[string]echo.HandlerFunc{http.MethodPost: h.SendEmail})

	// Admin
	var loginMW []echo.MiddlewareFunc
	if loginLimiter != nil {
		loginMW = append(loginMW, loginLimiter.Middleware())
	}
	route("/api/admin/login", map[string]echo.HandlerFunc{http.MethodPost: h.Login}, loginMW...)
	route("/api/admin/me", map[string]echo.HandlerFunc{http.MethodGet: h.Me}, admin...)
	route("/api/admin/availability", map[string]echo.HandlerFunc{
		http.MethodPut:    h.PutAvailability,
		http.MethodDelete: h.DeleteAvailability,
	}, admin...)
	route("/api/admin/contacts", map[string]echo.HandlerFunc{http.MethodGet: h.ListContacts}, admin...)
	route("/api/admin/contacts/export", map[string]echo.HandlerFunc{http.MethodGet: h.ExportContacts}, admin...)
	route("/api/admin/contacts/:id/status", map[string]echo.HandlerFunc{http.MethodPut: h.UpdateContactStatus}, admin...)

	e.GET("/health", h.Health)
}
