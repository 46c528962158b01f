package handlers

import (
	"errors"
	"net/http"
	"time"

	"studio_site_go/middleware"
	"studio_site_go/services"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,contact_email"`
	Password string `json:"password" validate:"required"`
}

func (loginRequest) ValidationMessage(field, tag string) string {
	if tag == "required" {
		return "Email and password are required"
	}
	return "Invalid email format"
}

// Login exchanges admin credentials for a bearer token
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return badRequestOr(err, "Login failed")
	}

	ctx := c.Request().Context()
	user, err := services.Authenticate(ctx, h.DB, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed").SetInternal(err)
	}

	token, err := services.IssueAccessToken(user, h.Config.AuthTokenSecret, h.Config.AuthTokenIssuer, h.Config.AuthTokenTTL, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed").SetInternal(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
		"user":       user,
	})
}

// Me returns the authenticated administrator
func (h *Handler) Me(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}
