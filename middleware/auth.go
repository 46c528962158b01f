package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"studio_site_go/models"
	"studio_site_go/services"

	"github.com/labstack/echo/v4"
)

const (
	// ContextKeyUser is the context key for the authenticated administrator
	ContextKeyUser = "user"

	bearerPrefix = "Bearer "
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// RequireBearer rejects requests without a valid admin token before the
// handler reads the body.
func RequireBearer(verifier services.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			user, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				if !errors.Is(err, services.ErrUnauthorized) {
					log.Printf("[WARNING] Token verification failed: %v", err)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// GetCurrentUser retrieves the current user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}
