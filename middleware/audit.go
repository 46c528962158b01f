package middleware

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

const ContextKeyAuditContext = "audit_context"

// AuditInfo identifies who performed an admin request
type AuditInfo struct {
	UserID    string
	UserEmail string
	IPAddress string
	UserAgent string
}

// AuditContext records the acting administrator and logs every admin write
// with its outcome. It must run after RequireBearer.
func AuditContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			info := AuditInfo{
				IPAddress: c.RealIP(),
				UserAgent: c.Request().UserAgent(),
			}
			if user := GetCurrentUser(c); user != nil {
				info.UserID = user.ID
				info.UserEmail = user.Email
			}
			c.Set(ContextKeyAuditContext, info)

			err := next(c)

			if method := c.Request().Method; method != http.MethodGet && method != http.MethodOptions {
				status := c.Response().Status
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
				log.Printf("[AUDIT] %s %s by %s (%s) from %s -> %d",
					method, c.Request().URL.Path, info.UserEmail, info.UserID, info.IPAddress, status)
			}
			return err
		}
	}
}

// GetAuditContext retrieves the audit info from the request
func GetAuditContext(c echo.Context) AuditInfo {
	if info, ok := c.Get(ContextKeyAuditContext).(AuditInfo); ok {
		return info
	}
	return AuditInfo{}
}
