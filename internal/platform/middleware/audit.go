package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/careops/careops/internal/platform/auth"
)

// AccessEntry captures who touched which API resource. This is the
// request-level access log; the transactional audit trail for privileged
// mutations lives in the audit domain package.
type AccessEntry struct {
	UserID       string
	Organization string
	ResourceType string
	Action       string // read, create, update, delete
	IPAddress    string
	Path         string
	Method       string
	Timestamp    time.Time
	RequestID    string
	StatusCode   int
}

// AccessLog logs every /api/v1 request with its caller identity claims.
func AccessLog(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			if !strings.HasPrefix(path, "/api/v1/") {
				return next(c)
			}

			// Run the handler first so the response status is known.
			err := next(c)

			entry := AccessEntry{
				Timestamp:    time.Now().UTC(),
				Path:         path,
				Method:       req.Method,
				IPAddress:    c.RealIP(),
				StatusCode:   c.Response().Status,
				Action:       methodToAction(req.Method),
				ResourceType: resourceFromPath(path),
			}
			if claims := auth.ClaimsFromContext(req.Context()); claims != nil {
				entry.UserID = claims.Subject
				entry.Organization = claims.OrganizationID
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			logger.Info().
				Str("type", "access_audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Str("org_id", entry.Organization).
				Str("resource_type", entry.ResourceType).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("api_access")

			return err
		}
	}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

func resourceFromPath(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	if len(segments) > 0 && segments[0] != "" {
		return segments[0]
	}
	return "unknown"
}
