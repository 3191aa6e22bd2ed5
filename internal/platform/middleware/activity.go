package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
)

// ActivityEntry captures who changed what, when, and from where. It is
// produced by the Activity middleware for every mutating API call.
type ActivityEntry struct {
	UserID     string
	UserRole   string
	EntityType string
	EntityID   string
	Action     string // create, update, delete
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// ActivityRecorder persists activity entries. Decoupling the middleware from
// the concrete repository lets tests plug in a mock implementation.
type ActivityRecorder interface {
	Record(entry ActivityEntry) error
}

// ActivityRecorderFunc is a function adapter for ActivityRecorder.
type ActivityRecorderFunc func(entry ActivityEntry) error

func (f ActivityRecorderFunc) Record(entry ActivityEntry) error {
	return f(entry)
}

// Activity returns Echo middleware that records every mutating request under
// /api/v1/ into the activity log: the authenticated user, the entity touched,
// and the resulting status. Reads are not recorded.
//
// If no ActivityRecorder is provided, entries go to the structured log only.
func Activity(logger zerolog.Logger, recorders ...ActivityRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !isRecordablePath(path) || !isMutatingMethod(req.Method) {
				return next(c)
			}

			// Execute the handler first so we capture the response status
			err := next(c)

			entry := ActivityEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: c.Response().Status,
				Action:     methodToAction(req.Method),
			}

			ctx := req.Context()
			entry.UserID = auth.UserIDFromContext(ctx)
			entry.UserRole = auth.RoleFromContext(ctx)

			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			entry.EntityType, entry.EntityID = splitEntityPath(path)

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].Record(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record activity entry")
				}
			}

			logger.Info().
				Str("type", "activity").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Str("user_role", entry.UserRole).
				Str("entity_type", entry.EntityType).
				Str("entity_id", entry.EntityID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("activity")

			return err
		}
	}
}

// isRecordablePath returns true for application API paths. Auth endpoints are
// excluded so credentials-carrying requests never reach the activity log.
func isRecordablePath(path string) bool {
	if strings.HasPrefix(path, "/api/v1/auth/") {
		return false
	}
	return strings.HasPrefix(path, "/api/v1/")
}

func isMutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func methodToAction(method string) string {
	switch method {
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

// splitEntityPath parses the entity type and optional ID from an API path.
//
// Supported patterns:
//   - /api/v1/patients          -> ("patients", "")
//   - /api/v1/patients/123      -> ("patients", "123")
//   - /api/v1/bills/123/payments -> ("bills", "123")
func splitEntityPath(path string) (string, string) {
	trimmed := strings.TrimPrefix(path, "/api/v1/")
	segments := strings.Split(trimmed, "/")
	switch {
	case len(segments) >= 2 && segments[1] != "":
		return segments[0], segments[1]
	case len(segments) >= 1:
		return segments[0], ""
	}
	return "", ""
}
