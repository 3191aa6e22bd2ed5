package activity

import (
	"context"
	"fmt"

	"github.com/hms/hms/internal/platform/middleware"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Recorder adapts this service to the middleware's ActivityRecorder so every
// mutating API call lands in the activity_log table. Persistence failures are
// the middleware's problem to log; the request itself is never failed.
func (s *Service) Recorder() middleware.ActivityRecorder {
	return middleware.ActivityRecorderFunc(func(entry middleware.ActivityEntry) error {
		l := &Log{
			EntityType: entry.EntityType,
			Action:     entry.Action,
			Method:     entry.Method,
			Path:       entry.Path,
			StatusCode: entry.StatusCode,
			OccurredAt: entry.Timestamp,
		}
		if entry.UserID != "" {
			l.UserID = &entry.UserID
		}
		if entry.UserRole != "" {
			l.UserRole = &entry.UserRole
		}
		if entry.EntityID != "" {
			l.EntityID = &entry.EntityID
		}
		if entry.IPAddress != "" {
			l.IPAddress = &entry.IPAddress
		}
		if entry.UserAgent != "" {
			l.UserAgent = &entry.UserAgent
		}
		if entry.RequestID != "" {
			l.RequestID = &entry.RequestID
		}
		return s.repo.Create(context.Background(), l)
	})
}

var validActions = map[string]bool{"create": true, "update": true, "delete": true}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Log, int, error) {
	if f.Action != "" && !validActions[f.Action] {
		return nil, 0, fmt.Errorf("invalid action: %s", f.Action)
	}
	return s.repo.List(ctx, f, limit, offset)
}

// Prune deletes entries older than the given number of days.
func (s *Service) Prune(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("retention days must be positive")
	}
	return s.repo.DeleteOlderThan(ctx, days)
}
