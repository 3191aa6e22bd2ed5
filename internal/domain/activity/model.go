package activity

import (
	"time"

	"github.com/google/uuid"
)

// Log is one row in the activity trail.
type Log struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	UserRole   *string   `db:"user_role" json:"user_role,omitempty"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   *string   `db:"entity_id" json:"entity_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Method     string    `db:"method" json:"method"`
	Path       string    `db:"path" json:"path"`
	IPAddress  *string   `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent  *string   `db:"user_agent" json:"user_agent,omitempty"`
	RequestID  *string   `db:"request_id" json:"request_id,omitempty"`
	StatusCode int       `db:"status_code" json:"status_code"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
