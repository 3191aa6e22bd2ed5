package user

import (
	"time"

	"github.com/google/uuid"
)

// Roles known to the system. Admin passes every role check.
var ValidRoles = map[string]bool{
	"admin":     true,
	"reception": true,
	"doctor":    true,
	"billing":   true,
	"pharmacy":  true,
}

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
