package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user authenticated via OIDC.
type User struct {
	ID          uuid.UUID `json:"id"`
	Sub         string    `json:"sub"` // OIDC subject identifier
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPrivileged returns true if the user bypasses quota and block checks.
func (u *User) IsPrivileged() bool {
	return u.IsStaff || u.IsSuperuser
}
