package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile carries per-user search policy: how many keywords the user may
// track and whether searching is blocked outright. Privileged users have no
// profile; policy checks bypass them before looking here.
type UserProfile struct {
	UserID       uuid.UUID `json:"user_id"`
	KeywordQuota int       `json:"keyword_quota"`
	IsBlocked    bool      `json:"is_blocked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
