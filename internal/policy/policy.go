// Package policy decides whether a user may perform a new keyword search.
package policy

import (
	"context"

	"newstrack/internal/db"
	"newstrack/internal/models"
)

// DenialReason explains why a search was not allowed.
type DenialReason string

const (
	ReasonBlocked       DenialReason = "blocked"
	ReasonQuotaExceeded DenialReason = "quota_exceeded"
)

// Decision is the outcome of a quota/access check. RemainingQuota is nil for
// privileged users, whose searches are not counted against a quota.
type Decision struct {
	Allowed        bool
	Reason         DenialReason
	RemainingQuota *int
}

// Policy evaluates quota and block rules against the store.
type Policy struct {
	db *db.DB
}

// New creates a policy backed by the given store.
func New(database *db.DB) *Policy {
	return &Policy{db: database}
}

// CanSearch reports whether the user may start a new keyword search.
// Privileged users (staff or superuser) bypass quota and block checks. A
// missing profile surfaces as db.ErrProfileNotFound, never as unlimited or
// blocked access.
func (p *Policy) CanSearch(ctx context.Context, user *models.User) (*Decision, error) {
	if user.IsPrivileged() {
		return &Decision{Allowed: true}, nil
	}

	profile, err := p.db.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if profile.IsBlocked {
		return &Decision{Allowed: false, Reason: ReasonBlocked}, nil
	}

	count, err := p.db.CountSearchesByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if count >= profile.KeywordQuota {
		return &Decision{Allowed: false, Reason: ReasonQuotaExceeded}, nil
	}

	remaining := profile.KeywordQuota - count
	return &Decision{Allowed: true, RemainingQuota: &remaining}, nil
}
