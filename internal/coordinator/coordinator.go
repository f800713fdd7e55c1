// Package coordinator orchestrates keyword searches and refreshes: recency
// and cooldown rules, quota gating, fetching, and dedup-aware persistence.
package coordinator

import (
	"context"
	"time"

	"newstrack/internal/db"
	"newstrack/internal/news"
	"newstrack/internal/policy"
)

const (
	// RecencyWindow is how long a completed search stays "recent": a repeat
	// search inside it needs explicit confirmation (force_refresh).
	RecencyWindow = 15 * time.Minute

	// RefreshCooldown is the minimum interval between targeted refreshes of
	// the same keyword search.
	RefreshCooldown = 15 * time.Minute
)

// Fetcher is the external news source client as the coordinators consume it.
type Fetcher interface {
	Fetch(ctx context.Context, keyword string, from *time.Time) ([]news.Article, error)
}

// AccessDeniedError is returned when quota/access policy rejects a search.
type AccessDeniedError struct {
	Reason policy.DenialReason
}

func (e *AccessDeniedError) Error() string {
	return "access denied: " + string(e.Reason)
}

// Coordinator wires the policy, registry, article store, and news client.
type Coordinator struct {
	db     *db.DB
	policy *policy.Policy
	client Fetcher
}

// New creates a coordinator.
func New(database *db.DB, pol *policy.Policy, client Fetcher) *Coordinator {
	return &Coordinator{db: database, policy: pol, client: client}
}
