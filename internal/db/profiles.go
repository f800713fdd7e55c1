package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"newstrack/internal/models"
)

// EnsureProfile creates a profile for the user if one does not exist yet and
// returns the current row. Idempotent: this is the single user-creation
// lifecycle hook, safe to call on every login.
func (d *DB) EnsureProfile(ctx context.Context, userID uuid.UUID, defaultQuota int) (*models.UserProfile, error) {
	query := `
		INSERT INTO user_profiles (user_id, keyword_quota)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := d.Pool.Exec(ctx, query, userID, defaultQuota); err != nil {
		return nil, err
	}

	return d.GetProfile(ctx, userID)
}

// GetProfile retrieves the profile for a user. A missing profile is reported
// as ErrProfileNotFound, never silently treated as unlimited or blocked.
func (d *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	query := `
		SELECT user_id, keyword_quota, is_blocked, created_at, updated_at
		FROM user_profiles WHERE user_id = $1
	`

	var profile models.UserProfile
	err := d.Pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.KeywordQuota,
		&profile.IsBlocked,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// UpdateProfile applies administrator changes to a user's quota and block
// flag. Nil fields are left untouched.
func (d *DB) UpdateProfile(ctx context.Context, userID uuid.UUID, quota *int, blocked *bool) (*models.UserProfile, error) {
	query := `
		UPDATE user_profiles SET
			keyword_quota = COALESCE($2, keyword_quota),
			is_blocked = COALESCE($3, is_blocked),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING user_id, keyword_quota, is_blocked, created_at, updated_at
	`

	var profile models.UserProfile
	err := d.Pool.QueryRow(ctx, query, userID, quota, blocked).Scan(
		&profile.UserID,
		&profile.KeywordQuota,
		&profile.IsBlocked,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// ProfileWithUser pairs a profile with its owning user for admin listings.
type ProfileWithUser struct {
	models.UserProfile
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ListProfiles returns all profiles with their user identity, for the admin
// console.
func (d *DB) ListProfiles(ctx context.Context) ([]ProfileWithUser, error) {
	query := `
		SELECT p.user_id, p.keyword_quota, p.is_blocked, p.created_at, p.updated_at,
			   u.sub, u.email, u.name
		FROM user_profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY u.name ASC, u.email ASC
	`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []ProfileWithUser
	for rows.Next() {
		var p ProfileWithUser
		if err := rows.Scan(
			&p.UserID, &p.KeywordQuota, &p.IsBlocked, &p.CreatedAt, &p.UpdatedAt,
			&p.Sub, &p.Email, &p.Name,
		); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}
