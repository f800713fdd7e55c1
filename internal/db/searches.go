package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"newstrack/internal/models"
)

// CountSearchesByUser returns the number of keywords a user currently tracks.
func (d *DB) CountSearchesByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM keyword_searches WHERE user_id = $1`, userID,
	).Scan(&count)
	return count, err
}

// GetRecentSearch finds the user's search for a keyword (case-insensitive)
// with searched_at at or after the given instant. Returns ErrSearchNotFound
// when no such search exists.
func (d *DB) GetRecentSearch(ctx context.Context, userID uuid.UUID, keyword string, since time.Time) (*models.KeywordSearch, error) {
	query := `
		SELECT id, user_id, keyword, searched_at, last_refreshed
		FROM keyword_searches
		WHERE user_id = $1 AND LOWER(keyword) = LOWER($2) AND searched_at >= $3
		ORDER BY searched_at DESC
		LIMIT 1
	`

	var search models.KeywordSearch
	err := d.Pool.QueryRow(ctx, query, userID, keyword, since).Scan(
		&search.ID,
		&search.UserID,
		&search.Keyword,
		&search.SearchedAt,
		&search.LastRefreshed,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSearchNotFound
	}
	if err != nil {
		return nil, err
	}

	return &search, nil
}

// GetSearchForUser retrieves a keyword search by id, scoped to its owner.
// A search owned by another user is indistinguishable from a missing one.
func (d *DB) GetSearchForUser(ctx context.Context, id int64, userID uuid.UUID) (*models.KeywordSearch, error) {
	query := `
		SELECT id, user_id, keyword, searched_at, last_refreshed
		FROM keyword_searches
		WHERE id = $1 AND user_id = $2
	`

	var search models.KeywordSearch
	err := d.Pool.QueryRow(ctx, query, id, userID).Scan(
		&search.ID,
		&search.UserID,
		&search.Keyword,
		&search.SearchedAt,
		&search.LastRefreshed,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSearchNotFound
	}
	if err != nil {
		return nil, err
	}

	return &search, nil
}

// ReplaceSearch upserts the keyword search for (user, keyword) with full
// replace semantics: an existing search (case-insensitive match) gets its
// searched_at reset and all its articles deleted; otherwise a new search is
// created. Runs in a transaction so a concurrent reader never observes the
// timestamp update without the article clear.
func (d *DB) ReplaceSearch(ctx context.Context, userID uuid.UUID, keyword string) (*models.KeywordSearch, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var search models.KeywordSearch
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, keyword, searched_at, last_refreshed
		FROM keyword_searches
		WHERE user_id = $1 AND LOWER(keyword) = LOWER($2)
		FOR UPDATE
	`, userID, keyword).Scan(
		&search.ID,
		&search.UserID,
		&search.Keyword,
		&search.SearchedAt,
		&search.LastRefreshed,
	)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx, `
			INSERT INTO keyword_searches (user_id, keyword)
			VALUES ($1, $2)
			RETURNING id, user_id, keyword, searched_at, last_refreshed
		`, userID, keyword).Scan(
			&search.ID,
			&search.UserID,
			&search.Keyword,
			&search.SearchedAt,
			&search.LastRefreshed,
		)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := tx.QueryRow(ctx, `
			UPDATE keyword_searches SET searched_at = NOW()
			WHERE id = $1
			RETURNING searched_at
		`, search.ID).Scan(&search.SearchedAt); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM news_articles WHERE keyword_search_id = $1`, search.ID,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &search, nil
}

// TouchLastRefreshed sets the last_refreshed timestamp for a search.
func (d *DB) TouchLastRefreshed(ctx context.Context, id int64, refreshedAt time.Time) error {
	_, err := d.Pool.Exec(ctx,
		`UPDATE keyword_searches SET last_refreshed = $2 WHERE id = $1`,
		id, refreshedAt,
	)
	return err
}

// DeleteSearchForUser removes a tracked keyword and, via cascade, its
// articles. Scoped to the owner; deleting someone else's search is NotFound.
func (d *DB) DeleteSearchForUser(ctx context.Context, id int64, userID uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx,
		`DELETE FROM keyword_searches WHERE id = $1 AND user_id = $2`, id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSearchNotFound
	}
	return nil
}

// ListSearchesByUser returns all of a user's searches, most recent first.
func (d *DB) ListSearchesByUser(ctx context.Context, userID uuid.UUID) ([]models.KeywordSearch, error) {
	query := `
		SELECT id, user_id, keyword, searched_at, last_refreshed
		FROM keyword_searches
		WHERE user_id = $1
		ORDER BY searched_at DESC
	`

	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSearches(rows)
}

// DistinctKeywords returns the distinct lowercased keyword strings across all
// users' searches.
func (d *DB) DistinctKeywords(ctx context.Context) ([]string, error) {
	rows, err := d.Pool.Query(ctx,
		`SELECT DISTINCT LOWER(keyword) FROM keyword_searches ORDER BY 1`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var keyword string
		if err := rows.Scan(&keyword); err != nil {
			return nil, err
		}
		keywords = append(keywords, keyword)
	}

	return keywords, rows.Err()
}

// ListSearchesByKeyword returns every user's search for a keyword
// (case-insensitive).
func (d *DB) ListSearchesByKeyword(ctx context.Context, keyword string) ([]models.KeywordSearch, error) {
	query := `
		SELECT id, user_id, keyword, searched_at, last_refreshed
		FROM keyword_searches
		WHERE LOWER(keyword) = LOWER($1)
		ORDER BY id
	`

	rows, err := d.Pool.Query(ctx, query, keyword)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSearches(rows)
}

func scanSearches(rows pgx.Rows) ([]models.KeywordSearch, error) {
	var searches []models.KeywordSearch
	for rows.Next() {
		var s models.KeywordSearch
		if err := rows.Scan(&s.ID, &s.UserID, &s.Keyword, &s.SearchedAt, &s.LastRefreshed); err != nil {
			return nil, err
		}
		searches = append(searches, s)
	}
	return searches, rows.Err()
}
