package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"newstrack/internal/models"
)

// InsertArticle stores one article under its keyword search. Callers treat a
// failure here as a partial-write warning, not an abort.
func (d *DB) InsertArticle(ctx context.Context, article *models.NewsArticle) error {
	query := `
		INSERT INTO news_articles (keyword_search_id, title, description, url, published_at, source_name, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	return d.Pool.QueryRow(ctx, query,
		article.KeywordSearchID,
		article.Title,
		nullIfEmpty(article.Description),
		article.URL,
		article.PublishedAt,
		article.SourceName,
		article.Language,
	).Scan(&article.ID)
}

// InsertArticleIfNew stores an article unless one with the same title and
// published_at already exists under the same keyword search. Reports whether
// a row was inserted.
func (d *DB) InsertArticleIfNew(ctx context.Context, article *models.NewsArticle) (bool, error) {
	query := `
		INSERT INTO news_articles (keyword_search_id, title, description, url, published_at, source_name, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (keyword_search_id, title, published_at) DO NOTHING
	`

	tag, err := d.Pool.Exec(ctx, query,
		article.KeywordSearchID,
		article.Title,
		nullIfEmpty(article.Description),
		article.URL,
		article.PublishedAt,
		article.SourceName,
		article.Language,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// LatestPublishedAt returns the most recent publish time among a search's
// articles, or nil when it has none.
func (d *DB) LatestPublishedAt(ctx context.Context, searchID int64) (*time.Time, error) {
	var published time.Time
	err := d.Pool.QueryRow(ctx, `
		SELECT published_at FROM news_articles
		WHERE keyword_search_id = $1
		ORDER BY published_at DESC
		LIMIT 1
	`, searchID).Scan(&published)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &published, nil
}

// ArticleFilters narrows the article subset returned for history queries.
type ArticleFilters struct {
	Date     *time.Time // published on this calendar date
	Source   string     // case-insensitive substring of source_name
	Language string     // exact match
}

// Active reports whether any filter is set.
func (f ArticleFilters) Active() bool {
	return f.Date != nil || f.Source != "" || f.Language != ""
}

// ListArticlesBySearch returns a search's articles, optionally filtered,
// newest publish time first.
func (d *DB) ListArticlesBySearch(ctx context.Context, searchID int64, filters ArticleFilters) ([]models.NewsArticle, error) {
	query := `
		SELECT id, keyword_search_id, title, COALESCE(description, ''), url, published_at, source_name, language
		FROM news_articles
		WHERE keyword_search_id = $1
		  AND ($2::date IS NULL OR published_at::date = $2::date)
		  AND ($3::text IS NULL OR source_name ILIKE '%' || $3 || '%')
		  AND ($4::text IS NULL OR language = $4)
		ORDER BY published_at DESC, id
	`

	rows, err := d.Pool.Query(ctx, query,
		searchID,
		filters.Date,
		nullIfEmpty(filters.Source),
		nullIfEmpty(filters.Language),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []models.NewsArticle
	for rows.Next() {
		var a models.NewsArticle
		if err := rows.Scan(
			&a.ID, &a.KeywordSearchID, &a.Title, &a.Description,
			&a.URL, &a.PublishedAt, &a.SourceName, &a.Language,
		); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	return articles, rows.Err()
}

// DistinctSources returns the distinct source names across all of a user's
// articles, for building filter choices.
func (d *DB) DistinctSources(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return d.distinctArticleValues(ctx, userID, "source_name")
}

// DistinctLanguages returns the distinct languages across all of a user's
// articles.
func (d *DB) DistinctLanguages(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return d.distinctArticleValues(ctx, userID, "language")
}

func (d *DB) distinctArticleValues(ctx context.Context, userID uuid.UUID, column string) ([]string, error) {
	// column is one of two compile-time constants, never user input.
	query := `
		SELECT DISTINCT a.` + column + `
		FROM news_articles a
		JOIN keyword_searches s ON s.id = a.keyword_search_id
		WHERE s.user_id = $1
		ORDER BY 1
	`

	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return values, rows.Err()
}
