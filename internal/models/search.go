package models

import (
	"time"

	"github.com/google/uuid"
)

// KeywordSearch is one tracked keyword for one user. Keyword identity is
// case-insensitive and trimmed; the database enforces uniqueness per user on
// the lowercased form.
type KeywordSearch struct {
	ID            int64      `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Keyword       string     `json:"keyword"`
	SearchedAt    time.Time  `json:"searched_at"`
	LastRefreshed *time.Time `json:"last_refreshed,omitempty"`
}

// NewsArticle is one stored article under a keyword search. Within a search,
// (title, published_at) identifies an article for dedup purposes.
type NewsArticle struct {
	ID              int64     `json:"id"`
	KeywordSearchID int64     `json:"keyword_search_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	URL             string    `json:"url"`
	PublishedAt     time.Time `json:"published_at"`
	SourceName      string    `json:"source_name"`
	Language        string    `json:"language"`
}
