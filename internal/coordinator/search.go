package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newstrack/internal/db"
	"newstrack/internal/models"
	"newstrack/internal/validation"
)

// SearchStatus distinguishes the two successful search outcomes.
type SearchStatus string

const (
	SearchSuccess           SearchStatus = "success"
	SearchNeedsConfirmation SearchStatus = "needs_confirmation"
)

// SearchResult is the outcome of a new keyword search. For
// SearchNeedsConfirmation it carries the existing recent search and its
// current articles; for SearchSuccess the freshly stored set.
type SearchResult struct {
	Status         SearchStatus
	Search         *models.KeywordSearch
	Articles       []models.NewsArticle
	RemainingQuota *int
}

// Search performs a new keyword search for the user.
//
// Policy is evaluated first and its failures propagate as-is: an
// *AccessDeniedError for blocked or over-quota users, db.ErrProfileNotFound
// for users without a profile. A search of the same keyword within the last
// 15 minutes returns SearchNeedsConfirmation without touching the network or
// the store unless forceRefresh is set. A failed provider call aborts with a
// *news.ClientError before any write. Otherwise the keyword search is
// upserted with full replace semantics and the fetched articles stored;
// individual article insert failures are logged and skipped.
func (c *Coordinator) Search(ctx context.Context, user *models.User, keyword string, forceRefresh bool) (*SearchResult, error) {
	decision, err := c.policy.CanSearch(ctx, user)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &AccessDeniedError{Reason: decision.Reason}
	}

	keyword = validation.NormalizeKeyword(keyword)
	if ok, msg := validation.ValidateKeyword(keyword); !ok {
		return nil, fmt.Errorf("invalid keyword: %s", msg)
	}

	if !forceRefresh {
		since := time.Now().Add(-RecencyWindow)
		recent, err := c.db.GetRecentSearch(ctx, user.ID, keyword, since)
		switch {
		case err == nil:
			articles, err := c.db.ListArticlesBySearch(ctx, recent.ID, db.ArticleFilters{})
			if err != nil {
				return nil, err
			}
			return &SearchResult{
				Status:         SearchNeedsConfirmation,
				Search:         recent,
				Articles:       articles,
				RemainingQuota: decision.RemainingQuota,
			}, nil
		case !errors.Is(err, db.ErrSearchNotFound):
			return nil, err
		}
	}

	// Fetch before any write so a provider failure leaves the old article
	// set intact.
	fetched, err := c.client.Fetch(ctx, keyword, nil)
	if err != nil {
		slog.Error("search: news fetch failed", "keyword", keyword, "error", err)
		return nil, err
	}

	search, err := c.db.ReplaceSearch(ctx, user.ID, keyword)
	if err != nil {
		return nil, err
	}

	stored := make([]models.NewsArticle, 0, len(fetched))
	for _, item := range fetched {
		article := articleFromNews(search.ID, item)
		if err := c.db.InsertArticle(ctx, &article); err != nil {
			// Partial writes are acceptable here: one bad article must not
			// lose the rest of the batch.
			slog.Warn("search: failed to store article",
				"keyword", keyword, "title", article.Title, "error", err)
			continue
		}
		stored = append(stored, article)
	}

	return &SearchResult{
		Status:         SearchSuccess,
		Search:         search,
		Articles:       stored,
		RemainingQuota: decision.RemainingQuota,
	}, nil
}
