package coordinator

import (
	"context"
	"log/slog"
	"time"

	"newstrack/internal/models"
	"newstrack/internal/news"
)

// RefreshStatus distinguishes the refresh outcomes that are not errors.
type RefreshStatus string

const (
	RefreshSuccess     RefreshStatus = "success"
	RefreshRateLimited RefreshStatus = "rate_limited"
)

// RefreshResult is the outcome of a targeted refresh.
type RefreshResult struct {
	Status      RefreshStatus
	Search      *models.KeywordSearch
	NewArticles int
	RetryAfter  time.Duration // set for RefreshRateLimited
}

// Refresh fetches articles newer than the latest stored one for an existing
// keyword search and merges them without duplicates.
//
// The search must belong to the user; otherwise db.ErrSearchNotFound. A
// refresh within 15 minutes of the previous one returns RefreshRateLimited
// without a network call. A failed provider call returns a *news.ClientError
// and leaves last_refreshed untouched; otherwise last_refreshed is set even
// when zero new articles were found.
func (c *Coordinator) Refresh(ctx context.Context, user *models.User, searchID int64) (*RefreshResult, error) {
	search, err := c.db.GetSearchForUser(ctx, searchID, user.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if search.LastRefreshed != nil {
		if elapsed := now.Sub(*search.LastRefreshed); elapsed < RefreshCooldown {
			return &RefreshResult{
				Status:     RefreshRateLimited,
				Search:     search,
				RetryAfter: RefreshCooldown - elapsed,
			}, nil
		}
	}

	// Lower bound for the provider query. The provider may still return
	// older articles, so the per-article dedup below stays authoritative.
	from, err := c.db.LatestPublishedAt(ctx, search.ID)
	if err != nil {
		return nil, err
	}

	fetched, err := c.client.Fetch(ctx, search.Keyword, from)
	if err != nil {
		slog.Error("refresh: news fetch failed",
			"search_id", search.ID, "keyword", search.Keyword, "error", err)
		return nil, err
	}

	inserted := 0
	for _, item := range fetched {
		article := articleFromNews(search.ID, item)
		ok, err := c.db.InsertArticleIfNew(ctx, &article)
		if err != nil {
			slog.Warn("refresh: failed to store article",
				"search_id", search.ID, "title", article.Title, "error", err)
			continue
		}
		if ok {
			inserted++
		}
	}

	if err := c.db.TouchLastRefreshed(ctx, search.ID, now); err != nil {
		return nil, err
	}
	search.LastRefreshed = &now

	return &RefreshResult{
		Status:      RefreshSuccess,
		Search:      search,
		NewArticles: inserted,
	}, nil
}

func articleFromNews(searchID int64, item news.Article) models.NewsArticle {
	return models.NewsArticle{
		KeywordSearchID: searchID,
		Title:           item.Title,
		Description:     item.Description,
		URL:             item.URL,
		PublishedAt:     item.PublishedAt,
		SourceName:      item.SourceName,
		Language:        item.Language,
	}
}
