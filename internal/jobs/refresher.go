// Package jobs contains background tasks driven by timers.
package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"newstrack/internal/db"
	"newstrack/internal/metrics"
	"newstrack/internal/models"
	"newstrack/internal/news"
)

// Fetcher is the subset of the news client the refresher needs.
type Fetcher interface {
	Fetch(ctx context.Context, keyword string, from *time.Time) ([]news.Article, error)
}

// Refresher periodically fetches fresh articles for every tracked keyword,
// independent of per-user refresh cooldowns.
type Refresher struct {
	db       *db.DB
	client   Fetcher
	interval time.Duration
	workers  int
}

// NewRefresher creates a batch refresher.
func NewRefresher(database *db.DB, client Fetcher, interval time.Duration, workers int) *Refresher {
	if workers <= 0 {
		workers = 1
	}
	return &Refresher{
		db:       database,
		client:   client,
		interval: interval,
		workers:  workers,
	}
}

// Start begins the background refresh loop. Runs once immediately, then on
// every tick until the context is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	log.Printf("Batch refresher started (interval: %v, workers: %d)", r.interval, r.workers)

	if err := r.RunOnce(ctx); err != nil {
		log.Printf("Batch refresher: run failed: %v", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Batch refresher stopped")
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				log.Printf("Batch refresher: run failed: %v", err)
			}
		}
	}
}

// RunOnce refreshes every distinct tracked keyword. Distinct keywords are
// processed concurrently; all searches sharing one keyword are updated
// serially by the worker holding that keyword, so the per-search dedup
// invariant is never raced. A failure for one keyword is logged and does not
// abort the rest; only a failure of the distinct-keyword lookup itself aborts
// the whole run.
func (r *Refresher) RunOnce(ctx context.Context) error {
	keywords, err := r.db.DistinctKeywords(ctx)
	if err != nil {
		metrics.RecordBatchRun("failed")
		return fmt.Errorf("failed to list distinct keywords: %w", err)
	}

	if len(keywords) == 0 {
		metrics.RecordBatchRun("success")
		return nil
	}

	log.Printf("Batch refresher: refreshing %d keywords", len(keywords))

	jobCh := make(chan string)
	var wg sync.WaitGroup

	workerCount := min(r.workers, len(keywords))
	for range workerCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for keyword := range jobCh {
				if err := r.refreshKeyword(ctx, keyword); err != nil {
					log.Printf("Batch refresher: keyword %q failed: %v", keyword, err)
				}
			}
		}()
	}

	for _, keyword := range keywords {
		if ctx.Err() != nil {
			break
		}
		jobCh <- keyword
	}
	close(jobCh)

	wg.Wait()

	metrics.RecordBatchRun("success")
	return nil
}

// refreshKeyword fetches a keyword once and merges the result into every
// user's search for it, with the same (title, published_at) dedup discipline
// the targeted refresh uses. Batch runs do not touch last_refreshed; that
// timestamp belongs to user-initiated refreshes.
func (r *Refresher) refreshKeyword(ctx context.Context, keyword string) error {
	fetched, err := r.client.Fetch(ctx, keyword, nil)
	if err != nil {
		return err
	}

	searches, err := r.db.ListSearchesByKeyword(ctx, keyword)
	if err != nil {
		return err
	}

	inserted := 0
	for _, search := range searches {
		for _, item := range fetched {
			article := models.NewsArticle{
				KeywordSearchID: search.ID,
				Title:           item.Title,
				Description:     item.Description,
				URL:             item.URL,
				PublishedAt:     item.PublishedAt,
				SourceName:      item.SourceName,
				Language:        item.Language,
			}
			ok, err := r.db.InsertArticleIfNew(ctx, &article)
			if err != nil {
				log.Printf("Batch refresher: failed to store article %q for search %d: %v",
					article.Title, search.ID, err)
				continue
			}
			if ok {
				inserted++
			}
		}
	}

	if inserted > 0 {
		metrics.RecordArticlesStored("batch", inserted)
	}
	return nil
}
