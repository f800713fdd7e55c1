package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"newstrack/internal/db"
	"newstrack/internal/models"
	"newstrack/internal/news"
	"newstrack/internal/policy"
	"newstrack/internal/testutil"
)

// fakeFetcher is a scripted news client.
type fakeFetcher struct {
	articles    []news.Article
	err         error
	calls       int
	lastKeyword string
	lastFrom    *time.Time
}

func (f *fakeFetcher) Fetch(_ context.Context, keyword string, from *time.Time) ([]news.Article, error) {
	f.calls++
	f.lastKeyword = keyword
	f.lastFrom = from
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func newsArticle(title string, published time.Time) news.Article {
	return news.Article{
		Title:       title,
		Description: "about " + title,
		URL:         "https://example.com/" + title,
		PublishedAt: published,
		SourceName:  "Test Source",
		Language:    "en",
	}
}

func setup(t *testing.T, fetcher Fetcher) (*db.DB, *Coordinator, func()) {
	t.Helper()
	database, cleanup := testutil.TestDB(t)
	coord := New(database, policy.New(database), fetcher)
	return database, coord, cleanup
}

func regularUser(t *testing.T, database *db.DB, sub string, quota int) *models.User {
	t.Helper()
	id := testutil.CreateTestUser(t, database, sub, false, false)
	testutil.CreateTestProfile(t, database, id, quota, false)
	return &models.User{ID: id, Sub: sub}
}

func TestSearch_QuotaExceededWithoutFetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	database, coord, cleanup := setup(t, fetcher)
	defer cleanup()

	ctx := context.Background()
	user := regularUser(t, database, "quota-user", 2)

	fetcher.articles = []news.Article{newsArticle("a", time.Now().UTC())}
	if _, err := coord.Search(ctx, user, "A", false); err != nil {
		t.Fatalf("Search(A) error = %v", err)
	}
	if _, err := coord.Search(ctx, user, "B", false); err != nil {
		t.Fatalf("Search(B) error = %v", err)
	}

	callsBefore := fetcher.calls
	_, err := coord.Search(ctx, user, "C", false)

	var denied *AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("Search(C) error = %v, want *AccessDeniedError", err)
	}
	if denied.Reason != policy.ReasonQuotaExceeded {
		t.Errorf("Search(C) reason = %q, want quota_exceeded", denied.Reason)
	}
	if fetcher.calls != callsBefore {
		t.Error("Search(C) contacted the news client despite exhausted quota")
	}
}

func TestSearch_MissingProfile(t *testing.T) {
	fetcher := &fakeFetcher{}
	database, coord, cleanup := setup(t, fetcher)
	defer cleanup()

	id := testutil.CreateTestUser(t, database, "profileless", false, false)
	user := &models.User{ID: id, Sub: "profileless"}

	_, err := coord.Search(context.Background(), user, "elections", false)
	if !errors.Is(err, db.ErrProfileNotFound) {
		t.Errorf("Search() error = %v, want ErrProfileNotFound", err)
	}
	if fetcher.calls != 0 {
		t.Error("Search() contacted the news client without a profile")
	}
}

func TestSearch_RecentNeedsConfirmation(t *testing.T) {
	fetcher := &fakeFetcher{
		articles: []news.Article{newsArticle("story", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
	}
	database, coord, cleanup := setup(t, fetcher)
	defer cleanup()

	ctx := context.Background()
	user := regularUser(t, database, "recent-user", 10)

	first, err := coord.Search(ctx, user, "Elections", false)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if first.Status != SearchSuccess {
		t.Fatalf("Search() status = %q, want success", first.Status)
	}

	callsBefore := fetcher.calls
	second, err := coord.Search(ctx, user, "elections", false)
	if err != nil {
		t.Fatalf("repeat Search() error = %v", err)
	}
	if second.Status != SearchNeedsConfirmation {
		t.Errorf("repeat Search() status = %q, want needs_confirmation", second.Status)
	}
	if second.Search.ID != first.Search.ID {
		t.Errorf("repeat Search() record = %d, want %d", second.Search.ID, first.Search.ID)
	}
	if len(second.Articles) != 1 {
		t.Errorf("repeat Search() carried %d articles, want 1", len(second.Articles))
	}
	if fetcher.calls != callsBefore {
		t.Error("repeat Search() contacted the news client")
	}

	// No writes: searched_at unchanged.
	stored, err := database.GetSearchForUser(ctx, first.Search.ID, user.ID)
	if err != nil {
		t.Fatalf("GetSearchForUser() error = %v", err)
	}
	if !stored.SearchedAt.Equal(first.Search.SearchedAt) {
		t.Error("repeat Search() modified searched_at")
	}
}

func TestSearch_TrimAndCaseResolveSameRecord(t *testing.T) {
	fetcher := &fakeFetcher{}
	database, coord, cleanup := setup(t, fetcher)
	defer cleanup()

	ctx := context.Background()
	user := regularUser(t, database, "normalize-user", 10)

	first, err := coord.Search(ctx, user, "  Elections  ", true)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if fetcher.lastKeyword != "Elections" {
		t.Errorf("Search() queried keyword %q, want trimmed %q", fetcher.lastKeyword, "Elections")
	}

	second, err := coord.Search(ctx, user, "elections", true)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if second.Search.ID != first.Search.ID {
		t.Errorf("Search() resolved to record %d, want %d", second.Search.ID, first.Search.ID)
	}

	count, _ := database.CountSearchesByUser(ctx, user.ID)
	if count != 1 {
		t.Errorf("CountSearchesByUser() = %d, want 1", count)
	}
}

func TestSearch_ForceReplacesArticles(t *testing.T) {
	fetcher := &fakeFetcher{
		articles: []news.Article{
			newsArticle("old-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			newsArticle("old-2", time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)),
		},
	}
	database, coord, cleanup := setup(t, fetcher)
	defer cleanup()

	ctx := context.Background()
	user := regularUser(t, database, "replace-user", 10)

	first, err := coord.Search(ctx, user, "Elections", false)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(first.Articles) != 2 {
		t.Fatalf("Search() stored %d articles, want 2", len(first.Articles))
	}

	fetcher.articles = []news.Article{
		newsArticle("new-1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
	}

	second, err := coord.Search(ctx, user, "Elections", true)
	if err != nil {
		t.Fatalf("force Search() error = %v", err)
	}
	if second.Status != SearchSuccess {
		t.Fatalf("force Search() status = %q", second.Status)
	}

	articles, err := database.ListArticlesBySearch(ctx, second.Search.ID, db.ArticleFilters{})
	if err != nil {
		t.Fatalf("ListArticlesBySearch() error = %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("force Search() left %d articles, want 1 (replace, not append)", len(articles))
	}
	if articles[0].Title != "new-1" {
		t.Errorf("force Search() kept %q, want new-1", articles[0].Title)
	}
}

func TestSearch_ClientFailureLeavesOldArticles(t *testing.T) {
	fetcher := &fakeFetcher{
		articles: []news.Article{newsArticle("keeper", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
	}
	database, coord, cleanup := setup(t, fetcher)
	defer cleanup()

	ctx := context.Background()
	user := regularUser(t, database, "fail-user", 10)

	first, err := coord.Search(ctx, user, "Elections", false)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	fetcher.err = &news.ClientError{Kind: news.KindBadStatus, Status: 500}

	_, err = coord.Search(ctx, user, "Elections", true)
	var clientErr *news.ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("force Search() error = %v, want *news.ClientError", err)
	}

	// The failed fetch happened before any write: the old set survives.
	articles, err := database.ListArticlesBySearch(ctx, first.Search.ID, db.ArticleFilters{})
	if err != nil {
		t.Fatalf("ListArticlesBySearch() error = %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "keeper" {
		t.Errorf("force Search() failure disturbed stored articles: %v", articles)
	}
}

func TestRefresh_NotFoundAndScoping(t *testing.T) {
	fetcher := &fakeFetcher{}
	database, coord, cleanup := setup(t, fetcher)
	defer cleanup()

	ctx := context.Background()
	owner := regularUser(t, database, "refresh-owner", 10)
	stranger := regularUser(t, database, "refresh-stranger", 10)

	result, err := coord.Search(ctx, owner, "Elections", false)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if _, err := coord.Refresh(ctx, stranger, result.Search.ID); !errors.Is(err, db.ErrSearchNotFound) {
		t.Errorf("Refresh() by stranger error = %v, want ErrSearchNotFound", err)
	}
	if _, err := coord.Refresh(ctx, owner, result.Search.ID+12345); !errors.Is(err, db.ErrSearchNotFound) {
		t.Errorf("Refresh() of missing id error = %v, want ErrSearchNotFound", err)
	}
}

func TestRefresh_CooldownRateLimited(t *testing.T) {
	fetcher := &fakeFetcher{}
	database, coord, cleanup := setup(t, fetcher)
	defer cleanup()

	ctx := context.Background()
	user := regularUser(t, database, "cooldown-user", 10)

	search, err := coord.Search(ctx, user, "Elections", false)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	first, err := coord.Refresh(ctx, user, search.Search.ID)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if first.Status != RefreshSuccess {
		t.Fatalf("Refresh() status = %q, want success", first.Status)
	}

	callsBefore := fetcher.calls
	second, err := coord.Refresh(ctx, user, search.Search.ID)
	if err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	if second.Status != RefreshRateLimited {
		t.Errorf("second Refresh() status = %q, want rate_limited", second.Status)
	}
	if second.RetryAfter <= 0 {
		t.Errorf("second Refresh() retry_after = %v, want > 0", second.RetryAfter)
	}
	if fetcher.calls != callsBefore {
		t.Error("second Refresh() contacted the news client during cooldown")
	}
}

func TestRefresh_DedupAndFromDate(t *testing.T) {
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	fetcher := &fakeFetcher{
		articles: []news.Article{newsArticle("existing", jan1)},
	}
	database, coord, cleanup := setup(t, fetcher)
	defer cleanup()

	ctx := context.Background()
	user := regularUser(t, database, "dedup-user", 10)

	result, err := coord.Search(ctx, user, "Elections", false)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	searchID := result.Search.ID

	// Last refresh was 20 minutes ago: cooldown has passed.
	stale := time.Now().Add(-20 * time.Minute)
	if err := database.TouchLastRefreshed(ctx, searchID, stale); err != nil {
		t.Fatalf("TouchLastRefreshed() error = %v", err)
	}

	// Provider returns one duplicate and one genuinely new article.
	fetcher.articles = []news.Article{
		newsArticle("existing", jan1),
		newsArticle("fresh", jan2),
	}

	refresh, err := coord.Refresh(ctx, user, searchID)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refresh.Status != RefreshSuccess {
		t.Fatalf("Refresh() status = %q", refresh.Status)
	}
	if refresh.NewArticles != 1 {
		t.Errorf("Refresh() new articles = %d, want 1", refresh.NewArticles)
	}

	// from lower bound was the latest stored publish time.
	if fetcher.lastFrom == nil || !fetcher.lastFrom.Equal(jan1) {
		t.Errorf("Refresh() from = %v, want %v", fetcher.lastFrom, jan1)
	}

	articles, _ := database.ListArticlesBySearch(ctx, searchID, db.ArticleFilters{})
	if len(articles) != 2 {
		t.Errorf("Refresh() left %d articles, want 2", len(articles))
	}

	// last_refreshed moved forward even though one article was a duplicate.
	stored, _ := database.GetSearchForUser(ctx, searchID, user.ID)
	if stored.LastRefreshed == nil || !stored.LastRefreshed.After(stale) {
		t.Error("Refresh() did not advance last_refreshed")
	}
}

func TestRefresh_ZeroNewArticlesStillTouches(t *testing.T) {
	fetcher := &fakeFetcher{}
	database, coord, cleanup := setup(t, fetcher)
	defer cleanup()

	ctx := context.Background()
	user := regularUser(t, database, "zero-user", 10)

	result, err := coord.Search(ctx, user, "Elections", false)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	refresh, err := coord.Refresh(ctx, user, result.Search.ID)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refresh.NewArticles != 0 {
		t.Errorf("Refresh() new articles = %d, want 0", refresh.NewArticles)
	}

	stored, _ := database.GetSearchForUser(ctx, result.Search.ID, user.ID)
	if stored.LastRefreshed == nil {
		t.Error("Refresh() with zero new articles did not set last_refreshed")
	}
}

func TestRefresh_ClientFailureSkipsTouch(t *testing.T) {
	fetcher := &fakeFetcher{}
	database, coord, cleanup := setup(t, fetcher)
	defer cleanup()

	ctx := context.Background()
	user := regularUser(t, database, "fail-refresh", 10)

	result, err := coord.Search(ctx, user, "Elections", false)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	fetcher.err = &news.ClientError{Kind: news.KindTimeout}

	_, err = coord.Refresh(ctx, user, result.Search.ID)
	var clientErr *news.ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("Refresh() error = %v, want *news.ClientError", err)
	}

	stored, _ := database.GetSearchForUser(ctx, result.Search.ID, user.ID)
	if stored.LastRefreshed != nil {
		t.Error("failed Refresh() set last_refreshed")
	}
}
