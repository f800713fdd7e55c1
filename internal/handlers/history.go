package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"newstrack/internal/db"
	"newstrack/internal/models"
)

// HistoryHandler serves the user's search history with article filters.
type HistoryHandler struct {
	db *db.DB
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(database *db.DB) *HistoryHandler {
	return &HistoryHandler{db: database}
}

// searchWithArticles groups a keyword search with its filtered article subset.
type searchWithArticles struct {
	models.KeywordSearch
	Articles []models.NewsArticle `json:"articles"`
}

// Show returns the caller's searches newest-first, each with the article
// subset matching the optional date/source/language filters, plus the
// distinct sources and languages across all their articles for building
// filter choices. When any filter is active, searches whose filtered subset
// is empty are omitted.
func (h *HistoryHandler) Show(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	filters := db.ArticleFilters{
		Source:   c.Query("source", ""),
		Language: c.Query("language", ""),
	}
	if raw := c.Query("date", ""); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		filters.Date = &date
	}

	searches, err := h.db.ListSearchesByUser(c.Context(), user.ID)
	if err != nil {
		return err
	}

	results := make([]searchWithArticles, 0, len(searches))
	for _, search := range searches {
		articles, err := h.db.ListArticlesBySearch(c.Context(), search.ID, filters)
		if err != nil {
			return err
		}
		if filters.Active() && len(articles) == 0 {
			continue
		}
		results = append(results, searchWithArticles{
			KeywordSearch: search,
			Articles:      articles,
		})
	}

	sources, err := h.db.DistinctSources(c.Context(), user.ID)
	if err != nil {
		return err
	}
	languages, err := h.db.DistinctLanguages(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return jsonSuccess(c, fiber.Map{
		"searches":  results,
		"sources":   sources,
		"languages": languages,
		"filters": fiber.Map{
			"date":     c.Query("date", ""),
			"source":   filters.Source,
			"language": filters.Language,
		},
	})
}
