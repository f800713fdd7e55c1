package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"newstrack/internal/coordinator"
	"newstrack/internal/db"
	"newstrack/internal/metrics"
	"newstrack/internal/news"
	"newstrack/internal/validation"
)

// SearchHandler exposes keyword search, refresh, and deletion.
type SearchHandler struct {
	coord *coordinator.Coordinator
	db    *db.DB
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(coord *coordinator.Coordinator, database *db.DB) *SearchHandler {
	return &SearchHandler{coord: coord, db: database}
}

// Search performs a new keyword search for the authenticated user.
func (h *SearchHandler) Search(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var body struct {
		Keyword      string `json:"keyword"`
		ForceRefresh bool   `json:"force_refresh"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	keyword := validation.NormalizeKeyword(body.Keyword)
	if ok, msg := validation.ValidateKeyword(keyword); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	result, err := h.coord.Search(c.Context(), user, keyword, body.ForceRefresh)
	if err != nil {
		return h.searchError(c, err)
	}

	metrics.RecordSearch(string(result.Status))
	if result.Status == coordinator.SearchSuccess {
		metrics.RecordArticlesStored("search", len(result.Articles))
	}

	return jsonSuccess(c, fiber.Map{
		"outcome":         result.Status,
		"search":          result.Search,
		"articles":        result.Articles,
		"remaining_quota": result.RemainingQuota,
	})
}

func (h *SearchHandler) searchError(c fiber.Ctx, err error) error {
	var denied *coordinator.AccessDeniedError
	var clientErr *news.ClientError

	switch {
	case errors.As(err, &denied):
		metrics.RecordSearch("access_denied")
		return jsonError(c, fiber.StatusForbidden, string(denied.Reason))
	case errors.Is(err, db.ErrProfileNotFound):
		metrics.RecordSearch("profile_not_found")
		return jsonError(c, fiber.StatusNotFound, "user profile not found")
	case errors.As(err, &clientErr):
		metrics.RecordSearch("failed")
		return jsonError(c, fiber.StatusBadGateway, "news provider request failed")
	default:
		metrics.RecordSearch("failed")
		return err
	}
}

// Refresh performs a targeted refresh of one keyword search.
func (h *SearchHandler) Refresh(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	searchID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid search id")
	}

	result, err := h.coord.Refresh(c.Context(), user, searchID)
	if err != nil {
		var clientErr *news.ClientError
		switch {
		case errors.Is(err, db.ErrSearchNotFound):
			metrics.RecordRefresh("not_found")
			return jsonError(c, fiber.StatusNotFound, "keyword search not found")
		case errors.As(err, &clientErr):
			metrics.RecordRefresh("failed")
			return jsonError(c, fiber.StatusBadGateway, "news provider request failed")
		default:
			metrics.RecordRefresh("failed")
			return err
		}
	}

	metrics.RecordRefresh(string(result.Status))

	if result.Status == coordinator.RefreshRateLimited {
		c.Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
		return jsonError(c, fiber.StatusTooManyRequests,
			"please wait before refreshing this keyword again")
	}

	metrics.RecordArticlesStored("refresh", result.NewArticles)
	return jsonSuccess(c, fiber.Map{
		"outcome":      result.Status,
		"search":       result.Search,
		"new_articles": result.NewArticles,
	})
}

// Delete removes one of the user's tracked keywords and its articles.
func (h *SearchHandler) Delete(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	searchID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid search id")
	}

	if err := h.db.DeleteSearchForUser(c.Context(), searchID, user.ID); err != nil {
		if errors.Is(err, db.ErrSearchNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword search not found")
		}
		return err
	}

	return jsonSuccess(c, fiber.Map{"deleted": searchID})
}
