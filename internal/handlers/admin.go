package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"newstrack/internal/db"
)

// AdminHandler exposes the profile administration endpoints.
type AdminHandler struct {
	db *db.DB
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(database *db.DB) *AdminHandler {
	return &AdminHandler{db: database}
}

// ListProfiles returns every user profile with its owner's identity.
func (h *AdminHandler) ListProfiles(c fiber.Ctx) error {
	profiles, err := h.db.ListProfiles(c.Context())
	if err != nil {
		return err
	}
	return jsonSuccess(c, profiles)
}

// UpdateProfile changes a user's quota and/or block flag.
func (h *AdminHandler) UpdateProfile(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var body struct {
		KeywordQuota *int  `json:"keyword_quota"`
		IsBlocked    *bool `json:"is_blocked"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.KeywordQuota == nil && body.IsBlocked == nil {
		return jsonError(c, fiber.StatusBadRequest, "nothing to update")
	}
	if body.KeywordQuota != nil && *body.KeywordQuota < 0 {
		return jsonError(c, fiber.StatusBadRequest, "keyword_quota must be non-negative")
	}

	profile, err := h.db.UpdateProfile(c.Context(), userID, body.KeywordQuota, body.IsBlocked)
	if err != nil {
		if errors.Is(err, db.ErrProfileNotFound) {
			return jsonError(c, fiber.StatusNotFound, "user profile not found")
		}
		return err
	}

	return jsonSuccess(c, profile)
}
