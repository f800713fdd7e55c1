package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newstrack/internal/coordinator"
	"newstrack/internal/db"
	"newstrack/internal/handlers"
	"newstrack/internal/middleware"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, database *db.DB, coord *coordinator.Coordinator) error {
	authMiddleware := middleware.NewAuthMiddleware(database)

	searchHandler := handlers.NewSearchHandler(coord, database)
	historyHandler := handlers.NewHistoryHandler(database)
	adminHandler := handlers.NewAdminHandler(database)
	healthHandler := handlers.NewHealthHandler(database)

	// Auth routes - OIDC is required for all user-facing access
	if s.Cfg.OIDCIssuer == "" {
		log.Fatal("OIDC_ISSUER is required. All users must be authenticated.")
	}

	authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, database)
	if err != nil {
		return err
	}

	s.App.Get("/auth/login", authHandler.Login)
	s.App.Get("/auth/callback", authHandler.Callback)
	s.App.Get("/auth/logout", authHandler.Logout)

	// Search, refresh, and history
	s.App.Post("/api/search", authMiddleware.RequireAuth, searchHandler.Search)
	s.App.Post("/api/searches/:id/refresh", authMiddleware.RequireAuth, searchHandler.Refresh)
	s.App.Delete("/api/searches/:id", authMiddleware.RequireAuth, searchHandler.Delete)
	s.App.Get("/api/history", authMiddleware.RequireAuth, historyHandler.Show)

	// Admin routes (staff/superuser only)
	s.App.Get("/api/admin/profiles", authMiddleware.RequireAuth, authMiddleware.RequireStaff, adminHandler.ListProfiles)
	s.App.Put("/api/admin/profiles/:user_id", authMiddleware.RequireAuth, authMiddleware.RequireStaff, adminHandler.UpdateProfile)

	// Operational endpoints
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return nil
}
