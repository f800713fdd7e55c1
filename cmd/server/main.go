package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"newstrack/internal/config"
	"newstrack/internal/coordinator"
	"newstrack/internal/db"
	"newstrack/internal/jobs"
	"newstrack/internal/metrics"
	"newstrack/internal/news"
	"newstrack/internal/policy"
	"newstrack/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := config.Load()

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}
	yamlCfg.Apply(cfg)

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	metrics.Init()

	// News provider client
	newsClient := news.NewClient(news.Options{
		BaseURL:         cfg.NewsAPIBaseURL,
		APIKey:          cfg.NewsAPIKey,
		Timeout:         cfg.NewsClientTimeout,
		PageSize:        cfg.NewsPageSize,
		DefaultLanguage: cfg.NewsDefaultLanguage,
	})

	coord := coordinator.New(database, policy.New(database), newsClient)

	// Background batch refresh
	refresher := jobs.NewRefresher(database, newsClient, cfg.BatchRefreshInterval, cfg.BatchRefreshWorkers)
	go refresher.Start(ctx)

	// HTTP server
	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, database, coord); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
