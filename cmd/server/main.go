package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizmaster/internal/config"
	"quizmaster/internal/database"
	"quizmaster/internal/handlers"
	"quizmaster/internal/models"
	"quizmaster/internal/quiz"
	"quizmaster/internal/security"
	"quizmaster/internal/service"
	"quizmaster/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	partition, err := store.NewPartition(cfg.DatabaseType, cfg.UserStoreDir, db)
	if err != nil {
		log.Fatalf("Failed to set up question stores: %v", err)
	}

	backupService, err := service.NewBackupService(db, nil)
	if err != nil {
		log.Fatalf("Failed to create backup service: %v", err)
	}
	if _, err := backupService.SeedIfEmpty(cfg.SeedPath); err != nil {
		log.Printf("Warning: Failed to seed master question set: %v", err)
	}
	if count, err := backupService.Master().Count(); err == nil && count < models.BatchSize {
		log.Printf("Warning: master question set has %d questions; quizzes need at least %d", count, models.BatchSize)
	}

	questionStore := store.New(partition, backupService.Master(), nil)
	quizService := service.NewQuizService(questionStore, quiz.NewSampler(nil))

	mailer, err := service.NewResultsMailer(context.Background(), cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Printf("Warning: results mailer unavailable: %v", err)
	}

	signer, err := security.NewTokenSigner(cfg.TokenSecret, cfg.SessionDuration)
	if err != nil {
		log.Fatalf("Failed to create token signer: %v", err)
	}
	csrf, err := security.NewCSRFGenerator(signer.DeriveKey("csrf"))
	if err != nil {
		log.Fatalf("Failed to create CSRF generator: %v", err)
	}
	limiter := security.NewRateLimiter(cfg.RateLimit, time.Minute)
	defer limiter.Stop()

	// Initialize handlers
	middleware := handlers.NewMiddleware(signer, csrf, limiter)
	sessions := handlers.NewSessionRegistry(quizService, cfg.SessionDuration)
	quizHandler := handlers.NewQuizHandler(quizService, sessions, mailer, middleware)
	wsHandler := handlers.NewWSHandler(quizHandler, middleware)

	// Setup routes
	mux := http.NewServeMux()
	quizHandler.Register(mux)
	wsHandler.Register(mux)

	handler := handlers.Logging(middleware.Identify(mux))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(sessions)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// cleanupExpiredSessions periodically removes idle sessions
func cleanupExpiredSessions(sessions *handlers.SessionRegistry) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if removed := sessions.CleanupExpired(); removed > 0 {
			log.Printf("Expired sessions cleaned up: %d", removed)
		}
	}
}
