package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flashdeck/internal/audio"
	"flashdeck/internal/config"
	"flashdeck/internal/database"
	"flashdeck/internal/handlers"
	"flashdeck/internal/repository"
	"flashdeck/internal/security"
	"flashdeck/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.TokenSecret == "" {
		log.Fatal("TOKEN_SECRET is required")
	}
	if cfg.APIKeyHash == "" {
		log.Fatal("API_KEY_HASH is required")
	}

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Seed starter deck on first run
	if err := db.SeedStarterDeck(); err != nil {
		log.Printf("Warning: Failed to seed starter deck: %v", err)
	}

	// Initialize repositories
	deckRepo := repository.NewDeckRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Initialize outbound integrations
	var reportService *service.ReportService
	if cfg.ReportsEnabled {
		reportService, err = service.NewReportService(cfg.AWSRegion, cfg.ReportFromEmail, cfg.ReportFromName)
		if err != nil {
			log.Fatalf("Failed to initialize report service: %v", err)
		}
	}
	statementService := service.NewStatementService(
		cfg.LRSEndpoint, cfg.LRSTokenURL, cfg.LRSClientID, cfg.LRSClientSecret,
		cfg.StatementSigningSecret)

	// Optional text-to-speech for card prompts
	var ttsService *audio.TTSService
	if cfg.AudioDir != "" {
		if err := os.MkdirAll(cfg.AudioDir, 0755); err != nil {
			log.Fatalf("Failed to create audio directory: %v", err)
		}
		ttsService = audio.NewTTSService(cfg.AudioDir)
	}

	// Initialize services
	deckService := service.NewDeckService(db, deckRepo, ttsService)
	sessionService := service.NewSessionService(deckRepo, sessionRepo, eventRepo, reportService, statementService, nil)
	defer sessionService.CloseAll()

	// Initialize security
	tokens := security.NewTokenIssuer(cfg.TokenSecret, cfg.TokenDuration)
	limiter := security.NewRateLimiter(60, time.Minute)

	// Wire routes
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux,
		handlers.NewMiddleware(tokens, cfg.APIKeyHash, limiter),
		handlers.NewDeckHandler(deckService),
		handlers.NewSessionHandler(sessionService, tokens))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}
