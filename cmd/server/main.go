package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/strappedupmami/journeyatlas/internal/config"
	"github.com/strappedupmami/journeyatlas/internal/database"
	"github.com/strappedupmami/journeyatlas/internal/handlers"
	"github.com/strappedupmami/journeyatlas/internal/logging"
	"github.com/strappedupmami/journeyatlas/internal/middleware"
	"github.com/strappedupmami/journeyatlas/internal/services"
)

func main() {
	logging.Init()

	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	metrics := services.InitMetrics()

	// Snapshot store: Mongo when configured, SQLite by default, noop when
	// persistence is disabled.
	store := openSnapshotStore(cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.Printf("⚠️ Error closing snapshot store: %v", err)
		}
	}()

	persistService := services.NewPersistenceService(store, metrics)

	// Core services
	memoryEngine := services.NewMemoryEngine(persistService, metrics)
	checkinService := services.NewCheckinService(persistService)
	controlsService := services.NewControlsService(persistService)
	surveyService := services.NewSurveyService(memoryEngine, persistService)
	noteService := services.NewNoteService(memoryEngine, persistService)

	persistService.Register(memoryEngine)
	persistService.Register(checkinService)
	persistService.Register(controlsService)
	persistService.Register(surveyService)
	persistService.Register(noteService)

	// Restore owner state from the last run
	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 30*time.Second)
	err := persistService.Restore(restoreCtx, func(snap database.OwnerSnapshot) {
		memoryEngine.RestoreOwner(snap.OwnerID, snap.Memories)
		checkinService.RestoreOwner(snap.OwnerID, snap.Checkins)
		controlsService.RestoreOwner(snap.OwnerID, snap.Controls)
		surveyService.RestoreOwner(snap.OwnerID, snap.Survey)
		noteService.RestoreOwner(snap.OwnerID, snap.Notes)
	})
	cancelRestore()
	if err != nil {
		log.Printf("⚠️ Snapshot restore failed, starting empty: %v", err)
	}

	// Company status with optional hot reload
	companyService := services.NewCompanyStatusService(cfg.CompanyStatusFile)
	if err := companyService.Watch(); err != nil {
		log.Printf("⚠️ Company status watch disabled: %v", err)
	}
	defer companyService.Close()

	// Optional distributed feed cache
	var feedCache *services.FeedCacheService
	if cfg.RedisURL != "" {
		feedCache, err = services.NewFeedCacheService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Redis unavailable, using in-process cache only: %v", err)
			feedCache = nil
		} else {
			defer feedCache.Close()
		}
	}

	feedService := services.NewExecutionFeedService(
		memoryEngine, checkinService, noteService, controlsService,
		surveyService, companyService, feedCache, metrics, cfg.FeedGateMinutes,
	)

	// Background memory sweep
	maintenance, err := services.NewMaintenanceService(memoryEngine, cfg.MaintenanceCron)
	if err != nil {
		log.Fatalf("❌ Failed to create maintenance service: %v", err)
	}
	if err := maintenance.Start(); err != nil {
		log.Fatalf("❌ Failed to start maintenance service: %v", err)
	}

	// Handlers
	memoryHandler := handlers.NewMemoryHandler(memoryEngine, noteService, feedService)
	checkinHandler := handlers.NewCheckinHandler(checkinService, memoryEngine, feedService)
	controlsHandler := handlers.NewControlsHandler(controlsService, feedService)
	feedHandler := handlers.NewFeedHandler(feedService)
	surveyHandler := handlers.NewSurveyHandler(surveyService, feedService)
	noteHandler := handlers.NewNoteHandler(noteService, feedService)
	companyHandler := handlers.NewCompanyHandler(companyService)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "JourneyAtlas v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    4 * 1024 * 1024, // bulk imports carry up to 250 items
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("journeyatlas")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Rate limiting
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Public=%d/min, Auth=%d/min, Import=%d/min",
		rateLimitConfig.GlobalAPIMax,
		rateLimitConfig.PublicReadMax,
		rateLimitConfig.AuthenticatedMax,
		rateLimitConfig.ImportMax,
	)
	app.Use(middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,X-Owner-ID,X-Memory-Opt-In,X-Locale",
		AllowCredentials: allowedOrigins != "*",
	}))

	// Public endpoints
	app.Get("/health", handlers.HealthCheck)
	app.Get("/api/v1/company/status", middleware.PublicReadRateLimiter(rateLimitConfig), companyHandler.GetCompanyStatus)

	// Owner-scoped endpoints
	api := app.Group("/api/v1", middleware.Identity(), middleware.AuthenticatedRateLimiter(rateLimitConfig))

	api.Post("/memories", memoryHandler.IngestMemory)
	api.Get("/memories", memoryHandler.RetrieveMemories)
	api.Delete("/memories", memoryHandler.ClearMemories)
	api.Post("/memories/import", middleware.ImportRateLimiter(rateLimitConfig), memoryHandler.ImportMemories)

	api.Post("/checkins", checkinHandler.SubmitCheckin)
	api.Get("/checkins", checkinHandler.GetCheckinHistory)
	api.Get("/checkins/latest", checkinHandler.GetLatestCheckin)

	api.Get("/controls", controlsHandler.GetControls)
	api.Put("/controls", controlsHandler.UpdateControls)

	api.Get("/survey", surveyHandler.GetSurveyState)
	api.Post("/survey/answers", surveyHandler.SubmitSurveyAnswer)
	api.Post("/survey/complete", surveyHandler.CompleteSurvey)

	api.Get("/notes", noteHandler.ListNotes)
	api.Post("/notes", noteHandler.UpsertNote)
	api.Delete("/notes/:id", noteHandler.DeleteNote)

	api.Get("/feed", feedHandler.GetFeed)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		maintenance.Stop()

		// Let in-flight write-behind saves land before closing the store
		persistService.Flush()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func openSnapshotStore(cfg *config.Config) database.SnapshotStore {
	if cfg.MongoURI != "" {
		store, err := database.NewMongoStore(cfg.MongoURI)
		if err != nil {
			log.Printf("⚠️ MongoDB unavailable, falling back to SQLite: %v", err)
		} else {
			return store
		}
	}
	if cfg.SnapshotDB != "" {
		store, err := database.NewSQLiteStore(cfg.SnapshotDB)
		if err != nil {
			log.Printf("⚠️ SQLite unavailable, persistence disabled: %v", err)
		} else {
			return store
		}
	}
	log.Println("⚠️ Persistence disabled, owner state is memory-only")
	return database.NoopStore{}
}
