package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/stratum-be/internal/api"
	"github.com/isdelr/stratum-be/internal/auth"
	"github.com/isdelr/stratum-be/internal/config"
	"github.com/isdelr/stratum-be/internal/database"
	"github.com/isdelr/stratum-be/internal/logger"
	"github.com/isdelr/stratum-be/internal/monitoring"
	"github.com/isdelr/stratum-be/internal/services"
	"github.com/isdelr/stratum-be/internal/storage"
	"github.com/isdelr/stratum-be/internal/synthesis"
	"github.com/isdelr/stratum-be/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			log.Fatal().Msg("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-only-secret"
		log.Warn().Msg("JWT_SECRET not set, using an insecure development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	store, err := openStore(ctx, cfg, db)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to open storage")
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Set up the synthesis gateway
	provider, err := synthesis.NewProvider(ctx, synthesis.ProviderConfig{
		Name:          cfg.SynthesisProvider,
		Model:         cfg.SynthesisModel,
		GoogleAPIKey:  cfg.GoogleAPIKey,
		OpenAIAPIKey:  cfg.GroqAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize synthesis provider")
	}
	gateway := synthesis.NewGateway(provider, cfg.SynthesisTimeout, synthesis.NewMetrics(reg))
	log.Info().Str("provider", gateway.ProviderName()).Msg("Synthesis gateway ready")

	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tokens")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Set up services
	accounts := services.NewAccountService(store, auth.BcryptHasher{})
	sessions := services.NewSessionService(store, cfg.SessionTTL)
	eventService := services.NewEventService(db)
	progressService := services.NewProgressService(store, accounts, eventService, hub)
	roadmapService := services.NewRoadmapService(store, gateway, accounts, sessions, progressService, eventService, hub)

	// Set up and run the background stats updater
	statUpdater, err := monitoring.NewStatUpdater(15*time.Second, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize stat updater")
	}
	go statUpdater.Run()

	// Set up and run the background scheduler
	scheduler, err := monitoring.NewScheduler(cfg.SessionSweepSpec, sessions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	scheduler.Run()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Hub:            hub,
		Tokens:         tokens,
		Sessions:       sessions,
		Auth:           services.NewAuthService(accounts, sessions, tokens, eventService),
		Events:         eventService,
		Assessment:     services.NewAssessmentService(store),
		Roadmaps:       roadmapService,
		Progress:       progressService,
		Insights:       services.NewInsightService(store, gateway),
		Portfolio:      services.NewPortfolioService(store, gateway),
		Mentor:         services.NewMentorService(store, gateway),
		Concierge:      services.NewConciergeService(store, gateway),
		Stats:          statUpdater,
		Gatherer:       reg,
		Synthesis:      gateway.ProviderName(),
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	statUpdater.Stop() // Stop the monitoring service
	scheduler.Stop()   // Stop the scheduler

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

// openStore selects the key-value backend. The sqlite driver shares the
// application database.
func openStore(ctx context.Context, cfg *config.Config, db *sql.DB) (storage.Store, error) {
	switch cfg.StorageDriver {
	case "sqlite", "":
		return storage.NewSQLiteStore(db), nil
	case "redis":
		return storage.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "memory":
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
