// Command translate-bot runs the Discord translation mirror: it connects to
// the gateway, fans source messages out to per-language channels through the
// Gemini translator, and keeps mirrors synchronized across edits and deletes.
// A small HTTP server exposes liveness, status, and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/JonPark0/translate-bot/internal/config"
	"github.com/JonPark0/translate-bot/internal/discord"
	httpapi "github.com/JonPark0/translate-bot/internal/http"
	"github.com/JonPark0/translate-bot/internal/observability"
	"github.com/JonPark0/translate-bot/internal/repo"
	"github.com/JonPark0/translate-bot/internal/services"
	"github.com/JonPark0/translate-bot/internal/sysutil"
	"github.com/JonPark0/translate-bot/internal/translate"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	factory := func(ctx context.Context, apiKey string) (services.Translator, error) {
		return translate.NewClient(ctx, apiKey, cfg.GeminiModel, cfg.GeminiCallsPerS)
	}
	registry := services.NewRegistry(db, cfg.GeminiAPIKey, services.GateConfig{
		PerMinute:         cfg.Quota.PerMinute,
		PerDay:            cfg.Quota.PerDay,
		MaxMonthlyCostUSD: cfg.Quota.MaxMonthlyCostUSD,
		CostAlertUSD:      cfg.Quota.CostAlertUSD,
	}, factory, log.Logger)

	gateway, err := discord.NewGateway(cfg.DiscordToken, registry, db, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create discord gateway")
	}

	sync := services.NewSynchronizer(
		&services.GormMappingStore{DB: db},
		discord.NewSender(gateway.Session()),
		registry,
		log.Logger,
	)
	sync.TranslateTimeout = cfg.TranslateTimeout
	sync.DeliverTimeout = cfg.DeliverTimeout
	sync.CostPerCallUSD = cfg.Quota.CostPerCallUSD
	gateway.AttachSynchronizer(sync)

	// Health server.
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	httpapi.RegisterRoutes(router, db, registry, time.Now(), cfg)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server failed")
		}
	}()

	// Janitor: prune mappings past their retention so the store does not grow
	// without bound.
	go func() {
		ticker := time.NewTicker(cfg.JanitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := repo.PruneMappingsBefore(ctx, db, time.Now().Add(-cfg.MappingRetention))
				if err != nil {
					log.Error().Err(err).Msg("mapping prune failed")
				} else if n > 0 {
					log.Info().Int64("pruned", n).Msg("pruned expired message mappings")
				}
			}
		}
	}()

	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting translate-bot")
	if err := gateway.Start(ctx); err != nil {
		log.Error().Err(err).Msg("gateway stopped with error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}
