package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/steve2482/simspeedserver/internal/config"
	"github.com/steve2482/simspeedserver/internal/db"
	"github.com/steve2482/simspeedserver/internal/handler"
	"github.com/steve2482/simspeedserver/internal/metrics"
	"github.com/steve2482/simspeedserver/internal/middleware"
	"github.com/steve2482/simspeedserver/internal/repository"
	"github.com/steve2482/simspeedserver/internal/router"
	"github.com/steve2482/simspeedserver/internal/service"
	"github.com/steve2482/simspeedserver/internal/youtube"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "simspeed-server")
	log := middleware.Logger

	if cfg.YouTubeAPIKey == "" {
		log.Warn().Msg("YOUTUBE_API_KEY is not set, upstream calls will be rejected")
	}
	if cfg.IsProduction() && cfg.SessionSecret == "secret" {
		log.Fatal().Msg("SESSION_SECRET must be set in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	metrics.Register(pool)

	sessionStore, rdb := service.NewSessionStore(cfg.RedisURL, log)
	if rdb != nil {
		defer rdb.Close()
	}

	// Repositories
	channelRepo := repository.NewChannelRepo(pool)
	userRepo := repository.NewUserRepo(pool)
	favoriteRepo := repository.NewFavoriteRepo(pool)

	// Services
	yt := youtube.NewClient(cfg.YouTubeBaseURL, cfg.YouTubeAPIKey, cfg.UpstreamTimeout)
	broadcastSvc := service.NewBroadcastService(channelRepo, yt, log)
	channelSvc := service.NewChannelService(channelRepo)
	favoriteSvc := service.NewFavoriteService(favoriteRepo, log)
	userSvc := service.NewUserService(userRepo, favoriteRepo)
	sessionSvc := service.NewSessionService(sessionStore, cfg.SessionSecret, cfg.SessionTTL)

	favoriteWorker := service.NewFavoriteWorker(favoriteRepo, cfg.ReconcileInterval, log)
	go favoriteWorker.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "SimSpeed API",
		ServerHeader: "SimSpeed",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
	})

	router.Setup(app, &router.Handlers{
		Broadcast: handler.NewBroadcastHandler(broadcastSvc),
		Channel:   handler.NewChannelHandler(channelSvc),
		User:      handler.NewUserHandler(userSvc, sessionSvc, cfg.IsProduction()),
		Favorite:  handler.NewFavoriteHandler(favoriteSvc),
		Health:    handler.NewHealthHandler(pool, rdb, version),
	}, sessionSvc, cfg.CORSOrigins, cfg.IsProduction())

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		favoriteWorker.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("SimSpeed server starting")
	if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
