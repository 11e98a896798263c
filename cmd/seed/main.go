package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/steve2482/simspeedserver/internal/config"
	"github.com/steve2482/simspeedserver/internal/db"
	"github.com/steve2482/simspeedserver/internal/middleware"
	"github.com/steve2482/simspeedserver/internal/repository"
	"github.com/steve2482/simspeedserver/internal/seed"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "simspeed-seed")
	log := middleware.Logger

	file := flag.String("file", cfg.SeedFile, "YAML channel catalog")
	flag.Parse()

	cat, err := seed.LoadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("load catalog")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()

	n, err := seed.Apply(ctx, repository.NewChannelRepo(pool), cat)
	if err != nil {
		log.Error().Err(err).Int("written", n).Msg("seed failed")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Int("channels", n).Str("file", *file).Msg("catalog seeded")
}
