package main

import (
	"errors"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/steve2482/simspeedserver/internal/config"
	"github.com/steve2482/simspeedserver/internal/db"
	"github.com/steve2482/simspeedserver/internal/middleware"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "simspeed-migrate")
	log := middleware.Logger

	m, err := db.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("init migrator")
	}
	defer m.Close()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("migrate up")
		}
		log.Info().Msg("migrations applied")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("migrate down")
		}
		log.Info().Msg("migrations rolled back")
	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal().Err(err).Msg("read version")
		}
		log.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema version")
	default:
		log.Fatal().Str("command", cmd).Msg("unknown command (want up, down or version)")
	}
}
