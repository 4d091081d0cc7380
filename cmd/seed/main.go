package main

import (
	"context"
	"flag"

	"sweetshop/internal/auth"
	"sweetshop/internal/config"
	"sweetshop/internal/logger"
	"sweetshop/internal/repository"
)

func main() {
	file := flag.String("file", "", "path to a JSON catalogue (defaults to the built-in list)")
	url := flag.String("url", "", "URL of a JSON catalogue")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		l := logger.New("info", "console")
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("starting seed script")

	ctx := context.Background()
	store, err := repository.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("connected to database")

	created, err := ensureAdmin(ctx, store.Users, auth.NewPasswordHasher(cfg.BcryptCost),
		cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create admin")
	}
	if created {
		log.Info().Str("email", cfg.SeedAdminEmail).Msg("admin user created")
	}

	items, err := loadCatalogue(*url, *file)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalogue")
	}
	sweets := toSweets(items, log)
	if skipped := len(items) - len(sweets); skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("skipped invalid sweets")
	}

	seeded, updated, err := seedSweets(ctx, store.Sweets, sweets)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed sweets")
	}
	log.Info().
		Int("created", seeded).
		Int("updated", updated).
		Int("total", seeded+updated).
		Msg("seed completed successfully")
}
