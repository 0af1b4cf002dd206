package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/acciojob/memory-game-faizvk/internal/config"
	"github.com/acciojob/memory-game-faizvk/internal/db"
	"github.com/acciojob/memory-game-faizvk/internal/httpserver"
	"github.com/acciojob/memory-game-faizvk/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	sqlDB, err := db.OpenMigrated(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
	}
	defer sqlDB.Close()

	mem := store.NewMemoryStore()
	srv, err := httpserver.New(mem, sqlDB, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}
	log.Info().Str("port", cfg.Port).
		Dur("matchDelay", cfg.MatchDelay).
		Dur("mismatchDelay", cfg.MismatchDelay).
		Int("maxPairs", cfg.MaxPairs).
		Dur("gameTTL", cfg.GameTTL).
		Msg("starting memory server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
