// internal/config/config.go
//
// Process configuration for the memory game server.
// Values come from the environment (optionally seeded from a .env file by
// main via godotenv) and are parsed into Config with caarlos0/env.
//
// Environment variables:
//   PORT, LOG_LEVEL, DATABASE_PATH
//   MATCH_DELAY, MISMATCH_DELAY            (Go durations, e.g. 350ms)
//   PAIRS_EASY, PAIRS_NORMAL, PAIRS_HARD   (pair counts per difficulty)
//   MAX_PAIRS                              (largest custom board)
//   GAME_TTL                               (idle time before a live game is dropped)
//   JWT_SECRET, JWT_EXPIRES_DAYS, COOKIE_NAME, NODE_ENV
//   CLIENT_ORIGIN, DAILY_SALT

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/acciojob/memory-game-faizvk/internal/game"
)

// Config holds every recognized setting.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/memory.db"`

	MatchDelay    time.Duration `env:"MATCH_DELAY" envDefault:"350ms"`
	MismatchDelay time.Duration `env:"MISMATCH_DELAY" envDefault:"600ms"`
	PairsEasy     int           `env:"PAIRS_EASY" envDefault:"4"`
	PairsNormal   int           `env:"PAIRS_NORMAL" envDefault:"8"`
	PairsHard     int           `env:"PAIRS_HARD" envDefault:"16"`
	MaxPairs      int           `env:"MAX_PAIRS" envDefault:"64"`
	GameTTL       time.Duration `env:"GAME_TTL" envDefault:"30m"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"memory_token"`
	Environment    string `env:"NODE_ENV" envDefault:"development"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	DailySalt      string `env:"DAILY_SALT" envDefault:"local_dev_salt"`
}

// Load parses the environment and validates the game settings.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := c.GameOptions(); err != nil {
		return Config{}, err
	}
	if c.GameTTL <= 0 {
		return Config{}, fmt.Errorf("GAME_TTL must be positive, got %s", c.GameTTL)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return c, nil
}

// GameOptions converts the timing and difficulty settings into validated
// engine options.
func (c Config) GameOptions() (game.Options, error) {
	opts := game.Options{
		MatchDelay:    c.MatchDelay,
		MismatchDelay: c.MismatchDelay,
		PairCounts: map[game.Difficulty]int{
			game.DifficultyEasy:   c.PairsEasy,
			game.DifficultyNormal: c.PairsNormal,
			game.DifficultyHard:   c.PairsHard,
		},
		MaxPairs: c.MaxPairs,
	}
	if err := opts.Validate(); err != nil {
		return game.Options{}, fmt.Errorf("game options: %w", err)
	}
	return opts, nil
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c Config) Production() bool { return c.Environment == "production" }

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
