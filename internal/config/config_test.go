package config

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acciojob/memory-game-faizvk/internal/board"
	"github.com/acciojob/memory-game-faizvk/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5175", c.Port)
	assert.Equal(t, zerolog.InfoLevel, c.Level())
	assert.False(t, c.Production())

	opts, err := c.GameOptions()
	require.NoError(t, err)
	assert.Equal(t, game.DefaultOptions(), opts)
	assert.Equal(t, 30*time.Minute, c.GameTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MATCH_DELAY", "100ms")
	t.Setenv("MISMATCH_DELAY", "1s")
	t.Setenv("PAIRS_HARD", "12")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NODE_ENV", "production")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, c.Level())
	assert.True(t, c.Production())

	opts, err := c.GameOptions()
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, opts.MatchDelay)
	assert.Equal(t, time.Second, opts.MismatchDelay)
	assert.Equal(t, 12, opts.PairCounts[game.DifficultyHard])
}

func TestLoadRejectsDelayOrder(t *testing.T) {
	t.Setenv("MATCH_DELAY", "600ms")
	t.Setenv("MISMATCH_DELAY", "600ms")

	_, err := Load()
	assert.True(t, errors.Is(err, game.ErrDelayOrder), "got %v", err)
}

func TestLoadRejectsNonPositivePairs(t *testing.T) {
	t.Setenv("PAIRS_EASY", "0")

	_, err := Load()
	assert.True(t, errors.Is(err, board.ErrInvalidPairCount), "got %v", err)
}

func TestLoadMaxPairs(t *testing.T) {
	t.Setenv("MAX_PAIRS", "20")
	c, err := Load()
	require.NoError(t, err)
	opts, err := c.GameOptions()
	require.NoError(t, err)
	assert.Equal(t, 20, opts.MaxPairs)

	t.Setenv("MAX_PAIRS", "10") // below PAIRS_HARD
	_, err = Load()
	assert.True(t, errors.Is(err, board.ErrInvalidPairCount), "got %v", err)

	t.Setenv("MAX_PAIRS", strconv.Itoa(board.MaxPairCount+1))
	_, err = Load()
	assert.True(t, errors.Is(err, board.ErrInvalidPairCount), "got %v", err)
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("GAME_TTL", "0s")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("MATCH_DELAY", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	_, err := Load()
	assert.Error(t, err)
}
