package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/acciojob/memory-game-faizvk/internal/board"
)

var (
	// ErrDelayOrder is returned when the match delay is not strictly shorter
	// than the mismatch delay.
	ErrDelayOrder = errors.New("match delay must be positive and shorter than mismatch delay")
	// ErrUnknownDifficulty is returned for a difficulty with no configured pair count.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

const (
	DefaultMatchDelay    = 350 * time.Millisecond
	DefaultMismatchDelay = 600 * time.Millisecond
	DefaultMaxPairs      = 64
)

// Options configures engine timing and board sizes.
type Options struct {
	MatchDelay    time.Duration
	MismatchDelay time.Duration
	PairCounts    map[Difficulty]int
	// MaxPairs caps the pair count of any game; 0 means board.MaxPairCount.
	MaxPairs int
}

// DefaultOptions returns 350ms/600ms delays and 4/8/16 pairs.
func DefaultOptions() Options {
	return Options{
		MatchDelay:    DefaultMatchDelay,
		MismatchDelay: DefaultMismatchDelay,
		PairCounts: map[Difficulty]int{
			DifficultyEasy:   4,
			DifficultyNormal: 8,
			DifficultyHard:   16,
		},
		MaxPairs: DefaultMaxPairs,
	}
}

// Validate checks 0 < MatchDelay < MismatchDelay and positive pair counts.
func (o Options) Validate() error {
	if o.MatchDelay <= 0 || o.MismatchDelay <= o.MatchDelay {
		return fmt.Errorf("%w: match=%s mismatch=%s", ErrDelayOrder, o.MatchDelay, o.MismatchDelay)
	}
	if o.MaxPairs < 0 || o.MaxPairs > board.MaxPairCount {
		return fmt.Errorf("max pairs: %w: %d", board.ErrInvalidPairCount, o.MaxPairs)
	}
	for d, n := range o.PairCounts {
		if n <= 0 || n > o.maxPairs() {
			return fmt.Errorf("difficulty %q: %w: %d", d, board.ErrInvalidPairCount, n)
		}
	}
	return nil
}

// PairCount resolves d to its configured pair count.
func (o Options) PairCount(d Difficulty) (int, error) {
	n, ok := o.PairCounts[d]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, d)
	}
	return n, nil
}

func (o Options) maxPairs() int {
	if o.MaxPairs == 0 {
		return board.MaxPairCount
	}
	return o.MaxPairs
}

// checkPairCount rejects counts outside [1, MaxPairs].
func (o Options) checkPairCount(n int) error {
	if n <= 0 || n > o.maxPairs() {
		return fmt.Errorf("%w: %d (max %d)", board.ErrInvalidPairCount, n, o.maxPairs())
	}
	return nil
}

// delay picks the commit delay for an outcome.
func (o Options) delay(out Outcome) time.Duration {
	if out == OutcomeMatch {
		return o.MatchDelay
	}
	return o.MismatchDelay
}
