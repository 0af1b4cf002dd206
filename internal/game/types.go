// internal/game/types.go
//
// Core type definitions for the memory game engine.
// Defines:
//   - Difficulty: named board sizes (easy/normal/hard).
//   - Session: the authoritative state of one game.
//   - Resolution: a decided but not yet committed turn.
//   - Snapshot: the immutable read handed to renderers.

package game

import (
	"time"

	"github.com/acciojob/memory-game-faizvk/internal/board"
)

// Difficulty names a board size.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// Outcome is the result of comparing the two picks of a turn.
type Outcome string

const (
	OutcomeMatch    Outcome = "match"
	OutcomeMismatch Outcome = "mismatch"
)

// Phase is the position within one selection cycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"       // nothing picked
	PhaseOnePicked Phase = "one_picked" // one tile up, input open
	PhaseResolving Phase = "resolving"  // two tiles up, commit pending
)

// Session holds the state of a single game. It is replaced, never reset.
type Session struct {
	ID          string      // Unique per start/restart (uuid).
	PairCount   int         // Distinct values on the board.
	Tiles       board.Board // Current tile states.
	Selection   []int       // 0-2 picked, unresolved tile indices.
	Attempts    int         // Completed two-tile turns.
	InputLocked bool        // True while a resolution is pending.
	StartedAt   time.Time
}

// Solved reports whether every tile is matched.
func (s Session) Solved() bool { return s.Tiles.AllMatched() }

// Phase derives the selection-cycle phase.
func (s Session) Phase() Phase {
	switch {
	case s.InputLocked:
		return PhaseResolving
	case len(s.Selection) == 1:
		return PhaseOnePicked
	default:
		return PhaseIdle
	}
}

// clone copies s so that transitions never write through to their input.
func (s Session) clone() Session {
	s.Tiles = s.Tiles.Clone()
	s.Selection = append([]int(nil), s.Selection...)
	return s
}

// Resolution is a decided turn waiting for its delayed commit.
type Resolution struct {
	SessionID string
	Turn      int // Attempts value at decision time.
	First     int
	Second    int
	Outcome   Outcome
}

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	GameID      string       `json:"gameId"`
	SessionID   string       `json:"sessionId"`
	PairCount   int          `json:"pairCount"`
	Tiles       []board.Tile `json:"tiles"`
	Selected    []int        `json:"selected"`
	Attempts    int          `json:"attempts"`
	InputLocked bool         `json:"inputLocked"`
	Solved      bool         `json:"solved"`
	Phase       Phase        `json:"phase"`
	StartedAt   time.Time    `json:"startedAt"`
}

// EventType identifies an engine lifecycle notification.
type EventType string

const (
	EventStarted EventType = "started"
	EventSolved  EventType = "solved"
)

// Event is delivered to an engine observer.
type Event struct {
	Type     EventType
	Snapshot Snapshot
}
