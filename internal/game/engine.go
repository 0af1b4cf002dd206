// internal/game/engine.go
//
// Game engine for a single memory board.
// Responsibilities:
//   - Own the authoritative Session and replace it on start/restart.
//   - Apply tile picks through the pure Select transition.
//   - Schedule the delayed commit of each resolved turn (match commits
//     faster than mismatch) and apply it through Commit.
//   - Publish snapshots to subscribers and lifecycle events to an observer.
//
// Notes:
//   - One mutex guards all state; InputLocked is what serializes turns.
//   - A commit from a superseded session is cancelled (timer stop) and also
//     rejected by Commit's session/turn check if the timer already fired.

package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/acciojob/memory-game-faizvk/internal/board"
	"github.com/acciojob/memory-game-faizvk/internal/clock"
)

// ErrClosed is returned when starting a game on a closed engine.
var ErrClosed = errors.New("engine closed")

// Engine runs one board at a time.
type Engine struct {
	id       string
	opts     Options
	sched    clock.Scheduler
	gen      *board.Generator
	log      zerolog.Logger
	observer func(Event)

	mu      sync.Mutex
	sess    *Session
	pending clock.Timer
	subs    map[int]chan Snapshot
	nextSub int
	closed  bool
	touched time.Time // last start, accepted pick or commit
}

// Option customizes an Engine.
type Option func(*Engine)

// WithScheduler replaces the wall-clock scheduler (tests use clock.Manual).
func WithScheduler(s clock.Scheduler) Option { return func(e *Engine) { e.sched = s } }

// WithGenerator replaces the board generator.
func WithGenerator(g *board.Generator) Option { return func(e *Engine) { e.gen = g } }

// WithLogger sets the engine logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

// WithObserver registers f for lifecycle events. f runs outside the engine
// lock and must not block for long.
func WithObserver(f func(Event)) Option { return func(e *Engine) { e.observer = f } }

// WithID fixes the engine (game) identifier instead of a random uuid.
func WithID(id string) Option { return func(e *Engine) { e.id = id } }

// New constructs an engine with no active session. opts is assumed valid;
// callers load it through Options.Validate.
func New(opts Options, options ...Option) *Engine {
	e := &Engine{
		id:    uuid.NewString(),
		opts:  opts,
		sched: clock.NewReal(),
		gen:   board.NewGenerator(),
		log:   zerolog.Nop(),
		subs:  make(map[int]chan Snapshot),
	}
	for _, o := range options {
		o(e)
	}
	e.log = e.log.With().Str("gameId", e.id).Logger()
	e.touched = e.sched.Now()
	return e
}

// LastActive reports when the engine last started a board, accepted a pick
// or committed a turn.
func (e *Engine) LastActive() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.touched
}

// ID returns the game identifier, stable across restarts.
func (e *Engine) ID() string { return e.id }

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// StartGame replaces the current session with a fresh board.
// Pair counts above Options.MaxPairs are rejected with board.ErrInvalidPairCount.
// On error the previous session is left untouched.
func (e *Engine) StartGame(pairCount int, seed []int) error {
	if err := e.opts.checkPairCount(pairCount); err != nil {
		return err
	}
	tiles, err := e.gen.Generate(pairCount, seed)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.sess = &Session{
		ID:        uuid.NewString(),
		PairCount: pairCount,
		Tiles:     tiles,
		StartedAt: e.sched.Now(),
	}
	e.touched = e.sess.StartedAt
	snap := e.snapshotLocked()
	e.publishLocked(snap)
	e.mu.Unlock()

	e.log.Debug().Str("sessionId", snap.SessionID).Int("pairs", pairCount).
		Bool("seeded", board.ValidSeed(pairCount, seed)).Msg("session started")
	e.notify(Event{Type: EventStarted, Snapshot: snap})
	return nil
}

// StartDifficulty starts a game sized by the configured pair count for d.
func (e *Engine) StartDifficulty(d Difficulty, seed []int) error {
	n, err := e.opts.PairCount(d)
	if err != nil {
		return err
	}
	return e.StartGame(n, seed)
}

// Restart starts a new randomly shuffled game with the current pair count.
// Before any game has been started it starts the easy difficulty.
func (e *Engine) Restart() error {
	e.mu.Lock()
	n := 0
	if e.sess != nil {
		n = e.sess.PairCount
	}
	e.mu.Unlock()

	if n == 0 {
		return e.StartDifficulty(DifficultyEasy, nil)
	}
	return e.StartGame(n, nil)
}

// SelectTile picks the tile at index. It reports whether the pick was
// accepted; ignored picks leave the state untouched.
func (e *Engine) SelectTile(index int) bool {
	e.mu.Lock()
	if e.sess == nil || e.closed {
		e.mu.Unlock()
		return false
	}
	next, res, ok := Select(*e.sess, index)
	if !ok {
		e.mu.Unlock()
		return false
	}
	e.sess = &next
	e.touched = e.sched.Now()
	if res != nil {
		r := *res
		d := e.opts.delay(r.Outcome)
		e.pending = e.sched.AfterFunc(d, func() { e.commit(r) })
		e.log.Debug().Str("sessionId", r.SessionID).Int("turn", r.Turn).
			Str("outcome", string(r.Outcome)).Dur("delay", d).Msg("turn resolved")
	}
	e.publishLocked(e.snapshotLocked())
	e.mu.Unlock()
	return true
}

// commit runs on the scheduler once a resolution's delay has elapsed.
func (e *Engine) commit(r Resolution) {
	e.mu.Lock()
	if e.sess == nil || e.closed {
		e.mu.Unlock()
		return
	}
	next, ok := Commit(*e.sess, r)
	if !ok {
		e.mu.Unlock()
		e.log.Debug().Str("sessionId", r.SessionID).Int("turn", r.Turn).Msg("stale commit dropped")
		return
	}
	e.sess = &next
	e.pending = nil
	e.touched = e.sched.Now()
	snap := e.snapshotLocked()
	e.publishLocked(snap)
	e.mu.Unlock()

	if snap.Solved {
		e.log.Debug().Str("sessionId", snap.SessionID).Int("attempts", snap.Attempts).Msg("board solved")
		e.notify(Event{Type: EventSolved, Snapshot: snap})
	}
}

// Snapshot returns a copy of the current state. Before the first game it is
// the zero Snapshot carrying only the game ID.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{GameID: e.id, Phase: PhaseIdle, Tiles: []board.Tile{}, Selected: []int{}}
	if e.sess == nil {
		return snap
	}
	s := e.sess
	snap.SessionID = s.ID
	snap.PairCount = s.PairCount
	snap.Tiles = s.Tiles.Clone()
	snap.Selected = append(snap.Selected, s.Selection...)
	snap.Attempts = s.Attempts
	snap.InputLocked = s.InputLocked
	snap.Solved = s.Solved()
	snap.Phase = s.Phase()
	snap.StartedAt = s.StartedAt
	return snap
}

// Subscribe returns a stream of snapshots, starting with the current one.
// The stream keeps only the newest unread snapshot. Call cancel to stop.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch, func() {}
	}
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	ch <- e.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if c, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(c)
			}
		})
	}
}

// publishLocked hands snap to every subscriber, replacing an unread one.
func (e *Engine) publishLocked(snap Snapshot) {
	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		// Each subscriber gets its own copy of the slices.
		c := snap
		c.Tiles = append([]board.Tile(nil), snap.Tiles...)
		c.Selected = append([]int(nil), snap.Selected...)
		ch <- c
	}
}

func (e *Engine) notify(ev Event) {
	if e.observer != nil {
		e.observer(ev)
	}
}

// Close cancels any pending commit and ends all subscriptions.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}
