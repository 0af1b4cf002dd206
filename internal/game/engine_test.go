package game

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acciojob/memory-game-faizvk/internal/board"
	"github.com/acciojob/memory-game-faizvk/internal/clock"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, options ...Option) (*Engine, *clock.Manual) {
	t.Helper()
	m := clock.NewManual(epoch)
	e := New(DefaultOptions(), append([]Option{WithScheduler(m)}, options...)...)
	t.Cleanup(e.Close)
	return e, m
}

func faceUpUnmatched(s Snapshot) int {
	n := 0
	for _, t := range s.Tiles {
		if t.Revealed && !t.Matched {
			n++
		}
	}
	return n
}

func TestEngineScenario(t *testing.T) {
	e, m := newTestEngine(t)
	require.NoError(t, e.StartGame(4, []int{1, 2, 3, 4, 1, 2, 3, 4}))

	snap := e.Snapshot()
	require.Len(t, snap.Tiles, 8)
	for i, want := range []int{1, 2, 3, 4, 1, 2, 3, 4} {
		assert.Equal(t, want, snap.Tiles[i].Value)
	}

	require.True(t, e.SelectTile(0))
	require.True(t, e.SelectTile(4))
	m.Advance(DefaultMatchDelay)

	snap = e.Snapshot()
	assert.True(t, snap.Tiles[0].Matched)
	assert.True(t, snap.Tiles[4].Matched)
	assert.Equal(t, 1, snap.Attempts)

	require.True(t, e.SelectTile(1))
	require.True(t, e.SelectTile(2))
	m.Advance(DefaultMismatchDelay)

	snap = e.Snapshot()
	assert.False(t, snap.Tiles[1].Revealed)
	assert.False(t, snap.Tiles[2].Revealed)
	assert.Equal(t, 2, snap.Attempts)
	assert.False(t, snap.Solved)
	assert.False(t, snap.InputLocked)
	assert.Empty(t, snap.Selected)
}

func TestEngineMatchCommitsAfterMatchDelay(t *testing.T) {
	e, m := newTestEngine(t)
	require.NoError(t, e.StartGame(2, []int{1, 2, 1, 2}))

	e.SelectTile(0)
	e.SelectTile(2)
	snap := e.Snapshot()
	assert.True(t, snap.InputLocked)
	assert.Equal(t, PhaseResolving, snap.Phase)
	assert.Equal(t, []int{0, 2}, snap.Selected)
	assert.False(t, snap.Tiles[0].Matched)

	m.Advance(DefaultMatchDelay - time.Millisecond)
	assert.True(t, e.Snapshot().InputLocked)

	m.Advance(time.Millisecond)
	snap = e.Snapshot()
	assert.True(t, snap.Tiles[0].Matched)
	assert.True(t, snap.Tiles[2].Matched)
	assert.Empty(t, snap.Selected)
	assert.False(t, snap.InputLocked)
	assert.Equal(t, 1, snap.Attempts)
}

func TestEngineMismatchWaitsLongerThanMatch(t *testing.T) {
	e, m := newTestEngine(t)
	require.NoError(t, e.StartGame(2, []int{1, 2, 1, 2}))

	e.SelectTile(0)
	e.SelectTile(1)

	m.Advance(DefaultMatchDelay)
	snap := e.Snapshot()
	assert.True(t, snap.InputLocked, "mismatch must still be showing after the match delay")
	assert.True(t, snap.Tiles[0].Revealed)
	assert.True(t, snap.Tiles[1].Revealed)

	m.Advance(DefaultMismatchDelay - DefaultMatchDelay)
	snap = e.Snapshot()
	assert.False(t, snap.InputLocked)
	assert.False(t, snap.Tiles[0].Revealed)
	assert.False(t, snap.Tiles[1].Revealed)
	assert.Equal(t, 1, snap.Attempts)
}

func TestEngineIgnoredPicksDoNotChangeSnapshot(t *testing.T) {
	e, m := newTestEngine(t)
	require.NoError(t, e.StartGame(2, []int{1, 2, 1, 2}))

	// Matched tile.
	e.SelectTile(0)
	e.SelectTile(2)
	m.Advance(DefaultMatchDelay)
	before := e.Snapshot()
	assert.False(t, e.SelectTile(0))
	assert.Equal(t, before, e.Snapshot())

	// Already revealed tile.
	require.True(t, e.SelectTile(1))
	before = e.Snapshot()
	assert.False(t, e.SelectTile(1))
	assert.Equal(t, before, e.Snapshot())

	// Input locked while resolving.
	require.True(t, e.SelectTile(3))
	before = e.Snapshot()
	require.True(t, before.InputLocked)
	for i := -1; i <= 4; i++ {
		assert.False(t, e.SelectTile(i))
	}
	assert.Equal(t, before, e.Snapshot())

	// Out of bounds.
	m.Advance(DefaultMatchDelay)
	before = e.Snapshot()
	assert.False(t, e.SelectTile(-1))
	assert.False(t, e.SelectTile(4))
	assert.Equal(t, before, e.Snapshot())
}

func TestEngineSelectBeforeStartIsIgnored(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.False(t, e.SelectTile(0))
	snap := e.Snapshot()
	assert.Equal(t, e.ID(), snap.GameID)
	assert.Empty(t, snap.Tiles)
	assert.False(t, snap.Solved)
}

func TestEngineSolvedIsTerminal(t *testing.T) {
	var mu sync.Mutex
	var events []Event
	e, m := newTestEngine(t, WithObserver(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}))
	require.NoError(t, e.StartGame(2, []int{1, 2, 1, 2}))

	e.SelectTile(0)
	e.SelectTile(2)
	m.Advance(DefaultMatchDelay)
	e.SelectTile(1)
	e.SelectTile(3)
	m.Advance(DefaultMatchDelay)

	snap := e.Snapshot()
	require.True(t, snap.Solved)
	assert.Equal(t, 2, snap.Attempts)

	for i := 0; i < 4; i++ {
		assert.False(t, e.SelectTile(i))
	}
	m.Advance(time.Hour)
	assert.Equal(t, snap, e.Snapshot())

	mu.Lock()
	got := append([]Event(nil), events...)
	mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, EventStarted, got[0].Type)
	assert.Equal(t, EventSolved, got[1].Type)
	assert.Equal(t, 2, got[1].Snapshot.Attempts)

	require.NoError(t, e.Restart())
	assert.False(t, e.Snapshot().Solved)
}

func TestEngineRestartSupersedesPendingCommit(t *testing.T) {
	e, m := newTestEngine(t)
	require.NoError(t, e.StartGame(4, []int{1, 2, 3, 4, 1, 2, 3, 4}))
	old := e.Snapshot().SessionID

	e.SelectTile(0)
	e.SelectTile(4)
	require.True(t, e.Snapshot().InputLocked)

	require.NoError(t, e.Restart())
	assert.Equal(t, 0, m.Pending(), "restart must cancel the pending commit")

	m.Advance(time.Second)
	snap := e.Snapshot()
	assert.NotEqual(t, old, snap.SessionID)
	assert.Equal(t, 4, snap.PairCount)
	assert.Zero(t, snap.Attempts)
	assert.False(t, snap.InputLocked)
	for _, tile := range snap.Tiles {
		assert.False(t, tile.Matched)
		assert.False(t, tile.Revealed)
	}
}

// leakyScheduler hands out timers that cannot be stopped, so a superseded
// commit still fires and must be rejected by the session check.
type leakyScheduler struct{ *clock.Manual }

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (l leakyScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	l.Manual.AfterFunc(d, f)
	return leakyTimer{}
}

func TestEngineStaleCommitIsIgnored(t *testing.T) {
	m := clock.NewManual(epoch)
	e := New(DefaultOptions(), WithScheduler(leakyScheduler{m}))
	defer e.Close()

	require.NoError(t, e.StartGame(2, []int{1, 2, 1, 2}))
	e.SelectTile(0)
	e.SelectTile(2)

	require.NoError(t, e.StartGame(2, []int{1, 2, 1, 2}))
	e.SelectTile(0)
	before := e.Snapshot()

	m.Advance(DefaultMatchDelay)
	assert.Equal(t, 0, m.Pending(), "the superseded commit has fired")
	assert.Equal(t, before, e.Snapshot())
}

func TestEngineStartGameInvalidPairCountKeepsSession(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.StartGame(2, nil))
	before := e.Snapshot()

	for _, n := range []int{0, DefaultMaxPairs + 1, 1 << 62} {
		err := e.StartGame(n, nil)
		assert.True(t, errors.Is(err, board.ErrInvalidPairCount), "pairCount %d: %v", n, err)
		assert.Equal(t, before, e.Snapshot())
	}
	require.NoError(t, e.StartGame(DefaultMaxPairs, nil))
}

func TestEngineStartDifficulty(t *testing.T) {
	e, _ := newTestEngine(t)
	for d, want := range map[Difficulty]int{DifficultyEasy: 4, DifficultyNormal: 8, DifficultyHard: 16} {
		require.NoError(t, e.StartDifficulty(d, nil))
		snap := e.Snapshot()
		assert.Equal(t, want, snap.PairCount)
		assert.Len(t, snap.Tiles, 2*want)
	}
	assert.True(t, errors.Is(e.StartDifficulty("nightmare", nil), ErrUnknownDifficulty))
}

func TestEngineRestartBeforeStartUsesEasy(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Restart())
	assert.Equal(t, 4, e.Snapshot().PairCount)
}

func TestEngineSubscribeKeepsLatest(t *testing.T) {
	e, m := newTestEngine(t)
	ch, cancel := e.Subscribe()

	first := <-ch
	assert.Empty(t, first.Tiles)

	require.NoError(t, e.StartGame(2, []int{1, 2, 1, 2}))
	e.SelectTile(0)
	e.SelectTile(1)

	latest := <-ch
	assert.Equal(t, []int{0, 1}, latest.Selected)
	assert.True(t, latest.InputLocked)

	m.Advance(DefaultMismatchDelay)
	committed := <-ch
	assert.False(t, committed.InputLocked)
	assert.Equal(t, 1, committed.Attempts)

	cancel()
	_, open := <-ch
	assert.False(t, open)
	cancel()
}

func TestEngineClose(t *testing.T) {
	e, m := newTestEngine(t)
	require.NoError(t, e.StartGame(2, []int{1, 2, 1, 2}))
	ch, _ := e.Subscribe()
	<-ch

	e.SelectTile(0)
	e.SelectTile(2)
	e.Close()
	assert.Equal(t, 0, m.Pending())

	for range ch {
	}
	_, open := <-ch
	assert.False(t, open)
	assert.False(t, e.SelectTile(1))
	assert.True(t, errors.Is(e.StartGame(2, nil), ErrClosed))

	late, _ := e.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestEngineNeverRevealsMoreThanTwo(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e, m := newTestEngine(t)
	require.NoError(t, e.StartGame(8, nil))

	for step := 0; step < 5000; step++ {
		switch r := rng.Intn(100); {
		case r < 70:
			e.SelectTile(rng.Intn(18) - 1)
		case r < 98:
			m.Advance(time.Duration(rng.Intn(700)) * time.Millisecond)
		default:
			require.NoError(t, e.Restart())
		}

		snap := e.Snapshot()
		require.LessOrEqual(t, faceUpUnmatched(snap), 2, "step %d", step)
		require.LessOrEqual(t, len(snap.Selected), 2)
		counts := map[int]int{}
		for _, tile := range snap.Tiles {
			counts[tile.Value]++
		}
		for v, n := range counts {
			require.Equal(t, 2, n, "value %d at step %d", v, step)
		}
		if snap.Solved {
			require.NoError(t, e.Restart())
		}
	}
}

func TestEngineConcurrentPicksWithRealClock(t *testing.T) {
	opts := DefaultOptions()
	opts.MatchDelay = time.Millisecond
	opts.MismatchDelay = 2 * time.Millisecond
	e := New(opts)
	defer e.Close()
	require.NoError(t, e.StartGame(4, nil))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				e.SelectTile((g + i) % 8)
				assert.LessOrEqual(t, faceUpUnmatched(e.Snapshot()), 2)
			}
		}(g)
	}
	wg.Wait()
}

func TestEngineLastActive(t *testing.T) {
	e, m := newTestEngine(t)
	assert.Equal(t, epoch, e.LastActive())

	m.Advance(time.Minute)
	require.NoError(t, e.StartGame(2, []int{1, 2, 1, 2}))
	assert.Equal(t, epoch.Add(time.Minute), e.LastActive())

	m.Advance(time.Minute)
	assert.False(t, e.SelectTile(99))
	assert.Equal(t, epoch.Add(time.Minute), e.LastActive(), "ignored picks are not activity")

	require.True(t, e.SelectTile(0))
	require.True(t, e.SelectTile(2))
	assert.Equal(t, epoch.Add(2*time.Minute), e.LastActive())

	m.Advance(time.Second)
	assert.Equal(t, epoch.Add(2*time.Minute+DefaultMatchDelay), e.LastActive())
}
