package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acciojob/memory-game-faizvk/internal/daily"
)

func TestDailyBoardIsSharedAndRecorded(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.client(t), f.client(t)

	rec := alice.do(http.MethodPost, "/daily/new", `{"difficulty":"easy"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	a := decode[dailyNewRes](t, rec)
	require.NotNil(t, a.Snapshot)
	assert.Equal(t, "2026-10-19", a.Date)
	assert.False(t, a.Played)
	assert.Equal(t, daily.BoardSeed(start, testConfig().DailySalt, 4), values(a.Snapshot.Tiles))

	// Same caller gets the same live game back.
	again := decode[dailyNewRes](t, alice.do(http.MethodPost, "/daily/new", nil))
	assert.Equal(t, a.GameID, again.GameID)

	// Another player gets their own game with the same board.
	b := decode[dailyNewRes](t, bob.do(http.MethodPost, "/daily/new", `{"difficulty":"easy"}`))
	assert.NotEqual(t, a.GameID, b.GameID)
	assert.Equal(t, values(a.Snapshot.Tiles), values(b.Snapshot.Tiles))

	rec = alice.do(http.MethodPost, "/game/restart", map[string]any{"gameId": a.GameID})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "daily_restart_not_allowed", errCode(t, rec))

	alice.solve(f, a.GameID, a.Snapshot.Tiles)

	played := decode[dailyNewRes](t, alice.do(http.MethodPost, "/daily/new", `{"difficulty":"easy"}`))
	assert.True(t, played.Played)
	assert.Empty(t, played.GameID)
	assert.Nil(t, played.Snapshot)

	lb := decode[lbRes](t, alice.do(http.MethodGet, "/daily/leaderboard", nil))
	assert.Equal(t, "2026-10-19", lb.Date)
	assert.Equal(t, "easy", lb.Difficulty)
	require.Len(t, lb.Top, 1)
	assert.Equal(t, 4, lb.Top[0].Attempts)
	// Four pairs, one second apart, each committing 350ms after its pick.
	assert.Equal(t, int((3*time.Second + 350*time.Millisecond).Milliseconds()), lb.Top[0].ElapsedMs)

	lb = decode[lbRes](t, alice.do(http.MethodGet, "/daily/leaderboard?difficulty=hard", nil))
	assert.Empty(t, lb.Top)
}

func TestDailyDifficultiesAreSeparate(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	easy := decode[dailyNewRes](t, c.do(http.MethodPost, "/daily/new", `{"difficulty":"easy"}`))
	hard := decode[dailyNewRes](t, c.do(http.MethodPost, "/daily/new", `{"difficulty":"hard"}`))
	assert.NotEqual(t, easy.GameID, hard.GameID)
	assert.Len(t, hard.Snapshot.Tiles, 32)

	rec := c.do(http.MethodPost, "/daily/new", `{"difficulty":"extreme"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyGameRecreatedAfterDelete(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	first := decode[dailyNewRes](t, c.do(http.MethodPost, "/daily/new", nil))
	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/game/"+first.GameID, nil).Code)

	second := decode[dailyNewRes](t, c.do(http.MethodPost, "/daily/new", nil))
	assert.NotEqual(t, first.GameID, second.GameID)
	assert.Equal(t, values(first.Snapshot.Tiles), values(second.Snapshot.Tiles))
}
