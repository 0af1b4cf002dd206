// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's board for a difficulty (creates or reuses a game)
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Play happens through the regular /game/select and /game/{id}/stream
// endpoints. Each player records one result per day and difficulty
// (enforced by the daily_results unique key). The board arrangement is
// derived from date + salt, so every player gets the same board.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/acciojob/memory-game-faizvk/internal/daily"
	"github.com/acciojob/memory-game-faizvk/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv   *Server
	store *daily.Store
	salt  string
	games map[string]string // live engine IDs keyed by owner|date|difficulty
	mu    sync.Mutex        // guards games
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:   s,
		store: daily.NewStore(s.db),
		salt:  s.cfg.DailySalt,
		games: make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewReq struct {
	Difficulty string `json:"difficulty"` // easy|normal|hard (default easy)
}

// dailyNewRes is returned by /daily/new. Snapshot is omitted when played.
type dailyNewRes struct {
	GameID     string         `json:"gameId"`
	Date       string         `json:"date"`
	Difficulty string         `json:"difficulty"`
	Played     bool           `json:"played"`
	Snapshot   *game.Snapshot `json:"snapshot,omitempty"`
}

// handleNew creates or reuses today's game for the caller.
//   - If the caller already has a result for today → Played=true.
//   - Otherwise reuse the caller's live daily game or start a seeded one.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	var req dailyNewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = string(game.DifficultyEasy)
	}
	pairs, err := d.srv.opts.PairCount(game.Difficulty(req.Difficulty))
	if err != nil {
		writeStartErr(w, err)
		return
	}

	meta := d.srv.ownerMeta(w, r, req.Difficulty)
	now := d.srv.sched.Now()
	date := daily.DateKey(now)
	meta.Daily, meta.Date = true, date
	res := dailyNewRes{Date: date, Difficulty: req.Difficulty}

	// Check if already played (persisted in DB).
	if played, err := d.store.AlreadyPlayed(r.Context(), meta.owner(), date, req.Difficulty); err == nil && played {
		res.Played = true
		_ = json.NewEncoder(w).Encode(res)
		return
	}

	// Reuse the live game unless it was deleted meanwhile.
	key := meta.owner() + "|" + date + "|" + req.Difficulty
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.games[key]; ok {
		if e, err := d.srv.store.Get(r.Context(), id); err == nil {
			snap := e.Snapshot()
			res.GameID, res.Snapshot = id, &snap
			_ = json.NewEncoder(w).Encode(res)
			return
		}
		delete(d.games, key)
	}

	e := d.srv.newEngine(meta)
	if err := e.StartGame(pairs, daily.BoardSeed(now, d.salt, pairs)); err != nil {
		d.srv.discardEngine(e)
		writeStartErr(w, err)
		return
	}
	if err := d.srv.store.Save(r.Context(), e); err != nil {
		log.Error().Err(err).Msg("save daily game")
		d.srv.discardEngine(e)
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.games[key] = e.ID()

	snap := e.Snapshot()
	res.GameID, res.Snapshot = e.ID(), &snap
	_ = json.NewEncoder(w).Encode(res)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date       string        `json:"date"`
	Difficulty string        `json:"difficulty"`
	Top        []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today)
// and difficulty (default easy).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.sched.Now())
	}
	difficulty := r.URL.Query().Get("difficulty")
	if difficulty == "" {
		difficulty = string(game.DifficultyEasy)
	}
	rows, err := d.store.Leaderboard(r.Context(), date, difficulty, 20)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Difficulty: difficulty, Top: rows})
}
