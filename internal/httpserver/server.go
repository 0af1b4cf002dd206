// internal/httpserver/server.go
//
// HTTP server wiring for the memory game backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): new, select, restart, snapshot, delete, stream.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints (require auth): /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - Live boards are held in the in-memory store; only history is persisted.
//   - Every engine reports lifecycle events to recordEvent, which writes
//     the games table and user stats best-effort.
//   - Games idle for GAME_TTL are dropped by the reaper started in Start.

package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/acciojob/memory-game-faizvk/internal/board"
	"github.com/acciojob/memory-game-faizvk/internal/clock"
	"github.com/acciojob/memory-game-faizvk/internal/config"
	"github.com/acciojob/memory-game-faizvk/internal/game"
	"github.com/acciojob/memory-game-faizvk/internal/store"
)

// Server bundles router, live game store, DB handle and configuration.
type Server struct {
	r     *chi.Mux
	store store.Store
	db    *sql.DB
	cfg   config.Config
	opts  game.Options
	sched clock.Scheduler

	mu   sync.Mutex
	meta map[string]*gameMeta // keyed by engine ID

	histMu sync.Mutex // serializes history writes with guest claims
}

// gameMeta is what the server knows about a live engine beyond its state.
type gameMeta struct {
	UserID     string // set when started by a signed-in user
	AnonID     string // set for guests
	Difficulty string // easy|normal|hard|custom
	Daily      bool
	Date       string // daily board date (YYYY-MM-DD)
}

// owner returns the identifier results are recorded under.
func (m *gameMeta) owner() string {
	if m.UserID != "" {
		return m.UserID
	}
	return m.AnonID
}

// Option customizes a Server.
type Option func(*Server)

// WithScheduler drives engine delays from s instead of the wall clock.
func WithScheduler(s clock.Scheduler) Option { return func(srv *Server) { srv.sched = s } }

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, cfg config.Config, options ...Option) (*Server, error) {
	opts, err := cfg.GameOptions()
	if err != nil {
		return nil, err
	}
	s := &Server{
		r:     chi.NewRouter(),
		store: st,
		db:    db,
		cfg:   cfg,
		opts:  opts,
		sched: clock.NewReal(),
		meta:  make(map[string]*gameMeta),
	}
	for _, o := range options {
		o(s)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)       // zerolog access log
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(s.cors)          // credentials-friendly CORS

	// Websocket streams are long-lived, so they sit outside the timeout.
	s.r.With(s.withOptionalAuth()).Get("/game/{id}/stream", s.handleStream)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"memory-go","endpoints":["/health","POST /game/new","POST /game/select","POST /game/restart","GET /game/{id}","/daily/*","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "games": s.store.Len()})
		})

		// Game endpoints: OPTIONAL AUTH (guests can play)
		r.Group(func(r chi.Router) {
			r.Use(s.withOptionalAuth())
			r.Post("/game/new", s.handleNewGame)
			r.Post("/game/select", s.handleSelect)
			r.Post("/game/restart", s.handleRestart)
			r.Get("/game/{id}", s.handleSnapshot)
			r.Delete("/game/{id}", s.handleDelete)

			// Daily Challenge: OPTIONAL AUTH (guests can play; results recorded on solve)
			s.mountDaily(r)
		})

		// Auth + profile/stats (require auth)
		s.mountAuthRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "not_found")
	})

	return s, nil
}

// Start begins serving HTTP on addr and reaps idle games while it runs.
func (s *Server) Start(addr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.runReaper(ctx)

	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}

// runReaper calls reapIdle every GAME_TTL/2 (at most once a minute).
func (s *Server) runReaper(ctx context.Context) {
	if s.cfg.GameTTL <= 0 {
		return
	}
	every := s.cfg.GameTTL / 2
	if every > time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.reapIdle(ctx)
		}
	}
}

// reapIdle drops live games with no activity for GAME_TTL.
func (s *Server) reapIdle(ctx context.Context) int {
	if s.cfg.GameTTL <= 0 {
		return 0
	}
	ids := s.store.Sweep(ctx, s.sched.Now().Add(-s.cfg.GameTTL))
	for _, id := range ids {
		s.forget(id)
	}
	if len(ids) > 0 {
		log.Debug().Int("games", len(ids)).Msg("reaped idle games")
	}
	return len(ids)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// writeErr writes a {"error": code} body with status.
func writeErr(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// ------------------------------ GAME ---------------------------------------

// newEngine builds an engine whose lifecycle events are recorded under meta.
func (s *Server) newEngine(meta *gameMeta) *game.Engine {
	e := game.New(s.opts,
		game.WithScheduler(s.sched),
		game.WithLogger(log.Logger),
		game.WithObserver(func(ev game.Event) { s.recordEvent(meta, ev) }),
	)
	s.mu.Lock()
	s.meta[e.ID()] = meta
	s.mu.Unlock()
	return e
}

// dropEngine removes an engine from the store and forgets its metadata.
func (s *Server) dropEngine(r *http.Request, id string) {
	_ = s.store.Delete(r.Context(), id)
	s.forget(id)
}

// discardEngine closes an engine that never made it into the store.
func (s *Server) discardEngine(e *game.Engine) {
	e.Close()
	s.forget(e.ID())
}

func (s *Server) forget(id string) {
	s.mu.Lock()
	delete(s.meta, id)
	s.mu.Unlock()
}

// metaView copies meta under s.mu; claims may re-own it concurrently.
func (s *Server) metaView(m *gameMeta) gameMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *m
}

func (s *Server) metaFor(id string) *gameMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta[id]
}

// ownerMeta describes a game started by the caller of r.
func (s *Server) ownerMeta(w http.ResponseWriter, r *http.Request, difficulty string) *gameMeta {
	if me := currentUser(r); me != nil {
		return &gameMeta{UserID: me.ID, Difficulty: difficulty}
	}
	return &gameMeta{AnonID: s.ensureAnonID(w, r), Difficulty: difficulty}
}

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Difficulty string          `json:"difficulty"` // easy|normal|hard (default easy)
	PairCount  int             `json:"pairCount"`  // overrides difficulty when > 0
	Seed       json.RawMessage `json:"seed"`       // [1,2,1,2] or "1,2,1,2"; malformed → random
}
type gameRes struct {
	GameID   string        `json:"gameId"`
	Accepted *bool         `json:"accepted,omitempty"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// handleNewGame creates a live game and starts its first board.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}

	difficulty := req.Difficulty
	if req.PairCount != 0 {
		difficulty = "custom"
	} else if difficulty == "" {
		difficulty = string(game.DifficultyEasy)
	}

	meta := s.ownerMeta(w, r, difficulty)
	e := s.newEngine(meta)
	seed := parseSeed(req.Seed)

	var err error
	if req.PairCount != 0 {
		err = e.StartGame(req.PairCount, seed)
	} else {
		err = e.StartDifficulty(game.Difficulty(difficulty), seed)
	}
	if err != nil {
		s.discardEngine(e)
		writeStartErr(w, err)
		return
	}

	if err := s.store.Save(r.Context(), e); err != nil {
		log.Error().Err(err).Msg("save game")
		s.discardEngine(e)
		writeErr(w, http.StatusInternalServerError, "save_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(gameRes{GameID: e.ID(), Snapshot: e.Snapshot()})
}

// writeStartErr maps StartGame errors to 400 codes.
func writeStartErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrInvalidPairCount):
		writeErr(w, http.StatusBadRequest, "invalid_pair_count")
	case errors.Is(err, game.ErrUnknownDifficulty):
		writeErr(w, http.StatusBadRequest, "unknown_difficulty")
	default:
		log.Error().Err(err).Msg("start game")
		writeErr(w, http.StatusInternalServerError, "start_failed")
	}
}

// parseSeed accepts a JSON integer array or a comma-separated string.
// Anything else yields nil, which makes the generator shuffle randomly.
func parseSeed(raw json.RawMessage) []int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var ints []int
	if err := json.Unmarshal(raw, &ints); err == nil {
		return ints
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if seed, ok := board.ParseSeed(text); ok {
			return seed
		}
	}
	return nil
}

// selectReq is the payload for POST /game/select.
type selectReq struct {
	GameID string `json:"gameId"`
	Index  *int   `json:"index"`
}

// handleSelect submits one tile pick. Ignored picks are not errors.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	e, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	accepted := e.SelectTile(*req.Index)
	_ = json.NewEncoder(w).Encode(gameRes{GameID: e.ID(), Accepted: &accepted, Snapshot: e.Snapshot()})
}

// restartReq is the payload for POST /game/restart.
type restartReq struct {
	GameID string `json:"gameId"`
}

// handleRestart reshuffles the board at the same size. Daily boards are
// fixed for the day and cannot be restarted.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	var req restartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}
	e, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	if m := s.metaFor(e.ID()); m != nil && m.Daily {
		writeErr(w, http.StatusConflict, "daily_restart_not_allowed")
		return
	}
	if err := e.Restart(); err != nil {
		writeStartErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(gameRes{GameID: e.ID(), Snapshot: e.Snapshot()})
}

// handleSnapshot returns the current state of a game.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	_ = json.NewEncoder(w).Encode(gameRes{GameID: e.ID(), Snapshot: e.Snapshot()})
}

// handleDelete ends a live game.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(r.Context(), id); err != nil {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}
	s.dropEngine(r, id)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
