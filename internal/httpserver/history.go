package httpserver

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/acciojob/memory-game-faizvk/internal/daily"
	"github.com/acciojob/memory-game-faizvk/internal/game"
)

const (
	statusPlaying = "playing"
	statusSolved  = "solved"
)

// recordEvent persists engine lifecycle events. Each session becomes one
// games row; solving it updates the row, the owner's stats and, for daily
// boards, the leaderboard. Failures are logged and never reach the player.
func (s *Server) recordEvent(gm *gameMeta, ev game.Event) {
	if s.db == nil {
		return
	}
	s.histMu.Lock()
	defer s.histMu.Unlock()
	meta := s.metaView(gm)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap := ev.Snapshot
	l := log.With().Str("gameId", snap.GameID).Str("sessionId", snap.SessionID).Logger()

	switch ev.Type {
	case game.EventStarted:
		var userID, anonID any
		if meta.UserID != "" {
			userID = meta.UserID
		} else {
			anonID = meta.AnonID
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO games (id, game_id, user_id, anonymous_id, difficulty, pair_count, attempts, status, started_at)
			 VALUES (?,?,?,?,?,?,0,?,?)`,
			snap.SessionID, snap.GameID, userID, anonID, meta.Difficulty, snap.PairCount, statusPlaying,
			snap.StartedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			l.Warn().Err(err).Msg("record game start")
			return
		}
		if meta.UserID != "" {
			if _, err := s.db.ExecContext(ctx,
				`UPDATE users SET games_played = games_played + 1 WHERE id=?`, meta.UserID); err != nil {
				l.Warn().Err(err).Msg("bump games played")
			}
		}

	case game.EventSolved:
		now := s.sched.Now()
		if _, err := s.db.ExecContext(ctx,
			`UPDATE games SET status=?, attempts=?, finished_at=? WHERE id=?`,
			statusSolved, snap.Attempts, now.UTC().Format(time.RFC3339Nano), snap.SessionID); err != nil {
			l.Warn().Err(err).Msg("record game solved")
		}
		if meta.UserID != "" {
			if _, err := s.db.ExecContext(ctx,
				`UPDATE users SET wins = wins + 1,
				   best_attempts = CASE WHEN best_attempts IS NULL OR best_attempts > ? THEN ? ELSE best_attempts END
				 WHERE id=?`, snap.Attempts, snap.Attempts, meta.UserID); err != nil {
				l.Warn().Err(err).Msg("bump wins")
			}
		}
		if meta.Daily {
			res := daily.Result{
				UserID:     meta.owner(),
				Date:       meta.Date,
				Difficulty: meta.Difficulty,
				Attempts:   snap.Attempts,
				ElapsedMs:  int(now.Sub(snap.StartedAt).Milliseconds()),
			}
			if err := daily.NewStore(s.db).InsertResult(ctx, res); err != nil {
				l.Warn().Err(err).Msg("record daily result")
			}
		}
		l.Info().Int("attempts", snap.Attempts).Str("difficulty", meta.Difficulty).Msg("game solved")
	}
}
