package daily

import (
	"context"
	"database/sql"
)

// Result is one player's solved daily board.
type Result struct {
	UserID     string `json:"userId"`
	Date       string `json:"date"`
	Difficulty string `json:"difficulty"`
	Attempts   int    `json:"attempts"`
	ElapsedMs  int    `json:"elapsedMs"`
}

// Store persists daily results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date and difficulty.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date, difficulty string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=? AND difficulty=?`,
		userID, date, difficulty,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a result; a second result for the same
// (user, date, difficulty) is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, difficulty, attempts, elapsed_ms)
		 VALUES(?,?,?,?,?)`, r.UserID, r.Date, r.Difficulty, r.Attempts, r.ElapsedMs,
	)
	return err
}

// LBRow is one leaderboard entry.
type LBRow struct {
	UserID    string `json:"userId"`
	Attempts  int    `json:"attempts"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Leaderboard returns the best results for a board: fewest attempts first,
// then fastest, then earliest. limit <= 0 means 20.
func (s *Store) Leaderboard(ctx context.Context, date, difficulty string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, attempts, elapsed_ms
		 FROM daily_results
		 WHERE date=? AND difficulty=?
		 ORDER BY attempts ASC, elapsed_ms ASC, created_at ASC
		 LIMIT ?`, date, difficulty, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Attempts, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
