package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeQuit     Outcome = "quit"
	OutcomeGameOver Outcome = "game_over"
	OutcomeTimeUp   Outcome = "time_up"
	OutcomeFailed   Outcome = "failed"
)

type SessionRecord struct {
	ID        uuid.UUID
	Seed      string
	Ticks     uint64
	SimTime   time.Duration
	Kills     int
	Waves     int
	Score     int
	Outcome   Outcome
	StartedAt time.Time
	EndedAt   time.Time
}

// Rank is one line of the high-score table.
type Rank struct {
	ID      uuid.UUID
	Score   int
	Waves   int
	EndedAt time.Time
}

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Insert(ctx context.Context, rec SessionRecord) error {
	if rec.ID == uuid.Nil {
		return fmt.Errorf("insert session: nil id")
	}
	if rec.EndedAt.IsZero() {
		rec.EndedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, seed, ticks, sim_time_ms, kills, waves, score, outcome, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.Seed, int64(rec.Ticks), rec.SimTime.Milliseconds(),
		rec.Kills, rec.Waves, rec.Score, string(rec.Outcome), rec.StartedAt, rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", rec.ID, err)
	}
	return nil
}

// Top returns the n best sessions by score, newest first on ties.
func (r *SessionRepo) Top(ctx context.Context, n int) ([]Rank, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, score, waves, ended_at
		 FROM sessions ORDER BY score DESC, ended_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Rank
	for rows.Next() {
		var rk Rank
		if err := rows.Scan(&rk.ID, &rk.Score, &rk.Waves, &rk.EndedAt); err != nil {
			return nil, err
		}
		result = append(result, rk)
	}
	return result, rows.Err()
}
