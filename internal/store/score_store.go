package store

import (
	"context"
	"errors"
	"fmt"

	"example.com/mastermind/internal/mastermind"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScoreStore is the durable score memo table. It satisfies
// scoring.ScoreCache.
type ScoreStore struct {
	db *pgxpool.Pool
}

func NewScoreStore(db *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{db: db}
}

func (s *ScoreStore) Get(ctx context.Context, key string) (mastermind.Score, bool, error) {
	var sc mastermind.Score
	err := s.db.QueryRow(ctx, `
		SELECT strong, weak
		FROM scores
		WHERE score_key = $1
	`, key).Scan(&sc.Strong, &sc.Weak)

	if errors.Is(err, pgx.ErrNoRows) {
		return mastermind.Score{}, false, nil
	}
	if err != nil {
		return mastermind.Score{}, false, fmt.Errorf("select score %q: %w", key, err)
	}
	return sc, true, nil
}

// Put is idempotent: a (secret, guess) pair always scores the same.
func (s *ScoreStore) Put(ctx context.Context, key string, sc mastermind.Score) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO scores (score_key, strong, weak)
		VALUES ($1, $2, $3)
		ON CONFLICT (score_key) DO NOTHING
	`, key, sc.Strong, sc.Weak)
	if err != nil {
		return fmt.Errorf("insert score %q: %w", key, err)
	}
	return nil
}

func (s *ScoreStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM scores`).Scan(&n)
	return n, err
}
