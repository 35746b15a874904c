package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresProgressStore struct {
	db *pgxpool.Pool
}

func NewPostgresProgressStore(db *pgxpool.Pool) *PostgresProgressStore {
	return &PostgresProgressStore{db: db}
}

func (s *PostgresProgressStore) MarkSolved(ctx context.Context, email string, problemID int64) error {
	userID, ok, err := s.userID(ctx, email)
	if err != nil || !ok {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO user_progress (user_id, problem_id, is_solved, attempts, last_updated)
		VALUES ($1, $2, true, 1, NOW())
		ON CONFLICT (user_id, problem_id)
		DO UPDATE SET
			is_solved = true,
			attempts = user_progress.attempts + 1,
			last_updated = NOW()
	`, userID, problemID)
	return err
}

func (s *PostgresProgressStore) ForUser(ctx context.Context, email string) (map[int64]ProgressRecord, error) {
	out := make(map[int64]ProgressRecord)

	userID, ok, err := s.userID(ctx, email)
	if err != nil || !ok {
		return out, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT problem_id, is_solved, attempts FROM user_progress WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var problemID int64
		var rec ProgressRecord
		if err := rows.Scan(&problemID, &rec.Solved, &rec.Attempts); err != nil {
			return nil, err
		}
		out[problemID] = rec
	}
	return out, rows.Err()
}

func (s *PostgresProgressStore) userID(ctx context.Context, email string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
