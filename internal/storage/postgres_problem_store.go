package storage

import (
	"context"
	"errors"

	"github.com/ezpotd/intbeetrainer/internal/game"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresProblemStore struct {
	db *pgxpool.Pool
}

func NewPostgresProblemStore(db *pgxpool.Pool) *PostgresProblemStore {
	return &PostgresProblemStore{db: db}
}

func (s *PostgresProblemStore) FetchRandom(ctx context.Context, f ProblemFilter) ([]game.Problem, error) {
	where := `(difficulty BETWEEN $1 AND $2)`
	if f.IncludeUnrated {
		where += ` OR (difficulty = 0)`
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, problem_text, problem_answer_computed, difficulty
		FROM integration_problems
		WHERE `+where+`
		ORDER BY random()
		LIMIT $3
	`, f.MinDiff, f.MaxDiff, f.Count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]game.Problem, 0, f.Count)
	for rows.Next() {
		var p game.Problem
		if err := rows.Scan(&p.ID, &p.Text, &p.Answer, &p.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresProblemStore) List(ctx context.Context, difficulty *int) ([]game.PublicProblem, error) {
	q := `SELECT id, problem_text, difficulty FROM integration_problems`
	args := []interface{}{}
	if difficulty != nil {
		q += ` WHERE difficulty = $1`
		args = append(args, *difficulty)
	}
	q += ` ORDER BY id ASC`

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]game.PublicProblem, 0)
	for rows.Next() {
		var p game.PublicProblem
		if err := rows.Scan(&p.ID, &p.Text, &p.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresProblemStore) ListAll(ctx context.Context) ([]ProblemRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, problem_text, problem_answer_computed, COALESCE(source, ''), difficulty
		FROM integration_problems
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ProblemRow, 0)
	for rows.Next() {
		var r ProblemRow
		if err := rows.Scan(&r.ID, &r.Text, &r.Answer, &r.Source, &r.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresProblemStore) Create(ctx context.Context, in CreateProblemInput) (ProblemRow, error) {
	var row ProblemRow
	err := s.db.QueryRow(ctx, `
		INSERT INTO integration_problems (problem_text, problem_answer_computed, source, difficulty)
		VALUES ($1, $2, $3, $4)
		RETURNING id, problem_text, problem_answer_computed, COALESCE(source, ''), difficulty
	`, in.Text, in.Answer, in.Source, in.Difficulty).Scan(
		&row.ID, &row.Text, &row.Answer, &row.Source, &row.Difficulty,
	)
	if err != nil {
		return ProblemRow{}, err
	}
	return row, nil
}

func (s *PostgresProblemStore) AnswerFor(ctx context.Context, problemID int64) (string, error) {
	var answer string
	err := s.db.QueryRow(ctx, `
		SELECT problem_answer_computed FROM integration_problems WHERE id = $1
	`, problemID).Scan(&answer)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrProblemNotFound
	}
	return answer, err
}
