package storage

import (
	"context"
	"errors"

	"github.com/ezpotd/intbeetrainer/internal/game"
)

var (
	ErrNoProblems      = errors.New("no problems matched")
	ErrProblemNotFound = errors.New("problem not found")
)

// ProblemFilter selects a game batch: difficulty band plus, optionally,
// the unrated (difficulty 0) pool.
type ProblemFilter struct {
	Count          int
	MinDiff        int
	MaxDiff        int
	IncludeUnrated bool
}

// ProblemRow is the admin-facing record, canonical answer included. It
// never travels on any player-facing path.
type ProblemRow struct {
	ID         int64  `json:"id"`
	Text       string `json:"problemText"`
	Answer     string `json:"answer"`
	Source     string `json:"source,omitempty"`
	Difficulty int    `json:"difficulty"`
}

type CreateProblemInput struct {
	Text       string `json:"problemText"`
	Answer     string `json:"answer"`
	Source     string `json:"source"`
	Difficulty int    `json:"difficulty"`
}

type ProblemStore interface {
	// FetchRandom returns a uniform random sample of at most f.Count
	// problems matching the filter. Fewer rows than requested is not an
	// error; an empty result is the caller's problem to surface.
	FetchRandom(ctx context.Context, f ProblemFilter) ([]game.Problem, error)

	List(ctx context.Context, difficulty *int) ([]game.PublicProblem, error)
	ListAll(ctx context.Context) ([]ProblemRow, error)
	Create(ctx context.Context, in CreateProblemInput) (ProblemRow, error)
	AnswerFor(ctx context.Context, problemID int64) (string, error)
}

type ProgressRecord struct {
	Solved   bool `json:"solved"`
	Attempts int  `json:"attempts"`
}

type ProgressStore interface {
	// MarkSolved upserts a solved mark for the user behind email. Unknown
	// emails are a silent no-op: battle players without a linked identity
	// simply leave no trace.
	MarkSolved(ctx context.Context, email string, problemID int64) error

	ForUser(ctx context.Context, email string) (map[int64]ProgressRecord, error)
}
