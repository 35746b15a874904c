package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ezpotd/intbeetrainer/internal/game"
	"github.com/ezpotd/intbeetrainer/internal/mathcheck"
	"github.com/ezpotd/intbeetrainer/internal/storage"
)

var ErrIllegalInput = errors.New("illegal command")

// CatalogService is the trainer-side surface: the problem catalog, the
// single-player verification path (same sanitizer and checker the battle
// rooms use), and progress reads.
type CatalogService interface {
	CreateProblem(ctx context.Context, in storage.CreateProblemInput) (storage.ProblemRow, error)
	ListProblems(ctx context.Context, difficulty *int) ([]game.PublicProblem, error)
	ListProblemRows(ctx context.Context) ([]storage.ProblemRow, error)
	Verify(ctx context.Context, problemID int64, input string) (bool, error)
	ProgressFor(ctx context.Context, email string) (map[int64]storage.ProgressRecord, error)
}

type catalogService struct {
	problems storage.ProblemStore
	progress storage.ProgressStore
}

func NewCatalogService(problems storage.ProblemStore, progress storage.ProgressStore) CatalogService {
	return &catalogService{problems: problems, progress: progress}
}

func (c *catalogService) CreateProblem(ctx context.Context, in storage.CreateProblemInput) (storage.ProblemRow, error) {
	in.Text = strings.TrimSpace(in.Text)
	in.Answer = strings.TrimSpace(in.Answer)
	if in.Text == "" || in.Answer == "" {
		return storage.ProblemRow{}, errors.New("invalid problem payload")
	}
	if in.Difficulty < 0 || in.Difficulty > 5 {
		return storage.ProblemRow{}, errors.New("invalid problem payload")
	}
	return c.problems.Create(ctx, in)
}

func (c *catalogService) ListProblems(ctx context.Context, difficulty *int) ([]game.PublicProblem, error) {
	return c.problems.List(ctx, difficulty)
}

func (c *catalogService) ListProblemRows(ctx context.Context) ([]storage.ProblemRow, error) {
	return c.problems.ListAll(ctx)
}

func (c *catalogService) Verify(ctx context.Context, problemID int64, input string) (bool, error) {
	if !mathcheck.IsLegal(input) {
		return false, ErrIllegalInput
	}
	answer, err := c.problems.AnswerFor(ctx, problemID)
	if err != nil {
		return false, err
	}
	return mathcheck.AreEquivalent(input, answer), nil
}

func (c *catalogService) ProgressFor(ctx context.Context, email string) (map[int64]storage.ProgressRecord, error) {
	return c.progress.ForUser(ctx, email)
}
