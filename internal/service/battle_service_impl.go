package service

import (
	"context"
	"time"

	"github.com/ezpotd/intbeetrainer/internal/game"
	"github.com/ezpotd/intbeetrainer/internal/mathcheck"
	"github.com/ezpotd/intbeetrainer/internal/storage"
	"go.uber.org/zap"
)

type battleService struct {
	registry *game.Registry
	problems storage.ProblemStore
	progress storage.ProgressStore
	log      *zap.Logger
	cfg      Config
}

func NewBattleService(registry *game.Registry, problems storage.ProblemStore, progress storage.ProgressStore, log *zap.Logger, cfg Config) BattleService {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.IntermissionPause == 0 {
		cfg.IntermissionPause = 3 * time.Second
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.PersistTimeout == 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	return &battleService{
		registry: registry,
		problems: problems,
		progress: progress,
		log:      log,
		cfg:      cfg,
	}
}

func (s *battleService) CreateRoom(cfg game.RoomConfig, host *game.Player) (*game.Room, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return s.registry.CreateRoom(cfg, host), nil
}

func (s *battleService) GetRoom(code string) (*game.Room, bool) {
	return s.registry.Get(code)
}

func (s *battleService) JoinRoom(code string, p *game.Player, password string) (*game.Room, error) {
	room, ok := s.registry.Get(code)
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	if err := room.Join(p, password); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *battleService) StartGame(ctx context.Context, code, requesterID string) (*game.Room, error) {
	room, ok := s.registry.Get(code)
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	if !room.IsHost(requesterID) {
		return nil, game.ErrNotHost
	}
	if room.Status() != game.StatusWaiting {
		return nil, game.ErrBadStatus
	}

	fctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	batch, err := s.problems.FetchRandom(fctx, storage.ProblemFilter{
		Count:          room.Config.NumProblems,
		MinDiff:        room.Config.MinDiff,
		MaxDiff:        room.Config.MaxDiff,
		IncludeUnrated: room.Config.IncludeUnrated,
	})
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, storage.ErrNoProblems
	}

	// The fetch can race a leave that emptied and deleted the room.
	if _, alive := s.registry.Get(code); !alive {
		s.log.Info("start_game discarded, room gone", zap.String("room", code))
		return nil, nil
	}

	if err := room.BeginGame(requesterID, batch); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *battleService) SubmitAnswer(room *game.Room, playerID, input string) SubmitResult {
	if room.Status() != game.StatusPlaying || room.HasActed(playerID) {
		return SubmitResult{}
	}

	prob, idx, ok := room.CurrentProblem()
	if !ok {
		return SubmitResult{}
	}

	if !mathcheck.IsLegal(input) {
		out := room.RecordFailure(playerID, idx)
		if !out.Accepted {
			return SubmitResult{}
		}
		return SubmitResult{Accepted: true, Valid: false, Reason: "Illegal Command", AllFinished: out.AllFinished}
	}

	if mathcheck.AreEquivalent(input, prob.Answer) {
		out := room.RecordSolve(playerID, idx)
		if !out.Accepted {
			return SubmitResult{}
		}
		if email := room.PlayerEmail(playerID); email != "" {
			s.persistProgress(email, prob.ID)
		}
		return SubmitResult{Accepted: true, Valid: true, AllFinished: out.AllFinished}
	}

	out := room.RecordFailure(playerID, idx)
	if !out.Accepted {
		return SubmitResult{}
	}
	return SubmitResult{Accepted: true, Valid: false, AllFinished: out.AllFinished}
}

// persistProgress runs off the scoring path entirely; failures are logged
// and dropped.
func (s *battleService) persistProgress(email string, problemID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
		defer cancel()

		if err := s.progress.MarkSolved(ctx, email, problemID); err != nil {
			s.log.Warn("progress persist failed",
				zap.String("email", email),
				zap.Int64("problem_id", problemID),
				zap.Error(err),
			)
		}
	}()
}

func (s *battleService) LeaveRoom(playerID string) (*game.Room, game.Departure) {
	room, ok := s.registry.FindByPlayer(playerID)
	if !ok {
		return nil, game.Departure{}
	}

	dep := room.MarkDisconnected(playerID)
	if dep.Empty {
		s.registry.Delete(room.Code)
		s.log.Info("room deleted, no connected players", zap.String("room", room.Code))
	}
	return room, dep
}

func (s *battleService) IntermissionPause() time.Duration {
	return s.cfg.IntermissionPause
}
