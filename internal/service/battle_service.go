package service

import (
	"context"
	"time"

	"github.com/ezpotd/intbeetrainer/internal/game"
)

// SubmitResult is what a single submission produced. Accepted=false means
// the submission was ignored entirely (duplicate, wrong phase, unknown
// player) and nothing should be sent or broadcast.
type SubmitResult struct {
	Accepted    bool
	Valid       bool
	Reason      string
	AllFinished bool
}

type Config struct {
	IntermissionPause time.Duration
	FetchTimeout      time.Duration
	PersistTimeout    time.Duration
}

type BattleService interface {
	CreateRoom(cfg game.RoomConfig, host *game.Player) (*game.Room, error)
	GetRoom(code string) (*game.Room, bool)
	JoinRoom(code string, p *game.Player, password string) (*game.Room, error)

	// StartGame fetches the problem batch and installs it into the room.
	// A nil room with a nil error means the room disappeared while the
	// query was in flight and the batch was discarded.
	StartGame(ctx context.Context, code, requesterID string) (*game.Room, error)

	SubmitAnswer(room *game.Room, playerID, input string) SubmitResult
	LeaveRoom(playerID string) (*game.Room, game.Departure)

	IntermissionPause() time.Duration
}
