package ws

import (
	"encoding/json"

	"github.com/ezpotd/intbeetrainer/internal/game"
)

type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type clientMsg struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type CreateRoomPayload struct {
	Username       string `json:"username"`
	Email          string `json:"userEmail"`
	MinDiff        int    `json:"minDiff"`
	MaxDiff        int    `json:"maxDiff"`
	IncludeUnrated bool   `json:"includeUnrated"`
	TimePerProblem int    `json:"timePerProblem"`
	NumProblems    int    `json:"numProblems"`
	Password       string `json:"password"`
}

type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"userEmail"`
}

type StartGamePayload struct {
	RoomID string `json:"roomId"`
}

type SubmitAnswerPayload struct {
	RoomID string `json:"roomId"`
	Input  string `json:"input"`
}

type RoomCreatedPayload struct {
	RoomID string `json:"roomId"`
}

type GameStartedPayload struct {
	Problem      game.PublicProblem `json:"problem"`
	TotalRounds  int                `json:"totalRounds"`
	CurrentRound int                `json:"currentRound"`
	EndTime      int64              `json:"endTime"`
}

type AnswerResultPayload struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
