package game

type Status string

const (
	StatusWaiting      Status = "WAITING"
	StatusPlaying      Status = "PLAYING"
	StatusIntermission Status = "INTERMISSION"
	StatusFinished     Status = "FINISHED"
)

// RoomConfig is fixed at room creation. The password gates joining and is
// never serialized into snapshots.
type RoomConfig struct {
	MinDiff        int    `json:"minDiff"`
	MaxDiff        int    `json:"maxDiff"`
	IncludeUnrated bool   `json:"includeUnrated"`
	TimePerProblem int    `json:"timePerProblem"`
	NumProblems    int    `json:"numProblems"`
	Password       string `json:"-"`
}

func (c RoomConfig) Validate() error {
	if c.TimePerProblem < 0 || c.TimePerProblem > 600 {
		return ErrBadConfig
	}
	if c.NumProblems < 1 || c.NumProblems > 100 {
		return ErrBadConfig
	}
	if c.MinDiff > c.MaxDiff {
		return ErrBadConfig
	}
	return nil
}

// Player identity is the connection id, so it changes on reconnect.
// Disconnected players stay in the room for scoreboard continuity.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Email     string `json:"-"`
	Connected bool   `json:"connected"`
}

// Problem is the server-side record. The canonical answer never reaches a
// client: outbound payloads carry the PublicProblem projection instead.
type Problem struct {
	ID         int64
	Text       string
	Answer     string
	Difficulty int
}

type PublicProblem struct {
	ID         int64  `json:"id"`
	Text       string `json:"problemText"`
	Difficulty int    `json:"difficulty"`
}

func (p Problem) Public() PublicProblem {
	return PublicProblem{ID: p.ID, Text: p.Text, Difficulty: p.Difficulty}
}
