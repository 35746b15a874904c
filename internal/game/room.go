package game

import (
	"sync"
	"time"
)

// Room is one battle session. All mutation goes through mutex-guarded
// methods; rooms are fully independent of each other, so there is no
// cross-room locking anywhere.
type Room struct {
	Code   string
	Config RoomConfig

	mu           sync.Mutex
	status       Status
	hostID       string
	players      []*Player // join order
	problems     []Problem
	currentIndex int

	roundSolvers []string // arrival order, determines score
	roundFailers []string // arrival order
	roundEndTime time.Time

	// timerGen increments on every round transition. A scheduled timer
	// carries the generation it was armed under and no-ops when stale.
	timerGen int64
}

func NewRoom(code string, cfg RoomConfig, host *Player) *Room {
	host.Connected = true
	return &Room{
		Code:    code,
		Config:  cfg,
		status:  StatusWaiting,
		hostID:  host.ID,
		players: []*Player{host},
	}
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

func (r *Room) IsHost(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID == playerID
}

// HasConnectedPlayer ignores soft-left entries: a player who departed is
// still listed for the scoreboard but no longer belongs to this room for
// routing purposes.
func (r *Room) HasConnectedPlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.findLocked(playerID)
	return p != nil && p.Connected
}

func (r *Room) PlayerEmail(playerID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.findLocked(playerID); p != nil {
		return p.Email
	}
	return ""
}

func (r *Room) IsCurrentGen(gen int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timerGen == gen
}

// Join adds a new player, or reactivates an existing entry when the same
// connection id rejoins. Only possible while the room is waiting.
func (r *Room) Join(p *Player, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusWaiting {
		return ErrGameInProgress
	}
	if r.Config.Password != "" && r.Config.Password != password {
		return ErrWrongPassword
	}

	if existing := r.findLocked(p.ID); existing != nil {
		existing.Connected = true
		return nil
	}

	p.Connected = true
	r.players = append(r.players, p)
	return nil
}

// Departure describes the consequences of a player going away.
type Departure struct {
	Found       bool
	Empty       bool
	HostChanged bool
	AllFinished bool
}

// MarkDisconnected soft-removes a player: the entry stays for the final
// scoreboard. The host role moves to the earliest-joined connected player,
// and a departure can complete the active round.
func (r *Room) MarkDisconnected(playerID string) Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.findLocked(playerID)
	if player == nil {
		return Departure{}
	}
	player.Connected = false

	dep := Departure{Found: true}
	connected := r.connectedLocked()

	if len(connected) == 0 {
		r.timerGen++ // orphan any pending timer
		dep.Empty = true
		return dep
	}

	if r.hostID == playerID {
		r.hostID = connected[0].ID
		dep.HostChanged = true
	}

	if r.status == StatusPlaying && r.allFinishedLocked(connected) {
		dep.AllFinished = true
	}
	return dep
}

// BeginGame installs the fetched problem batch. Host-only, waiting-only;
// the status flips to PLAYING in StartRound.
func (r *Room) BeginGame(requesterID string, problems []Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hostID != requesterID {
		return ErrNotHost
	}
	if r.status != StatusWaiting {
		return ErrBadStatus
	}
	if len(problems) == 0 {
		return ErrBadStatus
	}

	r.problems = problems
	r.currentIndex = 0
	return nil
}

type RoundInfo struct {
	Problem PublicProblem
	Round   int
	Total   int
	EndTime time.Time
	Gen     int64
}

// StartRound enters PLAYING for the current problem. Once the problem list
// is exhausted it moves the room to FINISHED instead and reports
// started=false.
func (r *Room) StartRound() (RoundInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusWaiting && r.status != StatusIntermission {
		return RoundInfo{}, false
	}
	if len(r.problems) == 0 {
		return RoundInfo{}, false
	}

	if r.currentIndex >= len(r.problems) {
		r.status = StatusFinished
		r.timerGen++
		return RoundInfo{}, false
	}

	r.status = StatusPlaying
	r.roundSolvers = r.roundSolvers[:0]
	r.roundFailers = r.roundFailers[:0]
	r.roundEndTime = time.Now().Add(time.Duration(r.Config.TimePerProblem) * time.Second)
	r.timerGen++

	return RoundInfo{
		Problem: r.problems[r.currentIndex].Public(),
		Round:   r.currentIndex + 1,
		Total:   len(r.problems),
		EndTime: r.roundEndTime,
		Gen:     r.timerGen,
	}, true
}

// EndRound moves PLAYING to INTERMISSION. Idempotent: the deadline timer,
// an all-finished submission and a departure can all race here, and only
// the first caller transitions. The generation bump supersedes the pending
// deadline timer.
func (r *Room) EndRound() (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying {
		return 0, false
	}
	r.status = StatusIntermission
	r.timerGen++
	return r.timerGen, true
}

// AdvanceRound moves the problem pointer forward, once per intermission.
// The pointer never moves any other way.
func (r *Room) AdvanceRound() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusIntermission {
		return false
	}
	r.currentIndex++
	return true
}

// CurrentProblem returns the active problem and its index. The index ties
// a grading result back to the round it was read under.
func (r *Room) CurrentProblem() (Problem, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying || r.currentIndex >= len(r.problems) {
		return Problem{}, 0, false
	}
	return r.problems[r.currentIndex], r.currentIndex, true
}

func (r *Room) HasActed(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.actedLocked(playerID)
}

type SubmitOutcome struct {
	Accepted    bool
	Points      int
	AllFinished bool
}

// RecordSolve credits a correct answer. The award is max(1, n+1-rank)
// where n counts currently connected players and rank is the 1-based
// arrival position among this round's solvers. problemIndex is the index
// the answer was graded against; a submission that straddled a round
// transition is rejected rather than credited to the wrong problem.
func (r *Room) RecordSolve(playerID string, problemIndex int) SubmitOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying || r.currentIndex != problemIndex || r.actedLocked(playerID) {
		return SubmitOutcome{}
	}
	player := r.findLocked(playerID)
	if player == nil {
		return SubmitOutcome{}
	}

	connected := r.connectedLocked()
	rank := len(r.roundSolvers) + 1
	points := len(connected) + 1 - rank
	if points < 1 {
		points = 1
	}

	player.Score += points
	r.roundSolvers = append(r.roundSolvers, playerID)

	return SubmitOutcome{
		Accepted:    true,
		Points:      points,
		AllFinished: r.allFinishedLocked(connected),
	}
}

// RecordFailure marks a wrong or illegal answer. No score change.
func (r *Room) RecordFailure(playerID string, problemIndex int) SubmitOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPlaying || r.currentIndex != problemIndex || r.actedLocked(playerID) {
		return SubmitOutcome{}
	}
	if r.findLocked(playerID) == nil {
		return SubmitOutcome{}
	}

	r.roundFailers = append(r.roundFailers, playerID)

	return SubmitOutcome{
		Accepted:    true,
		AllFinished: r.allFinishedLocked(r.connectedLocked()),
	}
}

// RoomSnapshot is the client-facing projection: no canonical answers, no
// password, no timer internals.
type RoomSnapshot struct {
	Code                string          `json:"id"`
	Status              Status          `json:"status"`
	HostID              string          `json:"hostId"`
	Config              RoomConfig      `json:"config"`
	Players             []Player        `json:"players"`
	Problems            []PublicProblem `json:"problems"`
	CurrentProblemIndex int             `json:"currentProblemIndex"`
	RoundSolvers        []string        `json:"roundSolvers"`
	RoundFailers        []string        `json:"roundFailers"`
	RoundEndTime        int64           `json:"roundEndTime,omitempty"`
}

func (r *Room) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, *p)
	}

	problems := make([]PublicProblem, 0, len(r.problems))
	for _, p := range r.problems {
		problems = append(problems, p.Public())
	}

	solvers := make([]string, 0, len(r.roundSolvers))
	solvers = append(solvers, r.roundSolvers...)

	failers := make([]string, 0, len(r.roundFailers))
	failers = append(failers, r.roundFailers...)

	var deadline int64
	if r.status == StatusPlaying && !r.roundEndTime.IsZero() {
		deadline = r.roundEndTime.UnixMilli()
	}

	return RoomSnapshot{
		Code:                r.Code,
		Status:              r.status,
		HostID:              r.hostID,
		Config:              r.Config,
		Players:             players,
		Problems:            problems,
		CurrentProblemIndex: r.currentIndex,
		RoundSolvers:        solvers,
		RoundFailers:        failers,
		RoundEndTime:        deadline,
	}
}

func (r *Room) findLocked(playerID string) *Player {
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (r *Room) connectedLocked() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.Connected {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) actedLocked(playerID string) bool {
	for _, id := range r.roundSolvers {
		if id == playerID {
			return true
		}
	}
	for _, id := range r.roundFailers {
		if id == playerID {
			return true
		}
	}
	return false
}

func (r *Room) allFinishedLocked(connected []*Player) bool {
	if len(connected) == 0 {
		return false
	}
	for _, p := range connected {
		if !r.actedLocked(p.ID) {
			return false
		}
	}
	return true
}
