package ws

import (
	"time"

	"github.com/ezpotd/intbeetrainer/internal/game"
	"go.uber.org/zap"
)

// Round pacing. A round runs until its deadline or until everyone has
// acted, then the room sits in intermission before the next problem.
// Every sleeper re-checks its generation and the registry on wake, so a
// superseded or orphaned timer is a no-op.

func (h *Hub) startRound(room *game.Room) {
	info, started := room.StartRound()
	if !started {
		if room.Status() == game.StatusFinished {
			h.log.Info("game finished", zap.String("room", room.Code))
			h.Broadcast(room.Code, Envelope{Type: "update_room", Payload: room.Snapshot()})
		}
		return
	}

	h.log.Info("round started",
		zap.String("room", room.Code),
		zap.Int("round", info.Round),
		zap.Int("total", info.Total),
	)

	h.Broadcast(room.Code, Envelope{Type: "update_room", Payload: room.Snapshot()})
	h.Broadcast(room.Code, Envelope{Type: "game_started", Payload: GameStartedPayload{
		Problem:      info.Problem,
		TotalRounds:  info.Total,
		CurrentRound: info.Round,
		EndTime:      info.EndTime.UnixMilli(),
	}})

	go h.scheduleRoundDeadline(room, info.Gen, info.EndTime)
}

func (h *Hub) scheduleRoundDeadline(room *game.Room, gen int64, deadline time.Time) {
	if d := time.Until(deadline); d > 0 {
		time.Sleep(d)
	}

	if !room.IsCurrentGen(gen) {
		return
	}
	if _, ok := h.svc.GetRoom(room.Code); !ok {
		return
	}

	h.endRound(room)
}

func (h *Hub) endRound(room *game.Room) {
	gen, ok := room.EndRound()
	if !ok {
		return
	}

	h.log.Info("round ended", zap.String("room", room.Code))
	h.Broadcast(room.Code, Envelope{Type: "update_room", Payload: room.Snapshot()})

	go h.scheduleIntermission(room, gen)
}

func (h *Hub) scheduleIntermission(room *game.Room, gen int64) {
	time.Sleep(h.svc.IntermissionPause())

	if !room.IsCurrentGen(gen) {
		return
	}
	if _, ok := h.svc.GetRoom(room.Code); !ok {
		return
	}

	if room.AdvanceRound() {
		h.startRound(room)
	}
}
