package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ezpotd/intbeetrainer/internal/game"
	"github.com/ezpotd/intbeetrainer/internal/storage"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Client struct {
	hub      *Hub
	playerID string
	roomCode string // set on create/join, read and written only by readPump
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
}

func (c *Client) sendJSON(env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		c.hub.log.Error("ws send marshal failed",
			zap.String("player_id", c.playerID),
			zap.Error(err),
		)
		return
	}
	select {
	case c.send <- b:
	default:
		_ = c.conn.Close()
	}
}

func (c *Client) sendError(msg string) {
	c.sendJSON(Envelope{Type: "error", Payload: map[string]string{"message": msg}})
}

func (c *Client) readPump() {
	defer func() {
		c.handleDeparture()
		close(c.done)
		_ = c.conn.Close()

		c.hub.log.Info("ws connection closed", zap.String("player_id", c.playerID))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMsg
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("ws read failed",
					zap.String("player_id", c.playerID),
					zap.Error(err),
				)
			}
			break
		}

		c.hub.log.Info("ws message received",
			zap.String("player_id", c.playerID),
			zap.String("type", msg.Type),
		)

		switch msg.Type {
		case "create_room":
			c.handleCreateRoom(msg.Payload)
		case "join_room":
			c.handleJoinRoom(msg.Payload)
		case "start_game":
			c.handleStartGame(msg.Payload)
		case "submit_answer":
			c.handleSubmitAnswer(msg.Payload)
		case "leave_room":
			c.handleDeparture()
		default:
			c.hub.log.Warn("unknown ws message type",
				zap.String("player_id", c.playerID),
				zap.String("type", msg.Type),
			)
			c.sendError("unknown message type")
		}
	}
}

func (c *Client) handleCreateRoom(raw json.RawMessage) {
	if c.roomCode != "" {
		c.sendError("already in a room")
		return
	}

	var p CreateRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.sendError("bad payload")
		return
	}

	name := strings.TrimSpace(p.Username)
	if name == "" {
		name = "Anonymous"
	}
	host := &game.Player{ID: c.playerID, Name: name, Email: p.Email}

	cfg := game.RoomConfig{
		MinDiff:        p.MinDiff,
		MaxDiff:        p.MaxDiff,
		IncludeUnrated: p.IncludeUnrated,
		TimePerProblem: p.TimePerProblem,
		NumProblems:    p.NumProblems,
		Password:       p.Password,
	}

	room, err := c.hub.svc.CreateRoom(cfg, host)
	if err != nil {
		c.hub.log.Warn("create_room failed",
			zap.String("player_id", c.playerID),
			zap.Error(err),
		)
		c.sendError(err.Error())
		return
	}

	c.roomCode = room.Code
	c.hub.join(room.Code, c)

	c.hub.log.Info("room created",
		zap.String("room", room.Code),
		zap.String("player_id", c.playerID),
	)
	c.sendJSON(Envelope{Type: "room_created", Payload: RoomCreatedPayload{RoomID: room.Code}})
}

func (c *Client) handleJoinRoom(raw json.RawMessage) {
	if c.roomCode != "" {
		c.sendError("already in a room")
		return
	}

	var p JoinRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.sendError("bad payload")
		return
	}

	name := strings.TrimSpace(p.Username)
	if name == "" {
		name = "Guest"
	}
	player := &game.Player{ID: c.playerID, Name: name, Email: p.Email}

	room, err := c.hub.svc.JoinRoom(p.RoomID, player, p.Password)
	if err != nil {
		c.hub.log.Warn("join_room failed",
			zap.String("room", p.RoomID),
			zap.String("player_id", c.playerID),
			zap.Error(err),
		)
		c.sendError(err.Error())
		return
	}

	c.roomCode = room.Code
	c.hub.join(room.Code, c)
	c.hub.Broadcast(room.Code, Envelope{Type: "update_room", Payload: room.Snapshot()})
}

func (c *Client) handleStartGame(raw json.RawMessage) {
	var p StartGamePayload
	_ = json.Unmarshal(raw, &p)

	code := p.RoomID
	if code == "" {
		code = c.roomCode
	}
	if code == "" {
		c.sendError("not in a room")
		return
	}

	room, err := c.hub.svc.StartGame(context.Background(), code, c.playerID)
	if err != nil {
		c.hub.log.Warn("start_game failed",
			zap.String("room", code),
			zap.String("player_id", c.playerID),
			zap.Error(err),
		)
		if errors.Is(err, storage.ErrNoProblems) {
			c.sendError("No problems found!")
			return
		}
		c.sendError(err.Error())
		return
	}
	if room == nil {
		return // room vanished while the fetch was in flight
	}

	c.hub.startRound(room)
}

func (c *Client) handleSubmitAnswer(raw json.RawMessage) {
	var p SubmitAnswerPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.sendError("bad payload")
		return
	}
	if c.roomCode == "" {
		return
	}
	if p.RoomID != "" && !strings.EqualFold(p.RoomID, c.roomCode) {
		return // stale event for a room this connection already left
	}

	room, ok := c.hub.svc.GetRoom(c.roomCode)
	if !ok {
		return
	}

	res := c.hub.svc.SubmitAnswer(room, c.playerID, p.Input)
	if !res.Accepted {
		return // duplicate submission or round already over
	}

	c.sendJSON(Envelope{Type: "answer_result", Payload: AnswerResultPayload{Valid: res.Valid, Reason: res.Reason}})
	c.hub.Broadcast(room.Code, Envelope{Type: "update_room", Payload: room.Snapshot()})

	if res.AllFinished {
		c.hub.endRound(room)
	}
}

// handleDeparture covers both an explicit leave_room and the implicit
// disconnect; running it twice is harmless.
func (c *Client) handleDeparture() {
	code := c.roomCode
	c.roomCode = ""
	c.hub.leave(code, c)

	room, dep := c.hub.svc.LeaveRoom(c.playerID)
	if room == nil || !dep.Found {
		return
	}
	if dep.Empty {
		return // room and its timers are gone
	}

	c.hub.Broadcast(room.Code, Envelope{Type: "update_room", Payload: room.Snapshot()})

	if dep.AllFinished {
		c.hub.endRound(room)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.Warn("ws write failed",
					zap.String("player_id", c.playerID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
