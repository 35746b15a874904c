package ws

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/ezpotd/intbeetrainer/internal/service"
	"go.uber.org/zap"
)

// Hub tracks which connections belong to which room and fans room events
// out to every member. Membership follows the socket protocol: a client
// has no room until it creates or joins one.
type Hub struct {
	svc service.BattleService
	log *zap.Logger

	mu            sync.RWMutex
	clientsByRoom map[string]map[string]*Client
}

func NewHub(svc service.BattleService, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		svc:           svc,
		log:           log,
		clientsByRoom: make(map[string]map[string]*Client),
	}
}

func (h *Hub) join(roomCode string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rc := strings.ToUpper(roomCode)
	if _, ok := h.clientsByRoom[rc]; !ok {
		h.clientsByRoom[rc] = make(map[string]*Client)
	}
	h.clientsByRoom[rc][c.playerID] = c

	h.log.Info("ws client joined room",
		zap.String("room", rc),
		zap.String("player_id", c.playerID),
	)
}

func (h *Hub) leave(roomCode string, c *Client) {
	if roomCode == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	rc := strings.ToUpper(roomCode)
	if roomClients, ok := h.clientsByRoom[rc]; ok {
		delete(roomClients, c.playerID)
		if len(roomClients) == 0 {
			delete(h.clientsByRoom, rc)
		}
	}
}

// Broadcast marshals once and fans out. A client whose send buffer is full
// gets its connection closed; the read pump then runs the normal
// departure path.
func (h *Hub) Broadcast(roomCode string, env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		h.log.Error("ws broadcast marshal failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	roomClients := h.clientsByRoom[strings.ToUpper(roomCode)]
	clients := make([]*Client, 0, len(roomClients))
	for _, c := range roomClients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- b:
		default:
			h.log.Warn("ws client too slow, dropping",
				zap.String("room", roomCode),
				zap.String("player_id", c.playerID),
			)
			_ = c.conn.Close()
		}
	}
}
