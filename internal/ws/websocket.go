package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades the request and runs the connection's pumps. Each
// connection gets a fresh player id; identity across reconnects is a
// client-side concern handled through join_room.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:      h,
		playerID: uuid.NewString(),
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}

	h.log.Info("ws connection opened",
		zap.String("player_id", client.playerID),
		zap.String("remote", r.RemoteAddr),
	)

	go client.writePump()
	client.readPump()
}
