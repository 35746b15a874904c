package game

import (
	"crypto/rand"
	"strings"
	"sync"
)

const (
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 6
)

// Registry is the process-wide store of active rooms, keyed by room code.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// CreateRoom generates a fresh code under the registry lock, retrying on
// the rare collision.
func (reg *Registry) CreateRoom(cfg RoomConfig, host *Player) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var code string
	for {
		code = generateCode(codeLength)
		if _, exists := reg.rooms[code]; !exists {
			break
		}
	}

	room := NewRoom(code, cfg, host)
	reg.rooms[code] = room
	return room
}

func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	r, ok := reg.rooms[strings.ToUpper(code)]
	return r, ok
}

func (reg *Registry) Delete(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.rooms, strings.ToUpper(code))
}

// FindByPlayer resolves the room a connection belongs to. Disconnects
// arrive without a room code, so this is the lookup the leave path uses.
// Only connected membership counts: a soft-left scoreboard entry in an
// earlier room must never capture a departure meant for the current one.
func (reg *Registry) FindByPlayer(playerID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for _, room := range reg.rooms {
		if room.HasConnectedPlayer(playerID) {
			return room, true
		}
	}
	return nil, false
}

func generateCode(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}
