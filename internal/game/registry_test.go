package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateRoom_CodeShape(t *testing.T) {
	reg := NewRegistry()

	room := reg.CreateRoom(testConfig(), &Player{ID: "p1"})
	require.Len(t, room.Code, codeLength)
	for _, c := range room.Code {
		require.Contains(t, codeAlphabet, string(c))
	}
}

func TestRegistry_Get_CaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	room := reg.CreateRoom(testConfig(), &Player{ID: "p1"})

	got, ok := reg.Get(strings.ToLower(room.Code))
	require.True(t, ok)
	require.Same(t, room, got)

	_, ok = reg.Get("NOSUCH")
	require.False(t, ok)
}

func TestRegistry_Delete(t *testing.T) {
	reg := NewRegistry()
	room := reg.CreateRoom(testConfig(), &Player{ID: "p1"})

	reg.Delete(room.Code)
	_, ok := reg.Get(room.Code)
	require.False(t, ok)
}

func TestRegistry_FindByPlayer(t *testing.T) {
	reg := NewRegistry()
	room := reg.CreateRoom(testConfig(), &Player{ID: "p1"})
	require.NoError(t, room.Join(&Player{ID: "p2"}, ""))

	got, ok := reg.FindByPlayer("p2")
	require.True(t, ok)
	require.Same(t, room, got)

	_, ok = reg.FindByPlayer("stranger")
	require.False(t, ok)
}

func TestRegistry_FindByPlayer_IgnoresSoftLeftEntries(t *testing.T) {
	reg := NewRegistry()

	// p2 leaves roomA (scoreboard entry retained) and hosts roomB. The
	// lookup must resolve to roomB no matter the map iteration order.
	roomA := reg.CreateRoom(testConfig(), &Player{ID: "p1"})
	require.NoError(t, roomA.Join(&Player{ID: "p2"}, ""))
	roomA.MarkDisconnected("p2")

	roomB := reg.CreateRoom(testConfig(), &Player{ID: "p2"})

	got, ok := reg.FindByPlayer("p2")
	require.True(t, ok)
	require.Same(t, roomB, got)

	// Fully departed players resolve nowhere.
	roomB.MarkDisconnected("p2")
	_, ok = reg.FindByPlayer("p2")
	require.False(t, ok)
}
