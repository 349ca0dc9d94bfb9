package services

import (
	"testing"

	"coinflip_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndFind(t *testing.T) {
	reg := NewPlayerRegistry()
	conn := newFakeConn("c1")

	player := reg.Register(conn, "alice", 250)

	assert.Equal(t, models.StatusOnline, player.Status)
	assert.Equal(t, 250, player.Wallet)

	found, ok := reg.Find("c1")
	require.True(t, ok)
	assert.Same(t, player, found)

	byName, ok := reg.FindByUsername("alice")
	require.True(t, ok)
	assert.Same(t, player, byName)

	_, ok = reg.Find("c2")
	assert.False(t, ok)
}

func TestRegisterEvictsStaleConnection(t *testing.T) {
	reg := NewPlayerRegistry()
	reg.Register(newFakeConn("old"), "alice", 100)
	reg.Register(newFakeConn("new"), "alice", 100)

	_, ok := reg.Find("old")
	assert.False(t, ok, "stale record should be evicted")
	assert.Equal(t, 1, reg.Count())

	p, ok := reg.FindByUsername("alice")
	require.True(t, ok)
	assert.Equal(t, "new", p.Conn.ID())
}

func TestRemoveReturnsRecordForCascade(t *testing.T) {
	reg := NewPlayerRegistry()
	reg.Register(newFakeConn("c1"), "alice", 100)

	removed, ok := reg.Remove("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", removed.Username)
	assert.Equal(t, 0, reg.Count())

	_, ok = reg.Remove("c1")
	assert.False(t, ok)
}

func TestSetStatusRejectsIllegalTransition(t *testing.T) {
	reg := NewPlayerRegistry()
	reg.Register(newFakeConn("c1"), "alice", 100)

	require.NoError(t, reg.SetStatus("c1", models.StatusSearching))
	err := reg.SetStatus("c1", models.StatusHostingRoom)
	assert.ErrorIs(t, err, ErrActionUnavailable, "clients get the sentinel, not transition internals")

	p, _ := reg.Find("c1")
	assert.Equal(t, models.StatusSearching, p.Status, "status unchanged after rejected transition")
}

func TestSetStatusUnknownConnection(t *testing.T) {
	reg := NewPlayerRegistry()
	assert.ErrorIs(t, reg.SetStatus("missing", models.StatusInLobby), ErrPlayerNotFound)
}

func TestInLobbyRoster(t *testing.T) {
	reg := NewPlayerRegistry()
	reg.Register(newFakeConn("c1"), "alice", 100)
	reg.Register(newFakeConn("c2"), "bob", 100)
	reg.Register(newFakeConn("c3"), "carol", 100)

	require.NoError(t, reg.SetStatus("c1", models.StatusInLobby))
	require.NoError(t, reg.SetStatus("c2", models.StatusInLobby))

	roster := reg.InLobby()
	assert.Len(t, roster, 2)
	for _, p := range roster {
		assert.NotEqual(t, "carol", p.Username)
	}
}
