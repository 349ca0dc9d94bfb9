package services

import (
	"log"
	"sync"

	"coinflip_server/models"
)

// PlayerRegistry maps active connections to online-player records. It owns
// the map and every mutation of a record's status; other services go through
// its operations rather than touching records directly.
type PlayerRegistry struct {
	mu      sync.RWMutex
	players map[string]*models.OnlinePlayer // keyed by connection id
}

// NewPlayerRegistry creates an empty registry
func NewPlayerRegistry() *PlayerRegistry {
	return &PlayerRegistry{players: make(map[string]*models.OnlinePlayer)}
}

// Register records a newly attached connection. A user holds at most one
// live record; a leftover record for the same username is dropped so the map
// invariant holds even if the caller skipped the eviction cascade.
func (r *PlayerRegistry) Register(conn models.ClientConn, username string, wallet int) *models.OnlinePlayer {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.players {
		if p.Username == username {
			log.Printf("dropping leftover record %s for %s", id, username)
			delete(r.players, id)
		}
	}

	player := &models.OnlinePlayer{
		Username: username,
		Conn:     conn,
		Status:   models.StatusOnline,
		Wallet:   wallet,
	}
	r.players[conn.ID()] = player
	return player
}

// Find returns the player record for a connection id
func (r *PlayerRegistry) Find(connID string) (*models.OnlinePlayer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[connID]
	return p, ok
}

// FindByUsername returns the player record for a username
func (r *PlayerRegistry) FindByUsername(username string) (*models.OnlinePlayer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		if p.Username == username {
			return p, true
		}
	}
	return nil, false
}

// Remove deletes a connection's record and returns it so the caller can
// cascade cleanup (rooms, matches)
func (r *PlayerRegistry) Remove(connID string) (*models.OnlinePlayer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[connID]
	if ok {
		delete(r.players, connID)
	}
	return p, ok
}

// RemoveByUsername deletes the record for a username, if any, and returns it
// so the caller can cascade cleanup before a reconnect registers
func (r *PlayerRegistry) RemoveByUsername(username string) (*models.OnlinePlayer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.players {
		if p.Username == username {
			delete(r.players, id)
			return p, true
		}
	}
	return nil, false
}

// SetStatus moves a player to a new status, rejecting illegal transitions
func (r *PlayerRegistry) SetStatus(connID string, status models.PlayerStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[connID]
	if !ok {
		return ErrPlayerNotFound
	}
	if !models.CanTransition(p.Status, status) {
		log.Printf("illegal status transition %s -> %s for %s", p.Status, status, p.Username)
		return ErrActionUnavailable
	}
	p.Status = status
	return nil
}

// SetMatch points a player at an active match (or clears it with "")
func (r *PlayerRegistry) SetMatch(connID, matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[connID]; ok {
		p.MatchID = matchID
	}
}

// SetRoom points a player at a private room (or clears it with "")
func (r *PlayerRegistry) SetRoom(connID, roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[connID]; ok {
		p.RoomCode = roomCode
	}
}

// SetWallet refreshes a player's cached balance after settlement
func (r *PlayerRegistry) SetWallet(connID string, coins int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[connID]; ok {
		p.Wallet = coins
	}
}

// InLobby returns every player currently in the lobby
func (r *PlayerRegistry) InLobby() []*models.OnlinePlayer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var players []*models.OnlinePlayer
	for _, p := range r.players {
		if p.Status == models.StatusInLobby {
			players = append(players, p)
		}
	}
	return players
}

// Count returns the number of attached connections
func (r *PlayerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
