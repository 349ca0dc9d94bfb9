package services

import (
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"coinflip_server/models"
)

// DefaultStartDelay is the grace period between a guest joining a private
// room and the match starting, so both clients can transition their UI.
const DefaultStartDelay = 2 * time.Second

const roomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const roomCodeLength = 6

// searchTicket is one parked quick-match request, kept in arrival order
type searchTicket struct {
	connID    string
	rounds    int
	betAmount int
}

// LobbyService pairs players for quick matches and manages code-addressed
// private rooms. It owns the search queue and the rooms map.
type LobbyService struct {
	mu       sync.Mutex
	Registry *PlayerRegistry
	Matches  *MatchService
	Notifier *Notifier

	// StartDelay is the room-join to match-start grace period.
	StartDelay time.Duration
	// NewRoomCode generates candidate room codes. Overridable in tests to
	// force collisions.
	NewRoomCode func() string

	searchQueue []searchTicket
	rooms       map[string]*models.PrivateRoom
}

// NewLobbyService creates a lobby service with default code generation
func NewLobbyService(registry *PlayerRegistry, matches *MatchService, notifier *Notifier) *LobbyService {
	return &LobbyService{
		Registry:    registry,
		Matches:     matches,
		Notifier:    notifier,
		StartDelay:  DefaultStartDelay,
		NewRoomCode: randomRoomCode,
		rooms:       make(map[string]*models.PrivateRoom),
	}
}

func randomRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeChars[rand.Intn(len(roomCodeChars))]
	}
	return string(code)
}

// JoinLobby moves a player into the lobby, returns them the current roster,
// and announces their arrival to everyone else in it
func (s *LobbyService) JoinLobby(connID string) error {
	player, ok := s.Registry.Find(connID)
	if !ok {
		return ErrPlayerNotFound
	}
	if err := s.Registry.SetStatus(connID, models.StatusInLobby); err != nil {
		return err
	}

	roster := s.Registry.InLobby()
	players := make([]map[string]interface{}, 0, len(roster))
	for _, p := range roster {
		players = append(players, map[string]interface{}{
			"username": p.Username,
			"status":   p.Status,
		})
	}
	s.Notifier.Notify(player.Conn, "lobby_joined", map[string]interface{}{"players": players})

	for _, p := range roster {
		if p.Username == player.Username {
			continue
		}
		s.Notifier.Notify(p.Conn, "player_joined_lobby", map[string]interface{}{"username": player.Username})
	}
	return nil
}

// RequestQuickMatch pairs the requester with the first affordable waiting
// searcher (FIFO, no bet or skill matching), or parks the request until one
// arrives. A pairing uses the parked request's rounds and bet, since that
// player advertised first.
func (s *LobbyService) RequestQuickMatch(connID string, rounds, betAmount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.Registry.Find(connID)
	if !ok {
		return ErrPlayerNotFound
	}
	switch player.Status {
	case models.StatusOnline, models.StatusInLobby, models.StatusSearching:
	default:
		// Hosting a room, sitting in one, or already playing.
		return ErrPlayerBusy
	}
	if rounds < 1 {
		return ErrInvalidRounds
	}
	if betAmount <= 0 {
		return ErrInvalidBet
	}
	if betAmount > player.Wallet {
		return ErrInsufficientFunds
	}

	for i := 0; i < len(s.searchQueue); i++ {
		t := s.searchQueue[i]
		if t.connID == connID {
			continue
		}
		opponent, ok := s.Registry.Find(t.connID)
		if !ok || opponent.Status != models.StatusSearching {
			// Stale ticket, drop it and keep scanning.
			s.searchQueue = append(s.searchQueue[:i], s.searchQueue[i+1:]...)
			i--
			continue
		}
		if t.betAmount > player.Wallet {
			continue
		}
		s.searchQueue = append(s.searchQueue[:i], s.searchQueue[i+1:]...)
		s.Matches.CreateMatch(opponent, player, t.rounds, t.betAmount)
		return nil
	}

	for _, t := range s.searchQueue {
		if t.connID == connID {
			// Already parked; searching again is a no-op.
			return nil
		}
	}
	if err := s.Registry.SetStatus(connID, models.StatusSearching); err != nil {
		return err
	}
	s.searchQueue = append(s.searchQueue, searchTicket{connID: connID, rounds: rounds, betAmount: betAmount})
	s.Notifier.Notify(player.Conn, "looking_for_match", nil)
	return nil
}

// CancelSearch resets a searching or lobby player back to online. A no-op
// for players who are not searching.
func (s *LobbyService) CancelSearch(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropTicket(connID)
	player, ok := s.Registry.Find(connID)
	if !ok {
		return
	}
	if player.Status == models.StatusSearching || player.Status == models.StatusInLobby {
		if err := s.Registry.SetStatus(connID, models.StatusOnline); err != nil {
			log.Printf("cancel search for %s: %v", player.Username, err)
		}
	}
}

// CreatePrivateRoom opens a room with a code unique among live rooms
func (s *LobbyService) CreatePrivateRoom(connID string, rounds, betAmount int) (*models.PrivateRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.Registry.Find(connID)
	if !ok {
		return nil, ErrPlayerNotFound
	}
	switch player.Status {
	case models.StatusOnline, models.StatusInLobby:
	default:
		return nil, ErrPlayerBusy
	}
	if rounds < 1 {
		return nil, ErrInvalidRounds
	}
	if betAmount <= 0 {
		return nil, ErrInvalidBet
	}
	if betAmount > player.Wallet {
		return nil, ErrInsufficientFunds
	}
	if err := s.Registry.SetStatus(connID, models.StatusHostingRoom); err != nil {
		return nil, err
	}

	var code string
	for {
		code = s.NewRoomCode()
		if _, exists := s.rooms[code]; !exists {
			break
		}
	}

	room := &models.PrivateRoom{
		RoomCode:  code,
		Host:      player.Username,
		HostConn:  player.Conn,
		Rounds:    rounds,
		BetAmount: betAmount,
		Status:    models.RoomWaiting,
	}
	s.rooms[code] = room
	s.Registry.SetRoom(connID, code)

	log.Printf("room %s created by %s: %d rounds, bet %d", code, player.Username, rounds, betAmount)
	s.Notifier.Notify(player.Conn, "room_created", map[string]interface{}{"roomCode": code})
	return room, nil
}

// JoinPrivateRoom fills a waiting room and schedules the match start after
// the grace period
func (s *LobbyService) JoinPrivateRoom(connID, roomCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.Registry.Find(connID)
	if !ok {
		return ErrPlayerNotFound
	}
	switch player.Status {
	case models.StatusOnline, models.StatusInLobby:
	default:
		return ErrPlayerBusy
	}
	room, ok := s.rooms[strings.ToUpper(strings.TrimSpace(roomCode))]
	if !ok {
		return ErrRoomNotFound
	}
	if room.Status != models.RoomWaiting || room.Host == player.Username {
		return ErrRoomNotAvailable
	}
	if room.BetAmount > player.Wallet {
		return ErrInsufficientFunds
	}
	if err := s.Registry.SetStatus(connID, models.StatusInRoom); err != nil {
		return err
	}

	room.Guest = player.Username
	room.GuestConn = player.Conn
	room.Status = models.RoomReady
	s.Registry.SetRoom(connID, room.RoomCode)

	s.Notifier.Notify(room.HostConn, "player_joined_room", map[string]interface{}{"guest": player.Username})
	s.Notifier.Notify(room.GuestConn, "room_joined", map[string]interface{}{
		"host":      room.Host,
		"rounds":    room.Rounds,
		"betAmount": room.BetAmount,
	})

	code := room.RoomCode
	room.StartTimer = time.AfterFunc(s.StartDelay, func() {
		s.startRoomMatch(code)
	})
	return nil
}

// startRoomMatch fires when the grace period elapses. The room may have been
// torn down by a disconnect in the meantime, in which case nothing happens.
func (s *LobbyService) startRoomMatch(roomCode string) {
	s.mu.Lock()

	room, ok := s.rooms[roomCode]
	if !ok || room.Status != models.RoomReady {
		s.mu.Unlock()
		return
	}
	host, hostOK := s.Registry.FindByUsername(room.Host)
	guest, guestOK := s.Registry.FindByUsername(room.Guest)
	delete(s.rooms, roomCode)
	if !hostOK || !guestOK {
		s.mu.Unlock()
		log.Printf("room %s dropped before start: a player disconnected", roomCode)
		return
	}
	s.Registry.SetRoom(host.Conn.ID(), "")
	s.Registry.SetRoom(guest.Conn.ID(), "")
	s.mu.Unlock()

	s.Matches.CreateMatch(host, guest, room.Rounds, room.BetAmount)
}

// RoomCount returns the number of live rooms
func (s *LobbyService) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// FindRoom returns a live room by code
func (s *LobbyService) FindRoom(roomCode string) (*models.PrivateRoom, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[strings.ToUpper(strings.TrimSpace(roomCode))]
	return room, ok
}

// EvictStaleConnection tears down any live record for a username before a
// reconnect registers. The old socket never delivers a disconnect for a
// record that is already gone, so its room is deleted and its match is
// forfeited here, exactly as a disconnect would.
func (s *LobbyService) EvictStaleConnection(username string) {
	player, ok := s.Registry.RemoveByUsername(username)
	if !ok {
		return
	}
	log.Printf("evicting stale connection %s for %s", player.Conn.ID(), username)
	s.HandleDisconnect(player)
	s.Matches.HandleDisconnect(player)
}

// HandleDisconnect clears the departed player's parked search and tears down
// any room they were part of. A pending start timer is cancelled so it cannot
// fire against stale state.
func (s *LobbyService) HandleDisconnect(player *models.OnlinePlayer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropTicket(player.Conn.ID())

	if player.RoomCode == "" {
		return
	}
	room, ok := s.rooms[player.RoomCode]
	if !ok {
		return
	}
	if room.StartTimer != nil {
		room.StartTimer.Stop()
	}
	delete(s.rooms, player.RoomCode)
	log.Printf("room %s deleted: %s disconnected", room.RoomCode, player.Username)

	// Reset whoever is left; there is no match to resume.
	other := room.Host
	if player.Username == room.Host {
		other = room.Guest
	}
	if other == "" {
		return
	}
	if p, ok := s.Registry.FindByUsername(other); ok {
		s.Registry.SetRoom(p.Conn.ID(), "")
		if err := s.Registry.SetStatus(p.Conn.ID(), models.StatusOnline); err != nil {
			log.Printf("resetting %s after room teardown: %v", other, err)
		}
	}
}

// dropTicket removes a parked search request. Caller holds the lock.
func (s *LobbyService) dropTicket(connID string) {
	for i, t := range s.searchQueue {
		if t.connID == connID {
			s.searchQueue = append(s.searchQueue[:i], s.searchQueue[i+1:]...)
			return
		}
	}
}
