package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"coinflip_server/models"
)

// fakeConn records emitted events in place of a live socket connection
type fakeConn struct {
	id string

	mu     sync.Mutex
	events []emittedEvent
}

type emittedEvent struct {
	name    string
	payload interface{}
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Emit(event string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var payload interface{}
	if len(args) > 0 {
		payload = args[0]
	}
	c.events = append(c.events, emittedEvent{name: event, payload: payload})
}

// received reports how many times an event was emitted
func (c *fakeConn) received(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, e := range c.events {
		if e.name == event {
			count++
		}
	}
	return count
}

// last returns the payload of the most recent emission of an event
func (c *fakeConn) last(event string) (map[string]interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].name == event {
			payload, _ := c.events[i].payload.(map[string]interface{})
			return payload, true
		}
	}
	return nil, false
}

// fakeStore is an in-memory UserStore with switchable failure modes
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]*models.UserRecord
	history  []models.GameHistoryEntry
	failGet  bool
	failSave bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*models.UserRecord)}
}

func (s *fakeStore) addUser(username string, coins int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = &models.UserRecord{Username: username, TotalCoins: coins}
}

func (s *fakeStore) GetUser(_ context.Context, username string) (*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, errors.New("storage unavailable")
	}
	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeStore) SaveUserStats(_ context.Context, user *models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errors.New("storage unavailable")
	}
	copied := *user
	s.users[user.Username] = &copied
	return nil
}

func (s *fakeStore) AddGameHistory(_ context.Context, entry models.GameHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, entry)
	return nil
}

func (s *fakeStore) coins(username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		return u.TotalCoins
	}
	return 0
}

func (s *fakeStore) user(username string) models.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		return *u
	}
	return models.UserRecord{}
}

// testRig bundles the game services around fakes with short timers
type testRig struct {
	registry *PlayerRegistry
	lobby    *LobbyService
	matches  *MatchService
	store    *fakeStore
}

func newTestRig() *testRig {
	store := newFakeStore()
	notifier := &Notifier{}
	registry := NewPlayerRegistry()
	matches := NewMatchService(registry, store, notifier)
	matches.RoundDelay = time.Millisecond
	lobby := NewLobbyService(registry, matches, notifier)
	lobby.StartDelay = time.Millisecond
	return &testRig{registry: registry, lobby: lobby, matches: matches, store: store}
}

// connect registers a player backed by a fake connection and stored account
func (r *testRig) connect(connID, username string, coins int) (*fakeConn, *models.OnlinePlayer) {
	r.store.addUser(username, coins)
	conn := newFakeConn(connID)
	player := r.registry.Register(conn, username, coins)
	return conn, player
}
