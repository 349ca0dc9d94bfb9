package models

// ClientConn is the slice of a socket connection the game layer needs.
// Satisfied by socketio.Conn; tests substitute a recording implementation.
type ClientConn interface {
	ID() string
	Emit(event string, args ...interface{})
}

// PlayerStatus is the lifecycle state of a connected player
type PlayerStatus string

const (
	StatusOnline      PlayerStatus = "online"
	StatusInLobby     PlayerStatus = "in_lobby"
	StatusSearching   PlayerStatus = "searching"
	StatusHostingRoom PlayerStatus = "hosting_room"
	StatusInRoom      PlayerStatus = "in_room"
	StatusInMatch     PlayerStatus = "in_match"
)

// playerTransitions lists the legal status moves. Checked centrally in
// CanTransition so an illegal hop cannot slip through an individual handler.
var playerTransitions = map[PlayerStatus][]PlayerStatus{
	StatusOnline:      {StatusInLobby, StatusSearching, StatusHostingRoom, StatusInRoom, StatusInMatch},
	StatusInLobby:     {StatusOnline, StatusSearching, StatusHostingRoom, StatusInRoom, StatusInMatch},
	StatusSearching:   {StatusOnline, StatusInMatch},
	StatusHostingRoom: {StatusOnline, StatusInMatch},
	StatusInRoom:      {StatusOnline, StatusInMatch},
	StatusInMatch:     {StatusOnline},
}

// CanTransition reports whether moving from one player status to another is legal
func CanTransition(from, to PlayerStatus) bool {
	if from == to {
		return true
	}
	for _, next := range playerTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OnlinePlayer is the in-memory record for one attached connection
type OnlinePlayer struct {
	Username string
	Conn     ClientConn
	Status   PlayerStatus
	MatchID  string
	RoomCode string
	// Wallet is a snapshot taken at connect time, used only for pre-flight
	// bet validation. Storage owns the authoritative balance.
	Wallet int
}
