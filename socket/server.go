package socket

import (
	"context"
	"errors"
	"log"

	"coinflip_server/services"
	"coinflip_server/utils"

	socketio "github.com/googollee/go-socket.io"
)

// GameSockets wires the socket.io event channel to the game services
type GameSockets struct {
	Registry *services.PlayerRegistry
	Lobby    *services.LobbyService
	Matches  *services.MatchService
	Users    services.UserStore
	Notifier *services.Notifier
}

// NewSocketServer initializes the Socket.IO server and registers the
// multiplayer event handlers
func NewSocketServer(gs *GameSockets) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		c.SetContext("")
		u := c.URL()
		username := u.Query().Get("username")
		if username == "" {
			log.Printf("socket %s rejected: missing username", c.ID())
			return errors.New("username required")
		}

		user, err := gs.Users.GetUser(context.TODO(), username)
		if err != nil {
			log.Printf("socket %s rejected for %s: %v", c.ID(), username, err)
			return errors.New("unknown user")
		}

		gs.Lobby.EvictStaleConnection(username)
		gs.Registry.Register(c, username, user.TotalCoins)
		log.Printf("socket connected: %s (%s), %d players online", username, c.ID(), gs.Registry.Count())

		gs.Notifier.Notify(c, "connected", map[string]interface{}{
			"username": user.Username,
			"stats":    user,
		})
		return nil
	})

	server.OnEvent("/", "join_lobby", func(c socketio.Conn) {
		if err := gs.Lobby.JoinLobby(c.ID()); err != nil {
			gs.Notifier.NotifyError(c, err)
		}
	})

	server.OnEvent("/", "quick_match", func(c socketio.Conn, data map[string]interface{}) {
		rounds := utils.IntField(data, "rounds")
		betAmount := utils.IntField(data, "betAmount")
		if err := gs.Lobby.RequestQuickMatch(c.ID(), rounds, betAmount); err != nil {
			gs.Notifier.NotifyError(c, err)
		}
	})

	server.OnEvent("/", "cancel_search", func(c socketio.Conn) {
		gs.Lobby.CancelSearch(c.ID())
	})

	server.OnEvent("/", "create_private_room", func(c socketio.Conn, data map[string]interface{}) {
		rounds := utils.IntField(data, "rounds")
		betAmount := utils.IntField(data, "betAmount")
		if _, err := gs.Lobby.CreatePrivateRoom(c.ID(), rounds, betAmount); err != nil {
			gs.Notifier.NotifyError(c, err)
		}
	})

	server.OnEvent("/", "join_private_room", func(c socketio.Conn, data map[string]interface{}) {
		roomCode := utils.StringField(data, "roomCode")
		if err := gs.Lobby.JoinPrivateRoom(c.ID(), roomCode); err != nil {
			gs.Notifier.NotifyError(c, err)
		}
	})

	server.OnEvent("/", "make_call", func(c socketio.Conn, data map[string]interface{}) {
		matchID := utils.StringField(data, "matchId")
		prediction := utils.StringField(data, "prediction")
		if err := gs.Matches.SubmitCall(c.ID(), matchID, prediction); err != nil {
			gs.Notifier.NotifyError(c, err)
		}
	})

	server.OnEvent("/", "make_prediction", func(c socketio.Conn, data map[string]interface{}) {
		matchID := utils.StringField(data, "matchId")
		prediction := utils.StringField(data, "prediction")
		if err := gs.Matches.SubmitPrediction(c.ID(), matchID, prediction); err != nil {
			gs.Notifier.NotifyError(c, err)
		}
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Printf("socket error on %s: %v", connID(c), err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		player, ok := gs.Registry.Remove(c.ID())
		if !ok {
			return
		}
		log.Printf("socket disconnected: %s (%s): %s", player.Username, c.ID(), reason)
		gs.Lobby.HandleDisconnect(player)
		gs.Matches.HandleDisconnect(player)
	})

	return server
}

func connID(c socketio.Conn) string {
	if c == nil {
		return "unknown"
	}
	return c.ID()
}
