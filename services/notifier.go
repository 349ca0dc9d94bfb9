package services

import (
	"log"

	"coinflip_server/models"
)

// Notifier delivers state-change events to client connections. A missing or
// closed connection is logged and skipped so one player's dropped socket
// never aborts delivery to the other.
type Notifier struct{}

// Notify emits an event to a single connection
func (n *Notifier) Notify(conn models.ClientConn, event string, payload interface{}) {
	if conn == nil {
		log.Printf("notify %q skipped: no connection", event)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("notify %q to %s failed: %v", event, conn.ID(), r)
		}
	}()
	if payload == nil {
		conn.Emit(event)
		return
	}
	conn.Emit(event, payload)
}

// NotifyError sends a human-readable rejection message to a connection
func (n *Notifier) NotifyError(conn models.ClientConn, err error) {
	n.Notify(conn, "error", err.Error())
}
