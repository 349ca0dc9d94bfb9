package models

import "time"

// RoomStatus is the lifecycle state of a private room
type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomReady   RoomStatus = "ready"
)

// PrivateRoom is a code-addressed room created by a host awaiting a guest
type PrivateRoom struct {
	RoomCode  string
	Host      string
	HostConn  ClientConn
	Guest     string
	GuestConn ClientConn
	Rounds    int
	BetAmount int
	Status    RoomStatus

	// StartTimer delays match creation after the guest joins so clients can
	// transition their UI. Cancelled if either side disconnects first.
	StartTimer *time.Timer
}
