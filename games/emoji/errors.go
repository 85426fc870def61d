package emoji

import "errors"

// Errors reported back to the connection that caused them.
var (
	ErrRoomNotFound     = errors.New("Room not found")
	ErrGameInProgress   = errors.New("Game already in progress")
	ErrNotHost          = errors.New("Only the host can start the game")
	ErrAlreadyStarted   = errors.New("Game has already started")
	ErrNotEnoughPlayers = errors.New("Need at least 2 players to start")
)

// ErrDropped marks a request that was malformed or arrived in the wrong
// phase. It is logged, never sent to clients.
var ErrDropped = errors.New("request dropped")

// ErrRoomExpired is sent to players of a room closed for inactivity.
var ErrRoomExpired = errors.New("Room closed due to inactivity")

// ErrShutdown is returned once the directory has been shut down.
var ErrShutdown = errors.New("directory is shut down")

// reportable reports whether err should be surfaced to the client.
func reportable(err error) bool {
	switch {
	case errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrGameInProgress),
		errors.Is(err, ErrNotHost),
		errors.Is(err, ErrAlreadyStarted),
		errors.Is(err, ErrNotEnoughPlayers):
		return true
	}

	return false
}
