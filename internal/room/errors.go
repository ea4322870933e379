package room

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNotHost            = errors.New("only the host can start the game")
	ErrTooFewPlayers      = errors.New("not enough players")
	ErrTooManyPlayers     = errors.New("too many players")
	ErrInvalidName        = errors.New("player name is required")
	ErrNameTaken          = errors.New("that name is already taken in this room")
)
