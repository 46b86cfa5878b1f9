package apperror

import "errors"

// Typed rejections returned to the caller. None of these are fatal; the
// transport layer maps them to a response and the game state is untouched.
var (
	ErrNotAuthenticated = errors.New("no identity on request")

	ErrGameNotFound       = errors.New("game not found")
	ErrGameAlreadyStarted = errors.New("game is already started")
	ErrGameFull           = errors.New("game is full")
	ErrDuplicatePlayer    = errors.New("player already holds a slot in this game")

	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrNotAPlayer        = errors.New("player has no slot in this game")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrCellOutOfRange    = errors.New("cell index is out of range")

	ErrConcurrentModification = errors.New("game was modified concurrently")

	ErrRoomCodeTaken = errors.New("room code is already taken")
)
