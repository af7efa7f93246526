package apperror

import "errors"

var (
	ErrGameFinished  = errors.New("game is already finished")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrInvalidCell   = errors.New("invalid cell index")
	ErrCorruptState  = errors.New("corrupt game state")
	ErrNotFound      = errors.New("not found")
	ErrInvalidToken  = errors.New("invalid session token")
	ErrUnknownAction = errors.New("unknown action")
)
