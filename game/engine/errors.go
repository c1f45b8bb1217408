package engine

import "errors"

var (
	ErrOutOfBounds         = errors.New("coordinate out of bounds")
	ErrInsufficientSpace   = errors.New("insufficient space for special tiles")
	ErrOddTeleporterCount  = errors.New("teleporter count must be even")
	ErrMissingCollaborator = errors.New("missing collaborator")
	ErrResolving           = errors.New("move already in progress")
	ErrGameOver            = errors.New("game is over")
	ErrUnknownPlayer       = errors.New("unknown player")
	ErrCellOccupied        = errors.New("cell occupied")
	ErrPlayerEliminated    = errors.New("player eliminated")
)
