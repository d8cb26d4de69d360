package engine

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrRoomFull            = errors.New("room is full")
	ErrAlreadyJoined       = errors.New("already in this room")
	ErrNotReady            = errors.New("not all players are ready")
	ErrInsufficientPlayers = errors.New("at least 2 players required")
	ErrRoomNotWaiting      = errors.New("room is not accepting players")
	ErrRoomNotFinished     = errors.New("room has not finished")
	ErrSessionFinished     = errors.New("session is finished")
	ErrSequenceConflict    = errors.New("move sequence conflict")
	ErrBotsUnsupported     = errors.New("game type does not support bots")
	ErrHasSessions         = errors.New("room already has a session")
)
