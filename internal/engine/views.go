package engine

import (
	"context"

	"github.com/google/uuid"
)

// RoomView is the read model for one room: its roster and, when the room is
// in progress, the active session.
type RoomView struct {
	Room         *Room
	Participants []Participant
	Session      *Session // nil unless a session is active
}

// SessionView is the read model for one playthrough: the session plus its
// ordered move history.
type SessionView struct {
	Session *Session
	Moves   []Move
}

func (m *Manager) RoomState(ctx context.Context, roomID uuid.UUID) (*RoomView, error) {
	room, err := m.store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	participants, err := m.store.ListActiveParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	session, err := m.store.LoadActiveSession(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &RoomView{Room: room, Participants: participants, Session: session}, nil
}

func (m *Manager) SessionState(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	session, err := m.store.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	moves, err := m.store.ListMoves(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionView{Session: session, Moves: moves}, nil
}
