package engine

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence collaborator. Implementations must make
// AppendMove fail with ErrSequenceConflict when the (session, move number)
// pair already exists; that conflict is the engine's serialization
// primitive for concurrent move submission.
type Store interface {
	LoadRoom(ctx context.Context, id uuid.UUID) (*Room, error)
	FindRoomByJoinCode(ctx context.Context, code string) (*Room, error)
	// SaveRoom upserts, replacing every mutable field.
	SaveRoom(ctx context.Context, room *Room) error

	// ListActiveParticipants returns active seats ordered by player number.
	ListActiveParticipants(ctx context.Context, roomID uuid.UUID) ([]Participant, error)
	InsertParticipant(ctx context.Context, p *Participant) error
	// UpdateParticipant persists the ready/active/left-at fields.
	UpdateParticipant(ctx context.Context, p *Participant) error

	LoadSession(ctx context.Context, id uuid.UUID) (*Session, error)
	// LoadActiveSession returns (nil, nil) when the room has no active session.
	LoadActiveSession(ctx context.Context, roomID uuid.UUID) (*Session, error)
	CountSessions(ctx context.Context, roomID uuid.UUID) (int, error)
	InsertSession(ctx context.Context, s *Session) error
	UpdateSession(ctx context.Context, s *Session) error

	AppendMove(ctx context.Context, m *Move) error
	CountMoves(ctx context.Context, sessionID uuid.UUID) (int, error)
	ListMoves(ctx context.Context, sessionID uuid.UUID) ([]Move, error)

	RecordEvent(ctx context.Context, e *Event) error
}
