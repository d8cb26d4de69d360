package engine

import (
	"time"

	"github.com/google/uuid"

	"family-games/internal/game"
)

type RoomStatus string

const (
	RoomWaiting    RoomStatus = "waiting"
	RoomInProgress RoomStatus = "in_progress"
	RoomFinished   RoomStatus = "finished"
	RoomCancelled  RoomStatus = "cancelled"
)

type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionFinished SessionStatus = "finished"
)

// Room is a play space with a fixed game type and capacity. Status moves
// waiting -> in_progress -> finished, or waiting -> cancelled; rematch is
// the only edge back to waiting.
type Room struct {
	ID         uuid.UUID
	Name       string
	GameType   game.Type
	Status     RoomStatus
	Capacity   int
	Public     bool
	JoinCode   string // set only for public rooms
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Participant is a seat in a room: either a human identity or a bot with a
// difficulty tier, never both. Seats are soft-removed so move history keeps
// its references.
type Participant struct {
	ID            uuid.UUID
	RoomID        uuid.UUID
	UserID        *uuid.UUID // nil for bots
	PlayerNumber  int
	Ready         bool
	Active        bool
	Bot           bool
	BotDifficulty game.Difficulty // set only for bots
	JoinedAt      time.Time
	LeftAt        *time.Time
}

// Session is one playthrough within a room. Exactly one active session
// exists while the room is in progress.
type Session struct {
	ID           uuid.UUID
	RoomID       uuid.UUID
	GameType     game.Type
	Status       SessionStatus
	State        game.State
	FinalState   game.State // nil until finished
	WinnerUserID *uuid.UUID // human winners carry an identity
	WinnerNumber int        // bot winners carry only a player number
	IsDraw       bool
	HasBots      bool
	StartedAt    time.Time
	FinishedAt   *time.Time
	DurationSecs int
}

// Move is one immutable ply. MoveNumber is 1-based and strictly increasing
// per session with no gaps; StateAfter equals the state produced by applying
// Payload to the previous move's snapshot.
type Move struct {
	ID            uuid.UUID
	SessionID     uuid.UUID
	ParticipantID *uuid.UUID // nil for bot moves
	PlayerNumber  int
	MoveNumber    int
	Payload       game.Move
	StateAfter    game.State
	CreatedAt     time.Time
	TimeTakenMS   *int
}

// Event is a best-effort audit record; failures to write one never fail the
// operation that produced it.
type Event struct {
	ID        uuid.UUID
	RoomID    uuid.UUID
	SessionID *uuid.UUID
	Type      string
	Payload   map[string]any
	CreatedAt time.Time
}
