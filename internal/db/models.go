package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Room struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"size:64;not null"`
	GameType   string    `gorm:"size:32;not null;index"`
	Status     string    `gorm:"size:16;not null;index"`
	Capacity   int       `gorm:"not null"`
	IsPublic   bool      `gorm:"not null;default:false"`
	JoinCode   *string   `gorm:"size:12;uniqueIndex"`
	CreatedBy  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
	StartedAt  *time.Time
	FinishedAt *time.Time

	Participants []Participant
	Sessions     []Session
	Events       []Event
}

func (Room) TableName() string { return "game_rooms" }

type Participant struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoomID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID        *uuid.UUID `gorm:"type:uuid;index"`
	PlayerNumber  int        `gorm:"not null"`
	IsReady       bool       `gorm:"not null;default:false"`
	IsActive      bool       `gorm:"not null;default:true"`
	IsBot         bool       `gorm:"not null;default:false"`
	BotDifficulty *string    `gorm:"size:16"`
	JoinedAt      time.Time  `gorm:"not null"`
	LeftAt        *time.Time
}

func (Participant) TableName() string { return "room_participants" }

type Session struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	RoomID             uuid.UUID      `gorm:"type:uuid;not null;index"`
	GameType           string         `gorm:"size:32;not null"`
	Status             string         `gorm:"size:16;not null;index"`
	GameState          datatypes.JSON `gorm:"type:jsonb;not null"`
	FinalState         datatypes.JSON `gorm:"type:jsonb"`
	WinnerUserID       *uuid.UUID     `gorm:"type:uuid"`
	WinnerPlayerNumber int            `gorm:"not null;default:0"`
	IsDraw             bool           `gorm:"not null;default:false"`
	HasBots            bool           `gorm:"not null;default:false"`
	StartedAt          time.Time      `gorm:"not null"`
	FinishedAt         *time.Time
	DurationSeconds    int `gorm:"not null;default:0"`

	Moves []Move
}

func (Session) TableName() string { return "game_sessions" }

type Move struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SessionID     uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_moves_session_number"`
	ParticipantID *uuid.UUID     `gorm:"type:uuid;index"`
	PlayerNumber  int            `gorm:"not null"`
	MoveNumber    int            `gorm:"not null;uniqueIndex:idx_moves_session_number"`
	MoveData      datatypes.JSON `gorm:"type:jsonb;not null"`
	StateAfter    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time      `gorm:"not null"`
	TimeTakenMS   *int
}

func (Move) TableName() string { return "game_moves" }

type Event struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	RoomID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	SessionID *uuid.UUID     `gorm:"type:uuid;index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (Event) TableName() string { return "game_events" }
