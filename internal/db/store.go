package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"family-games/internal/engine"
)

// Store is the gorm-backed persistence collaborator. The unique index on
// (session_id, move_number) makes AppendMove the serialization primitive:
// the losing side of a concurrent submission gets ErrSequenceConflict.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

var _ engine.Store = (*Store)(nil)

func (s *Store) LoadRoom(ctx context.Context, id uuid.UUID) (*engine.Room, error) {
	var record Room
	if err := s.conn.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("room %s: %w", id, engine.ErrNotFound)
		}
		return nil, err
	}
	return roomFromModel(&record), nil
}

func (s *Store) FindRoomByJoinCode(ctx context.Context, code string) (*engine.Room, error) {
	var record Room
	err := s.conn.WithContext(ctx).
		First(&record, "join_code = ? AND is_public", strings.ToUpper(code)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("join code %s: %w", code, engine.ErrNotFound)
		}
		return nil, err
	}
	return roomFromModel(&record), nil
}

func (s *Store) SaveRoom(ctx context.Context, room *engine.Room) error {
	return s.conn.WithContext(ctx).Save(roomToModel(room)).Error
}

func (s *Store) ListActiveParticipants(ctx context.Context, roomID uuid.UUID) ([]engine.Participant, error) {
	var records []Participant
	err := s.conn.WithContext(ctx).
		Where("room_id = ? AND is_active", roomID).
		Order("player_number").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]engine.Participant, 0, len(records))
	for i := range records {
		out = append(out, *participantFromModel(&records[i]))
	}
	return out, nil
}

func (s *Store) InsertParticipant(ctx context.Context, p *engine.Participant) error {
	return s.conn.WithContext(ctx).Create(participantToModel(p)).Error
}

func (s *Store) UpdateParticipant(ctx context.Context, p *engine.Participant) error {
	return s.conn.WithContext(ctx).
		Model(&Participant{}).
		Where("id = ?", p.ID).
		Select("is_ready", "is_active", "left_at").
		Updates(Participant{IsReady: p.Ready, IsActive: p.Active, LeftAt: p.LeftAt}).Error
}

func (s *Store) LoadSession(ctx context.Context, id uuid.UUID) (*engine.Session, error) {
	var record Session
	if err := s.conn.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, engine.ErrNotFound)
		}
		return nil, err
	}
	return sessionFromModel(&record)
}

func (s *Store) LoadActiveSession(ctx context.Context, roomID uuid.UUID) (*engine.Session, error) {
	var record Session
	err := s.conn.WithContext(ctx).
		First(&record, "room_id = ? AND status = ?", roomID, string(engine.SessionActive)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sessionFromModel(&record)
}

func (s *Store) CountSessions(ctx context.Context, roomID uuid.UUID) (int, error) {
	var count int64
	err := s.conn.WithContext(ctx).
		Model(&Session{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return int(count), err
}

func (s *Store) InsertSession(ctx context.Context, session *engine.Session) error {
	record, err := sessionToModel(session)
	if err != nil {
		return err
	}
	return s.conn.WithContext(ctx).Create(record).Error
}

func (s *Store) UpdateSession(ctx context.Context, session *engine.Session) error {
	record, err := sessionToModel(session)
	if err != nil {
		return err
	}
	return s.conn.WithContext(ctx).
		Model(&Session{}).
		Where("id = ?", session.ID).
		Select("status", "game_state", "final_state", "winner_user_id",
			"winner_player_number", "is_draw", "finished_at", "duration_seconds").
		Updates(record).Error
}

func (s *Store) AppendMove(ctx context.Context, m *engine.Move) error {
	record, err := moveToModel(m)
	if err != nil {
		return err
	}
	if err := s.conn.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("session %s move %d: %w", m.SessionID, m.MoveNumber, engine.ErrSequenceConflict)
		}
		return err
	}
	return nil
}

func (s *Store) CountMoves(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int64
	err := s.conn.WithContext(ctx).
		Model(&Move{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return int(count), err
}

func (s *Store) ListMoves(ctx context.Context, sessionID uuid.UUID) ([]engine.Move, error) {
	session, err := s.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var records []Move
	err = s.conn.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("move_number").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]engine.Move, 0, len(records))
	for i := range records {
		move, err := moveFromModel(&records[i], session.GameType)
		if err != nil {
			return nil, err
		}
		out = append(out, *move)
	}
	return out, nil
}

func (s *Store) RecordEvent(ctx context.Context, e *engine.Event) error {
	record, err := eventToModel(e)
	if err != nil {
		return err
	}
	return s.conn.WithContext(ctx).Create(record).Error
}
