package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It backs tests and
// database-less deployments; the gorm store is the production counterpart.
type MemoryStore struct {
	mu           sync.Mutex
	rooms        map[uuid.UUID]*Room
	participants map[uuid.UUID]*Participant
	sessions     map[uuid.UUID]*Session
	moves        map[uuid.UUID][]*Move // keyed by session id
	events       []*Event

	// EventFailures forces RecordEvent errors; tests use it to verify that
	// audit writes stay non-critical.
	EventFailures atomic.Bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:        make(map[uuid.UUID]*Room),
		participants: make(map[uuid.UUID]*Participant),
		sessions:     make(map[uuid.UUID]*Session),
		moves:        make(map[uuid.UUID][]*Move),
	}
}

func (s *MemoryStore) LoadRoom(_ context.Context, id uuid.UUID) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	return copyRoom(room), nil
}

func (s *MemoryStore) FindRoomByJoinCode(_ context.Context, code string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code = strings.ToUpper(code)
	for _, room := range s.rooms {
		if room.JoinCode != "" && room.JoinCode == code {
			return copyRoom(room), nil
		}
	}
	return nil, fmt.Errorf("join code %s: %w", code, ErrNotFound)
}

func (s *MemoryStore) SaveRoom(_ context.Context, room *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = copyRoom(room)
	return nil
}

func (s *MemoryStore) ListActiveParticipants(_ context.Context, roomID uuid.UUID) ([]Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Participant
	for _, p := range s.participants {
		if p.RoomID == roomID && p.Active {
			out = append(out, *copyParticipant(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlayerNumber < out[j].PlayerNumber
	})
	return out, nil
}

func (s *MemoryStore) InsertParticipant(_ context.Context, p *Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = copyParticipant(p)
	return nil
}

func (s *MemoryStore) UpdateParticipant(_ context.Context, p *Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.participants[p.ID]
	if !ok {
		return fmt.Errorf("participant %s: %w", p.ID, ErrNotFound)
	}
	existing.Ready = p.Ready
	existing.Active = p.Active
	existing.LeftAt = copyTime(p.LeftAt)
	return nil
}

func (s *MemoryStore) LoadSession(_ context.Context, id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return copySession(session), nil
}

func (s *MemoryStore) LoadActiveSession(_ context.Context, roomID uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.RoomID == roomID && session.Status == SessionActive {
			return copySession(session), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CountSessions(_ context.Context, roomID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, session := range s.sessions {
		if session.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) InsertSession(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *MemoryStore) UpdateSession(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return fmt.Errorf("session %s: %w", session.ID, ErrNotFound)
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *MemoryStore) AppendMove(_ context.Context, m *Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.moves[m.SessionID] {
		if existing.MoveNumber == m.MoveNumber {
			return fmt.Errorf("session %s move %d: %w", m.SessionID, m.MoveNumber, ErrSequenceConflict)
		}
	}
	s.moves[m.SessionID] = append(s.moves[m.SessionID], copyMove(m))
	return nil
}

func (s *MemoryStore) CountMoves(_ context.Context, sessionID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.moves[sessionID]), nil
}

func (s *MemoryStore) ListMoves(_ context.Context, sessionID uuid.UUID) ([]Move, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	moves := s.moves[sessionID]
	out := make([]Move, 0, len(moves))
	for _, m := range moves {
		out = append(out, *copyMove(m))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MoveNumber < out[j].MoveNumber
	})
	return out, nil
}

func (s *MemoryStore) RecordEvent(_ context.Context, e *Event) error {
	if s.EventFailures.Load() {
		return fmt.Errorf("event log unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, copyEvent(e))
	return nil
}

// Events returns recorded audit events in insertion order.
func (s *MemoryStore) Events() []*Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, copyEvent(e))
	}
	return out
}

func copyRoom(r *Room) *Room {
	clone := *r
	clone.StartedAt = copyTime(r.StartedAt)
	clone.FinishedAt = copyTime(r.FinishedAt)
	return &clone
}

func copyParticipant(p *Participant) *Participant {
	clone := *p
	clone.UserID = copyUUID(p.UserID)
	clone.LeftAt = copyTime(p.LeftAt)
	return &clone
}

func copySession(s *Session) *Session {
	clone := *s
	if s.State != nil {
		clone.State = s.State.Clone()
	}
	if s.FinalState != nil {
		clone.FinalState = s.FinalState.Clone()
	}
	clone.WinnerUserID = copyUUID(s.WinnerUserID)
	clone.FinishedAt = copyTime(s.FinishedAt)
	return &clone
}

func copyMove(m *Move) *Move {
	clone := *m
	clone.ParticipantID = copyUUID(m.ParticipantID)
	if m.StateAfter != nil {
		clone.StateAfter = m.StateAfter.Clone()
	}
	if m.TimeTakenMS != nil {
		ms := *m.TimeTakenMS
		clone.TimeTakenMS = &ms
	}
	return &clone
}

func copyEvent(e *Event) *Event {
	clone := *e
	clone.SessionID = copyUUID(e.SessionID)
	if e.Payload != nil {
		clone.Payload = make(map[string]any, len(e.Payload))
		for k, v := range e.Payload {
			clone.Payload[k] = v
		}
	}
	return &clone
}
