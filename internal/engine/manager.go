package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"family-games/internal/game"
)

// Manager owns room membership, readiness and the waiting -> in_progress ->
// finished lifecycle, and drives sessions and bot turns. All operations are
// synchronous request/response; mutations on one room are serialized by a
// per-room lock, so two concurrent submissions for the same turn cannot both
// succeed. Rooms are independent units of concurrency.
type Manager struct {
	store  Store
	logger *zap.Logger

	randMu sync.Mutex
	rng    *rand.Rand

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

// NewManager wires the manager to its persistence collaborator. A zero seed
// derives one from the clock; tests pass a fixed seed for reproducible bot
// play.
func NewManager(store Store, logger *zap.Logger, seed int64) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Manager{
		store:  store,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}
}

func (m *Manager) roomLock(id uuid.UUID) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}

// CreateRoom opens a waiting room and auto-joins the creator as participant
// 1 with ready set. A failed auto-join is surfaced as a warning, not a
// rollback.
func (m *Manager) CreateRoom(ctx context.Context, creator uuid.UUID, name string, gameType game.Type, capacity int, public bool) (*Room, error) {
	if !gameType.Valid() {
		return nil, fmt.Errorf("%q: %w", gameType, game.ErrUnknownGame)
	}
	minPlayers, maxPlayers := gameType.PlayerLimits()
	if capacity == 0 {
		capacity = minPlayers
	}
	if capacity < minPlayers || capacity > maxPlayers {
		return nil, fmt.Errorf("capacity %d out of range %d-%d for %s", capacity, minPlayers, maxPlayers, gameType)
	}

	room := &Room{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		GameType:  gameType,
		Status:    RoomWaiting,
		Capacity:  capacity,
		Public:    public,
		CreatedBy: creator,
		CreatedAt: timeNowUTC(),
	}
	if public {
		room.JoinCode = newJoinCode()
	}
	if err := m.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	m.recordEvent(ctx, room.ID, nil, "room_created", map[string]any{
		"game_type": string(gameType),
		"join_code": room.JoinCode,
	})

	seat := &Participant{
		ID:           uuid.New(),
		RoomID:       room.ID,
		UserID:       &creator,
		PlayerNumber: 1,
		Ready:        true,
		Active:       true,
		JoinedAt:     timeNowUTC(),
	}
	if err := m.store.InsertParticipant(ctx, seat); err != nil {
		m.logger.Warn("creator auto-join failed",
			zap.String("room_id", room.ID.String()),
			zap.Error(err))
	}
	return room, nil
}

// Join seats a human identity in a waiting room.
func (m *Manager) Join(ctx context.Context, roomID, userID uuid.UUID) (*Participant, error) {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()
	return m.join(ctx, roomID, userID)
}

// JoinByCode resolves a public room from its join code, then joins it.
func (m *Manager) JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*Participant, error) {
	room, err := m.store.FindRoomByJoinCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	lock := m.roomLock(room.ID)
	lock.Lock()
	defer lock.Unlock()
	return m.join(ctx, room.ID, userID)
}

func (m *Manager) join(ctx context.Context, roomID, userID uuid.UUID) (*Participant, error) {
	room, err := m.store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != RoomWaiting {
		return nil, ErrRoomNotWaiting
	}
	participants, err := m.store.ListActiveParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(participants) >= room.Capacity {
		return nil, ErrRoomFull
	}
	for _, p := range participants {
		if p.UserID != nil && *p.UserID == userID {
			return nil, ErrAlreadyJoined
		}
	}

	seat := &Participant{
		ID:           uuid.New(),
		RoomID:       roomID,
		UserID:       &userID,
		PlayerNumber: nextPlayerNumber(participants),
		Active:       true,
		JoinedAt:     timeNowUTC(),
	}
	if err := m.store.InsertParticipant(ctx, seat); err != nil {
		return nil, err
	}
	m.recordEvent(ctx, roomID, nil, "participant_joined", map[string]any{
		"player_number": seat.PlayerNumber,
		"user_id":       userID.String(),
	})
	return seat, nil
}

// AddBot seats a bot. Creator-only, waiting rooms only; bots join ready.
func (m *Manager) AddBot(ctx context.Context, roomID, requester uuid.UUID, difficulty game.Difficulty) (*Participant, error) {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatedBy != requester {
		return nil, fmt.Errorf("only the creator can add bots: %w", ErrForbidden)
	}
	if room.Status != RoomWaiting {
		return nil, ErrRoomNotWaiting
	}
	if !room.GameType.SupportsBots() {
		return nil, ErrBotsUnsupported
	}
	if difficulty == "" {
		difficulty = game.Medium
	}
	if !difficulty.Valid() {
		return nil, fmt.Errorf("unknown bot difficulty %q", difficulty)
	}
	participants, err := m.store.ListActiveParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(participants) >= room.Capacity {
		return nil, ErrRoomFull
	}

	seat := &Participant{
		ID:            uuid.New(),
		RoomID:        roomID,
		PlayerNumber:  nextPlayerNumber(participants),
		Ready:         true,
		Active:        true,
		Bot:           true,
		BotDifficulty: difficulty,
		JoinedAt:      timeNowUTC(),
	}
	if err := m.store.InsertParticipant(ctx, seat); err != nil {
		return nil, err
	}
	m.recordEvent(ctx, roomID, nil, "participant_joined", map[string]any{
		"player_number": seat.PlayerNumber,
		"bot":           true,
		"difficulty":    string(difficulty),
	})
	return seat, nil
}

// RemoveBot soft-removes a bot seat. Creator-only, waiting rooms only.
func (m *Manager) RemoveBot(ctx context.Context, roomID, requester, botID uuid.UUID) error {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.store.LoadRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.CreatedBy != requester {
		return fmt.Errorf("only the creator can remove bots: %w", ErrForbidden)
	}
	if room.Status != RoomWaiting {
		return ErrRoomNotWaiting
	}
	participants, err := m.store.ListActiveParticipants(ctx, roomID)
	if err != nil {
		return err
	}
	for i := range participants {
		p := &participants[i]
		if p.ID == botID && p.Bot {
			p.Active = false
			p.Ready = false
			left := timeNowUTC()
			p.LeftAt = &left
			return m.store.UpdateParticipant(ctx, p)
		}
	}
	return fmt.Errorf("bot %s: %w", botID, ErrNotFound)
}

// SetReady flips the caller's ready flag in a waiting room.
func (m *Manager) SetReady(ctx context.Context, roomID, userID uuid.UUID, ready bool) error {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	participants, err := m.store.ListActiveParticipants(ctx, roomID)
	if err != nil {
		return err
	}
	for i := range participants {
		p := &participants[i]
		if p.UserID != nil && *p.UserID == userID {
			p.Ready = ready
			return m.store.UpdateParticipant(ctx, p)
		}
	}
	return fmt.Errorf("participant: %w", ErrNotFound)
}

// Leave soft-removes the caller's seat. Player numbers are never reassigned
// and turn order never auto-advances.
func (m *Manager) Leave(ctx context.Context, roomID, userID uuid.UUID) error {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	participants, err := m.store.ListActiveParticipants(ctx, roomID)
	if err != nil {
		return err
	}
	for i := range participants {
		p := &participants[i]
		if p.UserID != nil && *p.UserID == userID {
			p.Active = false
			p.Ready = false
			left := timeNowUTC()
			p.LeftAt = &left
			if err := m.store.UpdateParticipant(ctx, p); err != nil {
				return err
			}
			m.recordEvent(ctx, roomID, nil, "participant_left", map[string]any{
				"player_number": p.PlayerNumber,
			})
			return nil
		}
	}
	return fmt.Errorf("participant: %w", ErrNotFound)
}

// Cancel marks a waiting room cancelled. Only the creator may cancel, and
// only while no session has ever existed for the room.
func (m *Manager) Cancel(ctx context.Context, roomID, requester uuid.UUID) error {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.store.LoadRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.CreatedBy != requester {
		return fmt.Errorf("only the creator can cancel: %w", ErrForbidden)
	}
	if room.Status != RoomWaiting {
		return ErrRoomNotWaiting
	}
	sessions, err := m.store.CountSessions(ctx, roomID)
	if err != nil {
		return err
	}
	if sessions > 0 {
		return ErrHasSessions
	}
	room.Status = RoomCancelled
	return m.store.SaveRoom(ctx, room)
}

// Rematch resets a finished room to waiting: timestamps cleared, every
// participant un-readied, roster and history untouched. The next start
// creates a brand-new session.
func (m *Manager) Rematch(ctx context.Context, roomID, userID uuid.UUID) (*Room, error) {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != RoomFinished {
		return nil, ErrRoomNotFinished
	}
	participants, err := m.store.ListActiveParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	member := false
	for _, p := range participants {
		if p.UserID != nil && *p.UserID == userID {
			member = true
			break
		}
	}
	if !member {
		return nil, fmt.Errorf("only participants can request a rematch: %w", ErrForbidden)
	}

	for i := range participants {
		p := &participants[i]
		if !p.Ready {
			continue
		}
		p.Ready = false
		if err := m.store.UpdateParticipant(ctx, p); err != nil {
			return nil, err
		}
	}
	room.Status = RoomWaiting
	room.StartedAt = nil
	room.FinishedAt = nil
	if err := m.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	m.recordEvent(ctx, roomID, nil, "rematch_requested", map[string]any{
		"user_id": userID.String(),
	})
	return room, nil
}

// StartGame moves the room to in_progress and creates its session in the
// canonical initial state. If participant 1 is a bot, its opening move (and
// any further consecutive bot turns) is applied before returning.
func (m *Manager) StartGame(ctx context.Context, roomID, requester uuid.UUID) (*Session, error) {
	lock := m.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.store.LoadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != RoomWaiting {
		return nil, ErrRoomNotWaiting
	}
	if room.CreatedBy != requester {
		return nil, fmt.Errorf("only the creator can start the game: %w", ErrForbidden)
	}
	// The room lock makes this a consistent snapshot of the ready flags.
	participants, err := m.store.ListActiveParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	for _, p := range participants {
		if !p.Ready && !p.Bot {
			return nil, ErrNotReady
		}
	}
	if len(participants) < 2 {
		return nil, ErrInsufficientPlayers
	}

	rules, err := game.RulesFor(room.GameType)
	if err != nil {
		return nil, err
	}
	m.randMu.Lock()
	state, err := rules.NewState(len(participants), m.rng)
	m.randMu.Unlock()
	if err != nil {
		return nil, err
	}

	hasBots := false
	for _, p := range participants {
		if p.Bot {
			hasBots = true
			break
		}
	}

	now := timeNowUTC()
	session := &Session{
		ID:        uuid.New(),
		RoomID:    roomID,
		GameType:  room.GameType,
		Status:    SessionActive,
		State:     state,
		HasBots:   hasBots,
		StartedAt: now,
	}
	// The session is written first: a failed start must leave the room
	// waiting, never in_progress without a session.
	if err := m.store.InsertSession(ctx, session); err != nil {
		return nil, err
	}
	room.Status = RoomInProgress
	room.StartedAt = &now
	if err := m.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	m.recordEvent(ctx, roomID, &session.ID, "game_started", map[string]any{
		"game_type": string(room.GameType),
		"players":   len(participants),
	})

	if err := m.runBotTurns(ctx, room, session, participants, rules); err != nil {
		return nil, err
	}
	if err := m.store.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// nextPlayerNumber picks the lowest player number not held by an active
// seat, keeping the active set contiguous while leaving departed seats'
// numbers stable.
func nextPlayerNumber(active []Participant) int {
	used := make(map[int]bool, len(active))
	for _, p := range active {
		used[p.PlayerNumber] = true
	}
	n := 1
	for used[n] {
		n++
	}
	return n
}

func participantByNumber(participants []Participant, number int) *Participant {
	for i := range participants {
		if participants[i].PlayerNumber == number {
			return &participants[i]
		}
	}
	return nil
}

func (m *Manager) recordEvent(ctx context.Context, roomID uuid.UUID, sessionID *uuid.UUID, kind string, payload map[string]any) {
	event := &Event{
		ID:        uuid.New(),
		RoomID:    roomID,
		SessionID: sessionID,
		Type:      kind,
		Payload:   payload,
		CreatedAt: timeNowUTC(),
	}
	if err := m.store.RecordEvent(ctx, event); err != nil {
		m.logger.Warn("event write failed",
			zap.String("room_id", roomID.String()),
			zap.String("event", kind),
			zap.Error(err))
	}
}
