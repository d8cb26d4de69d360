package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"family-games/internal/game"
)

func newTestManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewManager(store, zap.NewNop(), 1), store
}

// twoHumanRoom creates a tic-tac-toe room with two seated, ready humans.
func twoHumanRoom(t *testing.T, m *Manager) (*Room, uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	room, err := m.CreateRoom(ctx, alice, "kitchen table", game.TicTacToe, 2, false)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := m.Join(ctx, room.ID, bob); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := m.SetReady(ctx, room.ID, bob, true); err != nil {
		t.Fatalf("ready: %v", err)
	}
	return room, alice, bob
}

func TestCreateRoomAutoJoinsCreator(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	alice := uuid.New()

	room, err := m.CreateRoom(ctx, alice, "  kitchen table ", game.TicTacToe, 0, false)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if room.Status != RoomWaiting || room.Name != "kitchen table" || room.Capacity != 2 {
		t.Fatalf("room = %+v", room)
	}
	if room.JoinCode != "" {
		t.Fatalf("private room has join code %q", room.JoinCode)
	}

	view, err := m.RoomState(ctx, room.ID)
	if err != nil {
		t.Fatalf("room state: %v", err)
	}
	if len(view.Participants) != 1 {
		t.Fatalf("participants = %d, want 1", len(view.Participants))
	}
	creator := view.Participants[0]
	if creator.PlayerNumber != 1 || !creator.Ready || creator.UserID == nil || *creator.UserID != alice {
		t.Fatalf("creator seat = %+v", creator)
	}
	if view.Session != nil {
		t.Fatal("waiting room has an active session")
	}
}

func TestCreateRoomValidation(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	if _, err := m.CreateRoom(ctx, uuid.New(), "x", game.Type("chess"), 0, false); !errors.Is(err, game.ErrUnknownGame) {
		t.Fatalf("unknown game error = %v", err)
	}
	if _, err := m.CreateRoom(ctx, uuid.New(), "x", game.TicTacToe, 3, false); err == nil {
		t.Fatal("capacity 3 accepted for tic_tac_toe")
	}
	if _, err := m.CreateRoom(ctx, uuid.New(), "x", game.Wordle, 6, false); err != nil {
		t.Fatalf("wordle capacity 6: %v", err)
	}
}

func TestJoinAssignsNumbersAndRejects(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	alice, bob := uuid.New(), uuid.New()

	room, err := m.CreateRoom(ctx, alice, "word night", game.Wordle, 3, false)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	seat, err := m.Join(ctx, room.ID, bob)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if seat.PlayerNumber != 2 || seat.Ready {
		t.Fatalf("seat = %+v", seat)
	}
	if _, err := m.Join(ctx, room.ID, bob); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("rejoin error = %v", err)
	}
	if _, err := m.Join(ctx, room.ID, uuid.New()); err != nil {
		t.Fatalf("third join: %v", err)
	}
	if _, err := m.Join(ctx, room.ID, uuid.New()); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("full-room error = %v", err)
	}
	if _, err := m.Join(ctx, uuid.New(), bob); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing-room error = %v", err)
	}
}

func TestJoinByCode(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	alice, bob := uuid.New(), uuid.New()

	room, err := m.CreateRoom(ctx, alice, "open table", game.ConnectFour, 2, true)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if len(room.JoinCode) != 6 {
		t.Fatalf("join code = %q", room.JoinCode)
	}

	seat, err := m.JoinByCode(ctx, " "+room.JoinCode+" ", bob)
	if err != nil {
		t.Fatalf("join by code: %v", err)
	}
	if seat.RoomID != room.ID || seat.PlayerNumber != 2 {
		t.Fatalf("seat = %+v", seat)
	}
	if _, err := m.JoinByCode(ctx, "ZZZZZZ", bob); !errors.Is(err, ErrNotFound) {
		t.Fatalf("bad-code error = %v", err)
	}
}

func TestPlayerNumbersStayStableAfterLeave(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	alice := uuid.New()

	room, _ := m.CreateRoom(ctx, alice, "word night", game.Wordle, 4, false)
	bob, cara := uuid.New(), uuid.New()
	if _, err := m.Join(ctx, room.ID, bob); err != nil {
		t.Fatalf("join: %v", err)
	}
	seat, _ := m.Join(ctx, room.ID, cara)
	if seat.PlayerNumber != 3 {
		t.Fatalf("cara = player %d, want 3", seat.PlayerNumber)
	}

	if err := m.Leave(ctx, room.ID, bob); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := m.Leave(ctx, room.ID, bob); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double-leave error = %v", err)
	}

	// The vacated number is reused; cara keeps hers.
	seat, err := m.Join(ctx, room.ID, uuid.New())
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if seat.PlayerNumber != 2 {
		t.Fatalf("new seat = player %d, want 2", seat.PlayerNumber)
	}
}

func TestStartGameChecks(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	alice := uuid.New()

	room, _ := m.CreateRoom(ctx, alice, "kitchen table", game.TicTacToe, 2, false)
	if _, err := m.StartGame(ctx, room.ID, alice); !errors.Is(err, ErrInsufficientPlayers) {
		t.Fatalf("solo start error = %v", err)
	}

	bob := uuid.New()
	if _, err := m.Join(ctx, room.ID, bob); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := m.StartGame(ctx, room.ID, bob); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-creator start error = %v", err)
	}
	if _, err := m.StartGame(ctx, room.ID, alice); !errors.Is(err, ErrNotReady) {
		t.Fatalf("unready start error = %v", err)
	}

	if err := m.SetReady(ctx, room.ID, bob, true); err != nil {
		t.Fatalf("ready: %v", err)
	}
	session, err := m.StartGame(ctx, room.ID, alice)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.Status != SessionActive || session.GameType != game.TicTacToe || session.HasBots {
		t.Fatalf("session = %+v", session)
	}
	if session.State.Turn() != 1 {
		t.Fatalf("opening turn = %d, want 1", session.State.Turn())
	}

	if _, err := m.StartGame(ctx, room.ID, alice); !errors.Is(err, ErrRoomNotWaiting) {
		t.Fatalf("double-start error = %v", err)
	}
	if _, err := m.Join(ctx, room.ID, uuid.New()); !errors.Is(err, ErrRoomNotWaiting) {
		t.Fatalf("late-join error = %v", err)
	}
}

func TestAddBotRules(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	alice, bob := uuid.New(), uuid.New()

	wordRoom, _ := m.CreateRoom(ctx, alice, "word night", game.Wordle, 2, false)
	if _, err := m.AddBot(ctx, wordRoom.ID, alice, game.Easy); !errors.Is(err, ErrBotsUnsupported) {
		t.Fatalf("wordle bot error = %v", err)
	}

	room, _ := m.CreateRoom(ctx, alice, "vs the machine", game.TicTacToe, 2, false)
	if _, err := m.AddBot(ctx, room.ID, bob, game.Easy); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-creator bot error = %v", err)
	}
	if _, err := m.AddBot(ctx, room.ID, alice, game.Difficulty("brutal")); err == nil {
		t.Fatal("unknown difficulty accepted")
	}

	seat, err := m.AddBot(ctx, room.ID, alice, "")
	if err != nil {
		t.Fatalf("add bot: %v", err)
	}
	if !seat.Bot || !seat.Ready || seat.BotDifficulty != game.Medium || seat.PlayerNumber != 2 {
		t.Fatalf("bot seat = %+v", seat)
	}
	if seat.UserID != nil {
		t.Fatal("bot seat has a user identity")
	}
	if _, err := m.AddBot(ctx, room.ID, alice, game.Easy); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("full-room bot error = %v", err)
	}

	if err := m.RemoveBot(ctx, room.ID, alice, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("remove unknown bot error = %v", err)
	}
	if err := m.RemoveBot(ctx, room.ID, alice, seat.ID); err != nil {
		t.Fatalf("remove bot: %v", err)
	}
	view, _ := m.RoomState(ctx, room.ID)
	if len(view.Participants) != 1 {
		t.Fatalf("participants after removal = %d, want 1", len(view.Participants))
	}
}

func TestStartGameBotOpens(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	alice := uuid.New()

	// The creator leaves, so the bot takes seat 1 and moves first.
	room, _ := m.CreateRoom(ctx, alice, "uphill battle", game.TicTacToe, 2, false)
	if err := m.Leave(ctx, room.ID, alice); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, err := m.AddBot(ctx, room.ID, alice, game.Hard); err != nil {
		t.Fatalf("add bot: %v", err)
	}
	bob := uuid.New()
	if _, err := m.Join(ctx, room.ID, bob); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := m.SetReady(ctx, room.ID, bob, true); err != nil {
		t.Fatalf("ready: %v", err)
	}

	session, err := m.StartGame(ctx, room.ID, alice)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !session.HasBots {
		t.Fatal("session does not flag bots")
	}
	if session.State.Turn() != 2 {
		t.Fatalf("turn after bot opening = %d, want 2", session.State.Turn())
	}

	view, err := m.SessionState(ctx, session.ID)
	if err != nil {
		t.Fatalf("session state: %v", err)
	}
	if len(view.Moves) != 1 {
		t.Fatalf("moves = %d, want 1", len(view.Moves))
	}
	opening := view.Moves[0]
	if opening.MoveNumber != 1 || opening.PlayerNumber != 1 || opening.ParticipantID != nil {
		t.Fatalf("opening move = %+v", opening)
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	room, alice, bob := twoHumanRoom(t, m)

	if err := m.Cancel(ctx, room.ID, bob); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-creator cancel error = %v", err)
	}
	if err := m.Cancel(ctx, room.ID, alice); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ := m.RoomState(ctx, room.ID)
	if got.Room.Status != RoomCancelled {
		t.Fatalf("status = %s, want cancelled", got.Room.Status)
	}
	if err := m.Cancel(ctx, room.ID, alice); !errors.Is(err, ErrRoomNotWaiting) {
		t.Fatalf("double-cancel error = %v", err)
	}
}

func TestCancelBlockedByHistory(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	room, alice, bob := twoHumanRoom(t, m)

	session, err := m.StartGame(ctx, room.ID, alice)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	playTicTacToeWin(t, m, session.ID, alice, bob)
	if _, err := m.Rematch(ctx, room.ID, bob); err != nil {
		t.Fatalf("rematch: %v", err)
	}
	if err := m.Cancel(ctx, room.ID, alice); !errors.Is(err, ErrHasSessions) {
		t.Fatalf("cancel-with-history error = %v", err)
	}
}

func TestRematchResetsRoomKeepsHistory(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	room, alice, bob := twoHumanRoom(t, m)

	session, err := m.StartGame(ctx, room.ID, alice)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.Rematch(ctx, room.ID, bob); !errors.Is(err, ErrRoomNotFinished) {
		t.Fatalf("mid-game rematch error = %v", err)
	}

	playTicTacToeWin(t, m, session.ID, alice, bob)
	if _, err := m.Rematch(ctx, room.ID, uuid.New()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider rematch error = %v", err)
	}

	reset, err := m.Rematch(ctx, room.ID, bob)
	if err != nil {
		t.Fatalf("rematch: %v", err)
	}
	if reset.Status != RoomWaiting || reset.StartedAt != nil || reset.FinishedAt != nil {
		t.Fatalf("reset room = %+v", reset)
	}
	view, _ := m.RoomState(ctx, room.ID)
	for _, p := range view.Participants {
		if p.Ready {
			t.Fatalf("participant %d still ready after rematch", p.PlayerNumber)
		}
	}

	// The first playthrough stays queryable.
	history, err := m.SessionState(ctx, session.ID)
	if err != nil {
		t.Fatalf("session state: %v", err)
	}
	if history.Session.Status != SessionFinished || len(history.Moves) != 5 {
		t.Fatalf("history = %+v with %d moves", history.Session, len(history.Moves))
	}

	// A fresh start yields a second, distinct session.
	if err := m.SetReady(ctx, room.ID, alice, true); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if err := m.SetReady(ctx, room.ID, bob, true); err != nil {
		t.Fatalf("ready: %v", err)
	}
	second, err := m.StartGame(ctx, room.ID, alice)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if second.ID == session.ID {
		t.Fatal("rematch reused the old session")
	}
	if second.State.Turn() != 1 {
		t.Fatalf("second game turn = %d, want 1", second.State.Turn())
	}
}

// sessionInsertFailStore refuses session inserts to exercise the failure
// path of a game start.
type sessionInsertFailStore struct {
	*MemoryStore
}

func (s *sessionInsertFailStore) InsertSession(context.Context, *Session) error {
	return errors.New("session insert refused")
}

func TestStartGameInsertFailureLeavesRoomWaiting(t *testing.T) {
	ctx := context.Background()
	store := &sessionInsertFailStore{MemoryStore: NewMemoryStore()}
	m := NewManager(store, zap.NewNop(), 1)
	room, alice, _ := twoHumanRoom(t, m)

	if _, err := m.StartGame(ctx, room.ID, alice); err == nil {
		t.Fatal("start succeeded despite a failed session insert")
	}
	got, err := store.LoadRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("load room: %v", err)
	}
	if got.Status != RoomWaiting || got.StartedAt != nil {
		t.Fatalf("room after failed start = %+v, want waiting", got)
	}
	if _, err := m.Join(ctx, room.ID, uuid.New()); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("room should still accept lifecycle calls, got %v", err)
	}
}

func TestEventTrail(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	room, alice, bob := twoHumanRoom(t, m)

	session, err := m.StartGame(ctx, room.ID, alice)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	playTicTacToeWin(t, m, session.ID, alice, bob)

	kinds := make(map[string]int)
	for _, e := range store.Events() {
		kinds[e.Type]++
	}
	if kinds["room_created"] != 1 || kinds["participant_joined"] != 1 || kinds["game_started"] != 1 {
		t.Fatalf("event kinds = %v", kinds)
	}
	if kinds["move_played"] != 5 || kinds["game_finished"] != 1 {
		t.Fatalf("event kinds = %v", kinds)
	}
}

func TestEventWriteFailuresAreNonFatal(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	store.EventFailures.Store(true)

	room, alice, bob := twoHumanRoom(t, m)
	session, err := m.StartGame(ctx, room.ID, alice)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	playTicTacToeWin(t, m, session.ID, alice, bob)

	view, err := m.SessionState(ctx, session.ID)
	if err != nil {
		t.Fatalf("session state: %v", err)
	}
	if view.Session.Status != SessionFinished {
		t.Fatalf("session = %+v", view.Session)
	}
	if events := store.Events(); len(events) != 0 {
		t.Fatalf("events recorded despite failures: %d", len(events))
	}
}
