package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"family-games/internal/game"
)

// SubmitMove validates and applies one human move, then synchronously plays
// any bot turns that follow. Rejections (OutOfTurn, IllegalMove,
// SequenceConflict) leave stored state untouched and are never retried
// internally; the caller resubmits.
func (m *Manager) SubmitMove(ctx context.Context, sessionID, userID uuid.UUID, payload []byte) (*Session, error) {
	// The session is read once without the lock to learn which room
	// serializes it, then re-read under that lock.
	peek, err := m.store.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lock := m.roomLock(peek.RoomID)
	lock.Lock()
	defer lock.Unlock()

	session, err := m.store.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != SessionActive {
		return nil, ErrSessionFinished
	}
	room, err := m.store.LoadRoom(ctx, session.RoomID)
	if err != nil {
		return nil, err
	}
	participants, err := m.store.ListActiveParticipants(ctx, session.RoomID)
	if err != nil {
		return nil, err
	}
	var actor *Participant
	for i := range participants {
		p := &participants[i]
		if p.UserID != nil && *p.UserID == userID {
			actor = p
			break
		}
	}
	if actor == nil {
		return nil, fmt.Errorf("not a participant in this game: %w", ErrForbidden)
	}

	rules, err := game.RulesFor(session.GameType)
	if err != nil {
		return nil, err
	}
	move, err := rules.DecodeMove(payload)
	if err != nil {
		return nil, err
	}
	next, err := rules.Apply(session.State, move, actor.PlayerNumber)
	if err != nil {
		return nil, err
	}
	if err := m.appendMove(ctx, session, &actor.ID, actor.PlayerNumber, move, next); err != nil {
		return nil, err
	}
	session.State = next

	if out := rules.Outcome(next); out.Terminal() {
		if err := m.finishSession(ctx, room, session, participants, out); err != nil {
			return nil, err
		}
	} else if err := m.runBotTurns(ctx, room, session, participants, rules); err != nil {
		return nil, err
	}
	if err := m.store.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// appendMove persists one ply with the next sequence number. The unique
// (session, move number) constraint downstream turns a lost race into
// ErrSequenceConflict before any other write happens.
func (m *Manager) appendMove(ctx context.Context, session *Session, participantID *uuid.UUID, playerNumber int, payload game.Move, after game.State) error {
	count, err := m.store.CountMoves(ctx, session.ID)
	if err != nil {
		return err
	}
	record := &Move{
		ID:            uuid.New(),
		SessionID:     session.ID,
		ParticipantID: copyUUID(participantID),
		PlayerNumber:  playerNumber,
		MoveNumber:    count + 1,
		Payload:       payload,
		StateAfter:    after.Clone(),
		CreatedAt:     timeNowUTC(),
	}
	if err := m.store.AppendMove(ctx, record); err != nil {
		return err
	}
	m.recordEvent(ctx, session.RoomID, &session.ID, "move_played", map[string]any{
		"player_number": playerNumber,
		"move_number":   record.MoveNumber,
	})
	return nil
}

// runBotTurns plays consecutive bot turns until the turn belongs to a human
// or the game ends. The iteration cap guards against a roster that would
// otherwise self-extend forever.
func (m *Manager) runBotTurns(ctx context.Context, room *Room, session *Session, participants []Participant, rules game.Rules) error {
	for plays := 0; plays < len(participants); plays++ {
		out := rules.Outcome(session.State)
		if out.Terminal() {
			return nil
		}
		bot := participantByNumber(participants, session.State.Turn())
		if bot == nil || !bot.Bot {
			return nil
		}

		m.randMu.Lock()
		move, err := game.ChooseMove(rules, session.State, bot.PlayerNumber, bot.BotDifficulty, m.rng)
		m.randMu.Unlock()
		if err != nil {
			if errors.Is(err, game.ErrNoLegalMove) {
				// The session should never reach a terminal board with the
				// bot still to act; log loudly and stop rather than fail
				// the triggering move.
				m.logger.Error("bot asked to move on a terminal board",
					zap.String("session_id", session.ID.String()),
					zap.Error(err))
				return nil
			}
			return err
		}
		next, err := rules.Apply(session.State, move, bot.PlayerNumber)
		if err != nil {
			return err
		}
		// Bot moves carry no participant identity, only a player number.
		if err := m.appendMove(ctx, session, nil, bot.PlayerNumber, move, next); err != nil {
			return err
		}
		session.State = next

		if out := rules.Outcome(next); out.Terminal() {
			return m.finishSession(ctx, room, session, participants, out)
		}
	}
	return nil
}

// finishSession snapshots the final state, resolves the winner and closes
// the room. Human winners are recorded by identity, bot winners by player
// number only.
func (m *Manager) finishSession(ctx context.Context, room *Room, session *Session, participants []Participant, out game.Outcome) error {
	now := timeNowUTC()
	session.Status = SessionFinished
	session.FinalState = session.State.Clone()
	session.IsDraw = out.Draw
	session.FinishedAt = &now
	session.DurationSecs = int(now.Sub(session.StartedAt).Seconds())
	if out.Winner != 0 {
		winner := participantByNumber(participants, out.Winner)
		if winner != nil && !winner.Bot && winner.UserID != nil {
			session.WinnerUserID = copyUUID(winner.UserID)
		} else {
			session.WinnerNumber = out.Winner
		}
	}

	room.Status = RoomFinished
	room.FinishedAt = &now
	if err := m.store.SaveRoom(ctx, room); err != nil {
		return err
	}
	m.recordEvent(ctx, room.ID, &session.ID, "game_finished", map[string]any{
		"winner": out.Winner,
		"draw":   out.Draw,
	})
	return nil
}
