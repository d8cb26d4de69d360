package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"family-games/internal/engine"
	"family-games/internal/game"
)

// replyError maps engine error kinds to HTTP statuses. Anything unmapped is
// an internal failure and is logged rather than echoed.
func (s *Server) replyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, engine.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrOutOfTurn),
		errors.Is(err, engine.ErrSequenceConflict),
		errors.Is(err, engine.ErrRoomFull),
		errors.Is(err, engine.ErrAlreadyJoined),
		errors.Is(err, engine.ErrNotReady),
		errors.Is(err, engine.ErrInsufficientPlayers),
		errors.Is(err, engine.ErrRoomNotWaiting),
		errors.Is(err, engine.ErrRoomNotFinished),
		errors.Is(err, engine.ErrSessionFinished),
		errors.Is(err, engine.ErrHasSessions):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrIllegalMove),
		errors.Is(err, game.ErrUnknownGame),
		errors.Is(err, engine.ErrBotsUnsupported):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func roomJSON(room *engine.Room) gin.H {
	out := gin.H{
		"id":         room.ID,
		"name":       room.Name,
		"game_type":  room.GameType,
		"status":     room.Status,
		"capacity":   room.Capacity,
		"public":     room.Public,
		"created_by": room.CreatedBy,
		"created_at": room.CreatedAt,
	}
	if room.JoinCode != "" {
		out["join_code"] = room.JoinCode
	}
	if room.StartedAt != nil {
		out["started_at"] = room.StartedAt
	}
	if room.FinishedAt != nil {
		out["finished_at"] = room.FinishedAt
	}
	return out
}

func participantJSON(p *engine.Participant) gin.H {
	out := gin.H{
		"id":            p.ID,
		"room_id":       p.RoomID,
		"player_number": p.PlayerNumber,
		"ready":         p.Ready,
		"active":        p.Active,
		"bot":           p.Bot,
		"joined_at":     p.JoinedAt,
	}
	if p.UserID != nil {
		out["user_id"] = p.UserID
	}
	if p.Bot {
		out["difficulty"] = p.BotDifficulty
	}
	return out
}

// sessionJSON renders a session with its state redacted for clients; hidden
// fields such as the wordle target stay server-side until the game is over.
func sessionJSON(session *engine.Session) gin.H {
	out := gin.H{
		"id":         session.ID,
		"room_id":    session.RoomID,
		"game_type":  session.GameType,
		"status":     session.Status,
		"state":      session.State.Public(),
		"is_draw":    session.IsDraw,
		"has_bots":   session.HasBots,
		"started_at": session.StartedAt,
	}
	if session.FinalState != nil {
		out["final_state"] = session.FinalState.Public()
	}
	if session.WinnerUserID != nil {
		out["winner_user_id"] = session.WinnerUserID
	}
	if session.WinnerNumber != 0 {
		out["winner_player_number"] = session.WinnerNumber
	}
	if session.FinishedAt != nil {
		out["finished_at"] = session.FinishedAt
		out["duration_seconds"] = session.DurationSecs
	}
	return out
}

func roomViewJSON(view *engine.RoomView) gin.H {
	participants := make([]gin.H, 0, len(view.Participants))
	for i := range view.Participants {
		participants = append(participants, participantJSON(&view.Participants[i]))
	}
	out := gin.H{
		"room":         roomJSON(view.Room),
		"participants": participants,
	}
	if view.Session != nil {
		out["session"] = sessionJSON(view.Session)
	}
	return out
}

func sessionViewJSON(view *engine.SessionView) gin.H {
	moves := make([]gin.H, 0, len(view.Moves))
	for i := range view.Moves {
		m := &view.Moves[i]
		entry := gin.H{
			"move_number":   m.MoveNumber,
			"player_number": m.PlayerNumber,
			"move":          m.Payload,
			"state_after":   m.StateAfter.Public(),
			"created_at":    m.CreatedAt,
		}
		if m.ParticipantID != nil {
			entry["participant_id"] = m.ParticipantID
		}
		moves = append(moves, entry)
	}
	out := sessionJSON(view.Session)
	out["moves"] = moves
	return out
}
