package db

import (
	"encoding/json"

	"gorm.io/datatypes"

	"family-games/internal/engine"
	"family-games/internal/game"
)

func roomToModel(r *engine.Room) *Room {
	record := &Room{
		ID:         r.ID,
		Name:       r.Name,
		GameType:   string(r.GameType),
		Status:     string(r.Status),
		Capacity:   r.Capacity,
		IsPublic:   r.Public,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  r.CreatedAt,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if r.JoinCode != "" {
		code := r.JoinCode
		record.JoinCode = &code
	}
	return record
}

func roomFromModel(record *Room) *engine.Room {
	room := &engine.Room{
		ID:         record.ID,
		Name:       record.Name,
		GameType:   game.Type(record.GameType),
		Status:     engine.RoomStatus(record.Status),
		Capacity:   record.Capacity,
		Public:     record.IsPublic,
		CreatedBy:  record.CreatedBy,
		CreatedAt:  record.CreatedAt,
		StartedAt:  record.StartedAt,
		FinishedAt: record.FinishedAt,
	}
	if record.JoinCode != nil {
		room.JoinCode = *record.JoinCode
	}
	return room
}

func participantToModel(p *engine.Participant) *Participant {
	record := &Participant{
		ID:           p.ID,
		RoomID:       p.RoomID,
		UserID:       p.UserID,
		PlayerNumber: p.PlayerNumber,
		IsReady:      p.Ready,
		IsActive:     p.Active,
		IsBot:        p.Bot,
		JoinedAt:     p.JoinedAt,
		LeftAt:       p.LeftAt,
	}
	if p.BotDifficulty != "" {
		difficulty := string(p.BotDifficulty)
		record.BotDifficulty = &difficulty
	}
	return record
}

func participantFromModel(record *Participant) *engine.Participant {
	p := &engine.Participant{
		ID:           record.ID,
		RoomID:       record.RoomID,
		UserID:       record.UserID,
		PlayerNumber: record.PlayerNumber,
		Ready:        record.IsReady,
		Active:       record.IsActive,
		Bot:          record.IsBot,
		JoinedAt:     record.JoinedAt,
		LeftAt:       record.LeftAt,
	}
	if record.BotDifficulty != nil {
		p.BotDifficulty = game.Difficulty(*record.BotDifficulty)
	}
	return p
}

func sessionToModel(s *engine.Session) (*Session, error) {
	state, err := json.Marshal(s.State)
	if err != nil {
		return nil, err
	}
	record := &Session{
		ID:                 s.ID,
		RoomID:             s.RoomID,
		GameType:           string(s.GameType),
		Status:             string(s.Status),
		GameState:          datatypes.JSON(state),
		WinnerUserID:       s.WinnerUserID,
		WinnerPlayerNumber: s.WinnerNumber,
		IsDraw:             s.IsDraw,
		HasBots:            s.HasBots,
		StartedAt:          s.StartedAt,
		FinishedAt:         s.FinishedAt,
		DurationSeconds:    s.DurationSecs,
	}
	if s.FinalState != nil {
		final, err := json.Marshal(s.FinalState)
		if err != nil {
			return nil, err
		}
		record.FinalState = datatypes.JSON(final)
	}
	return record, nil
}

func sessionFromModel(record *Session) (*engine.Session, error) {
	rules, err := game.RulesFor(game.Type(record.GameType))
	if err != nil {
		return nil, err
	}
	state, err := rules.DecodeState(record.GameState)
	if err != nil {
		return nil, err
	}
	session := &engine.Session{
		ID:           record.ID,
		RoomID:       record.RoomID,
		GameType:     game.Type(record.GameType),
		Status:       engine.SessionStatus(record.Status),
		State:        state,
		WinnerUserID: record.WinnerUserID,
		WinnerNumber: record.WinnerPlayerNumber,
		IsDraw:       record.IsDraw,
		HasBots:      record.HasBots,
		StartedAt:    record.StartedAt,
		FinishedAt:   record.FinishedAt,
		DurationSecs: record.DurationSeconds,
	}
	if len(record.FinalState) > 0 {
		final, err := rules.DecodeState(record.FinalState)
		if err != nil {
			return nil, err
		}
		session.FinalState = final
	}
	return session, nil
}

func moveToModel(m *engine.Move) (*Move, error) {
	payload, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, err
	}
	state, err := json.Marshal(m.StateAfter)
	if err != nil {
		return nil, err
	}
	return &Move{
		ID:            m.ID,
		SessionID:     m.SessionID,
		ParticipantID: m.ParticipantID,
		PlayerNumber:  m.PlayerNumber,
		MoveNumber:    m.MoveNumber,
		MoveData:      datatypes.JSON(payload),
		StateAfter:    datatypes.JSON(state),
		CreatedAt:     m.CreatedAt,
		TimeTakenMS:   m.TimeTakenMS,
	}, nil
}

func moveFromModel(record *Move, gameType game.Type) (*engine.Move, error) {
	rules, err := game.RulesFor(gameType)
	if err != nil {
		return nil, err
	}
	payload, err := rules.DecodeMove(record.MoveData)
	if err != nil {
		return nil, err
	}
	state, err := rules.DecodeState(record.StateAfter)
	if err != nil {
		return nil, err
	}
	return &engine.Move{
		ID:            record.ID,
		SessionID:     record.SessionID,
		ParticipantID: record.ParticipantID,
		PlayerNumber:  record.PlayerNumber,
		MoveNumber:    record.MoveNumber,
		Payload:       payload,
		StateAfter:    state,
		CreatedAt:     record.CreatedAt,
		TimeTakenMS:   record.TimeTakenMS,
	}, nil
}

func eventToModel(e *engine.Event) (*Event, error) {
	payload := e.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        e.ID,
		RoomID:    e.RoomID,
		SessionID: e.SessionID,
		Type:      e.Type,
		Payload:   datatypes.JSON(raw),
		CreatedAt: e.CreatedAt,
	}, nil
}
