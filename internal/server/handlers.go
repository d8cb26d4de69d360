package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"family-games/internal/game"
)

type createRoomRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	GameType string `json:"game_type" binding:"required"`
	Capacity int    `json:"capacity" binding:"omitempty,min=2,max=10"`
	Public   bool   `json:"public"`
}

type joinByCodeRequest struct {
	JoinCode string `json:"join_code" binding:"required,len=6"`
}

type readyRequest struct {
	Ready bool `json:"ready"`
}

type addBotRequest struct {
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

type moveRequest struct {
	Move json.RawMessage `json:"move" binding:"required"`
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}
	var req createRoomRequest
	if !bindJSON(c, &req, bindMessages{
		"Name":     {"required": "room name is required", "max": "room name is too long"},
		"GameType": {"required": "game type is required"},
	}, "invalid room request") {
		return
	}
	room, err := s.manager.CreateRoom(c.Request.Context(), user, req.Name, game.Type(req.GameType), req.Capacity, req.Public)
	if err != nil {
		s.replyError(c, err)
		return
	}
	s.logger.Info("room created",
		zap.String("room_id", room.ID.String()),
		zap.String("game_type", string(room.GameType)))
	c.JSON(http.StatusCreated, roomJSON(room))
}

func (s *Server) handleRoomState(c *gin.Context) {
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := s.manager.RoomState(c.Request.Context(), roomID)
	if err != nil {
		s.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, roomViewJSON(view))
}

func (s *Server) handleJoin(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	seat, err := s.manager.Join(c.Request.Context(), roomID, user)
	if err != nil {
		s.replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, participantJSON(seat))
}

func (s *Server) handleJoinByCode(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}
	var req joinByCodeRequest
	if !bindJSON(c, &req, bindMessages{
		"JoinCode": {"required": "join code is required", "len": "join codes are 6 characters"},
	}, "invalid join request") {
		return
	}
	seat, err := s.manager.JoinByCode(c.Request.Context(), req.JoinCode, user)
	if err != nil {
		s.replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, participantJSON(seat))
}

func (s *Server) handleSetReady(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req readyRequest
	if !bindJSON(c, &req, nil, "invalid ready request") {
		return
	}
	if err := s.manager.SetReady(c.Request.Context(), roomID, user, req.Ready); err != nil {
		s.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": req.Ready})
}

func (s *Server) handleStartGame(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	session, err := s.manager.StartGame(c.Request.Context(), roomID, user)
	if err != nil {
		s.replyError(c, err)
		return
	}
	s.logger.Info("game started",
		zap.String("room_id", roomID.String()),
		zap.String("session_id", session.ID.String()))
	c.JSON(http.StatusCreated, sessionJSON(session))
}

func (s *Server) handleSubmitMove(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req moveRequest
	if !bindJSON(c, &req, bindMessages{
		"Move": {"required": "move payload is required"},
	}, "invalid move request") {
		return
	}
	session, err := s.manager.SubmitMove(c.Request.Context(), sessionID, user, req.Move)
	if err != nil {
		s.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionJSON(session))
}

func (s *Server) handleSessionState(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := s.manager.SessionState(c.Request.Context(), sessionID)
	if err != nil {
		s.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionViewJSON(view))
}

func (s *Server) handleLeave(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.manager.Leave(c.Request.Context(), roomID, user); err != nil {
		s.replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRematch(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	room, err := s.manager.Rematch(c.Request.Context(), roomID, user)
	if err != nil {
		s.replyError(c, err)
		return
	}
	c.JSON(http.StatusOK, roomJSON(room))
}

func (s *Server) handleCancelRoom(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.manager.Cancel(c.Request.Context(), roomID, user); err != nil {
		s.replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAddBot(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req addBotRequest
	if !bindJSON(c, &req, bindMessages{
		"Difficulty": {"oneof": "difficulty must be easy, medium or hard"},
	}, "invalid bot request") {
		return
	}
	seat, err := s.manager.AddBot(c.Request.Context(), roomID, user, game.Difficulty(req.Difficulty))
	if err != nil {
		s.replyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, participantJSON(seat))
}

func (s *Server) handleRemoveBot(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	botID, ok := pathID(c, "botID")
	if !ok {
		return
	}
	if err := s.manager.RemoveBot(c.Request.Context(), roomID, user, botID); err != nil {
		s.replyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
