package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"family-games/internal/engine"
)

// Server is the thin request-handling layer over the engine. It binds and
// validates requests, maps engine errors to HTTP statuses and renders public
// state; all game semantics live in internal/engine.
type Server struct {
	manager *engine.Manager
	logger  *zap.Logger
}

func New(manager *engine.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{manager: manager, logger: logger}
}

func (s *Server) Handler() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	api := router.Group("/api")
	api.POST("/rooms", s.handleCreateRoom)
	api.POST("/rooms/join", s.handleJoinByCode)
	api.GET("/rooms/:id", s.handleRoomState)
	api.POST("/rooms/:id/join", s.handleJoin)
	api.POST("/rooms/:id/ready", s.handleSetReady)
	api.POST("/rooms/:id/start", s.handleStartGame)
	api.POST("/rooms/:id/leave", s.handleLeave)
	api.POST("/rooms/:id/rematch", s.handleRematch)
	api.DELETE("/rooms/:id", s.handleCancelRoom)
	api.POST("/rooms/:id/bots", s.handleAddBot)
	api.DELETE("/rooms/:id/bots/:botID", s.handleRemoveBot)
	api.GET("/sessions/:id", s.handleSessionState)
	api.POST("/sessions/:id/moves", s.handleSubmitMove)
	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
