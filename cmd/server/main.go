package main

import (
	"log"
	"net/http"
	"os"

	"go.uber.org/zap"

	"family-games/internal/config"
	"family-games/internal/db"
	"family-games/internal/engine"
	"family-games/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}
	defer logger.Sync()

	// Without DATABASE_URL the server runs on the in-memory store; state is
	// lost on restart, which is fine for local play.
	var store engine.Store = engine.NewMemoryStore()
	if os.Getenv("DATABASE_URL") != "" {
		conn, err := db.Open()
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		if err := db.Tune(conn, cfg); err != nil {
			logger.Fatal("database pool setup failed", zap.Error(err))
		}
		if err := db.Migrate(conn); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
		store = db.NewStore(conn)
	} else {
		logger.Warn("DATABASE_URL is not set; using in-memory store")
	}

	manager := engine.NewManager(store, logger, cfg.BotSeed)
	srv := server.New(manager, logger)

	addr := ":" + cfg.Port
	logger.Info("family-games server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
