package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trailstate/trailstate/internal/config"
	"github.com/trailstate/trailstate/internal/logger"
	mcpserver "github.com/trailstate/trailstate/internal/mcp"
	"github.com/trailstate/trailstate/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting trailstate MCP server",
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	var store storage.Store
	if cfg.RedisURL != "" {
		redisStore, err := storage.NewRedisStore(cfg.RedisURL, cfg.DataDir, cfg.SessionTTL, log)
		if err != nil {
			log.Error("Failed to configure storage", "error", err)
			os.Exit(1)
		}

		waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err = redisStore.WaitForConnection(waitCtx)
		waitCancel()
		if err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		log.Info("Storage connection established successfully")
		store = redisStore
	} else {
		// Ephemeral mode for local experiments and client development.
		store = storage.NewMemoryStore()
		log.Warn("REDIS_URL is not set, sessions will not survive this process")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := mcpserver.New(store, log)
	if err := server.Run(ctx); err != nil {
		log.Error("MCP server failed", "error", err)
		os.Exit(1)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	log.Info("MCP server exited")
}
