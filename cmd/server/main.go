package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/csg33k/billed/internal/adapters/pdf"
	"github.com/csg33k/billed/internal/adapters/session"
	sqliteadapter "github.com/csg33k/billed/internal/adapters/sqlite"
	"github.com/csg33k/billed/internal/config"
	"github.com/csg33k/billed/internal/handlers"
	"github.com/csg33k/billed/internal/logging"
	"github.com/csg33k/billed/internal/ports"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logging.Setup(cfg.LogLevel)

	repo, err := sqliteadapter.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer repo.Close()

	var sessions ports.SessionStore = session.NewMemory()
	if cfg.Redis.Enabled {
		rs, err := session.ConnectRedis(ctx, session.RedisConfig{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
			TTL:  cfg.Redis.SessionTTL,
		})
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer rs.Close()
		sessions = rs
	}

	h := handlers.New(repo, sessions, pdf.Generator{}, cfg.MaxReceiptBytes)

	slog.Info("Billed running", "url", "http://localhost:"+cfg.Port)
	slog.Info("storage", "db", cfg.DBPath, "sessions", cfg.SessionBackend)
	if err := http.ListenAndServe(":"+cfg.Port, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
