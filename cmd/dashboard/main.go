package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"debate-dashboard/internal/backend"
	"debate-dashboard/internal/config"
	"debate-dashboard/internal/dashboard"
	"debate-dashboard/internal/db"
	"debate-dashboard/internal/listener"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open()
	if err != nil {
		log.Printf("running without database: %v", err)
		conn = nil
	} else {
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
			sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
			sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
			sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second)
		}
	}

	client := backend.NewClient(cfg.BackendURL)
	srv := dashboard.New(client, conn, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.PushEnabled {
		events := listener.New(cfg.EventsURL, listener.Handlers{
			VoteUpdate:       srv.HandleVoteUpdate,
			DebateStatus:     srv.HandleDebateStatus,
			AssignmentsReady: srv.HandleAssignmentsReady,
			DebateListUpdate: srv.HandleDebateListUpdate,
			Record:           srv.RecordEvent,
		}, time.Duration(cfg.ReconnectMaxSeconds)*time.Second)
		go events.Run(ctx)
		srv.Refresh()
	} else {
		poller := listener.NewPoller(time.Duration(cfg.PollIntervalSeconds)*time.Second, srv.Refresh)
		go poller.Run(ctx)
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Printf("debate dashboard listening on %s backend=%s", addr, cfg.BackendURL)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
