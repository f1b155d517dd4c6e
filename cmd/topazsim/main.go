// Command topazsim serves the Topaz business simulation over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/talgya/topaz-sim/internal/api"
	"github.com/talgya/topaz-sim/internal/config"
	"github.com/talgya/topaz-sim/internal/engine"
	"github.com/talgya/topaz-sim/internal/persistence"
)

func main() {
	configPath := flag.String("config", os.Getenv("TOPAZ_CONFIG"), "path to YAML config file")
	memory := flag.Bool("memory", false, "keep games in memory only")
	flag.Parse()

	// A missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	slog.SetDefault(config.NewLogger(os.Stderr, level))

	slog.Info("Topaz business simulation",
		"addr", cfg.Addr,
		"seed", cfg.Seed,
		"companies", cfg.Companies,
		"allocation", cfg.Allocation,
	)

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if !*memory {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			slog.Error("failed to create data directory", "error", err)
			os.Exit(1)
		}
		db, err = persistence.Open(cfg.DBPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", cfg.DBPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Stream hub ────────────────────────────────────────────────────
	hub := api.NewHub()
	go hub.Run(ctx)

	// ── HTTP API ──────────────────────────────────────────────────────
	server := &api.Server{
		DB:         db,
		Hub:        hub,
		Seed:       cfg.Seed,
		Companies:  cfg.Companies,
		Allocation: engine.Allocation(cfg.Allocation),
		Origins:    cfg.CORSOrigins,
		RateLimit:  cfg.RateLimit,
	}
	if err := server.ListenAndServe(ctx, cfg.Addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
