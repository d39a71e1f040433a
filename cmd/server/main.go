package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/quizverse/duelroom/internal/config"
	"github.com/quizverse/duelroom/internal/database"
	"github.com/quizverse/duelroom/internal/duel"
	"github.com/quizverse/duelroom/internal/migrations"
	"github.com/quizverse/duelroom/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Core ---
	clock := clockwork.NewRealClock()
	bus := duel.NewBus()
	store := server.NewSQLiteStore(db)
	registry := duel.NewRegistry(bus, store, clock, logger, cfg.CodeMaxAttempts, cfg.RoomGracePeriod)
	coordinator := duel.NewCoordinator(registry, bus, store, clock, logger, cfg.MinPlayers)
	poller := duel.NewPoller(store, bus, clock, logger, cfg.ReconcileInterval)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, server.Deps{
		Logger:      logger,
		DB:          db,
		Registry:    registry,
		Coordinator: coordinator,
		Bus:         bus,
		Poller:      poller,
		Store:       store,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
