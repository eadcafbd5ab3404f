package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/alarmd/internal/config"
	"github.com/example/alarmd/internal/engine"
	httptransport "github.com/example/alarmd/internal/http"
	"github.com/example/alarmd/internal/persistence"
	"github.com/example/alarmd/internal/persistence/jsonfile"
	"github.com/example/alarmd/internal/persistence/sqlite"
	"github.com/example/alarmd/internal/platform/console"
	"github.com/example/alarmd/internal/platform/localnotify"
	"github.com/example/alarmd/internal/platform/systemalarm"
	"github.com/example/alarmd/internal/ring"
	"github.com/example/alarmd/internal/store"
	"github.com/example/alarmd/internal/trigger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	repo, cleanup, err := openRepository(cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	alarms := store.NewWithOptions(repo, nil, nil, logger)
	if err := alarms.Load(ctx); err != nil {
		logger.Error("failed to load alarms", "error", err)
		os.Exit(1)
	}

	notifications := localnotify.New(nil, nil, logger)
	defer notifications.Close()

	scheduler := trigger.NewScheduler(notifications, systemalarm.Unavailable{}, logger)
	registry := trigger.NewRegistry()

	session := ring.NewSession(console.NewBell(os.Stdout), console.NewHaptics(logger), cfg.HapticInterval, logger)
	defer session.Close(context.Background())

	eng := engine.New(alarms, scheduler, registry, session, nil, cfg.SnoozeDuration, logger)
	if err := eng.Reconcile(ctx); err != nil {
		logger.Error("failed to reconcile triggers at startup", "error", err)
		os.Exit(1)
	}

	go eng.Run(ctx, notifications.Events())

	alarmHandler := httptransport.NewAlarmHandler(eng, nil, logger)
	ringHandler := httptransport.NewRingHandler(eng, nil, logger)
	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Alarms:     alarmHandler,
		Ring:       ringHandler,
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("alarm daemon listening", "addr", server.Addr, "storage", cfg.Storage)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func openRepository(cfg config.Config, logger *slog.Logger) (persistence.Repository, func(), error) {
	switch cfg.Storage {
	case config.StorageJSON:
		return jsonfile.New(cfg.JSONPath), func() {}, nil
	default:
		storage, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.Migrate(context.Background()); err != nil {
			storage.Close()
			return nil, nil, err
		}
		cleanup := func() {
			if cerr := storage.Close(); cerr != nil {
				logger.Error("failed to close storage", "error", cerr)
			}
		}
		return storage, cleanup, nil
	}
}
