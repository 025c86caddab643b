package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/wfunc/gomind/cache"
	"github.com/wfunc/gomind/config"
	"github.com/wfunc/gomind/game"
	"github.com/wfunc/gomind/logger"
	"github.com/wfunc/gomind/monitor"
	"github.com/wfunc/gomind/persistence"
	"github.com/wfunc/gomind/server"
	"github.com/wfunc/gomind/services"
	"github.com/wfunc/gomind/state"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Init("info")
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	gameCfg, err := gameConfig(cfg.Game)
	if err != nil {
		logger.Log.Fatalf("Invalid game configuration: %v", err)
	}

	// Initialize Database
	db, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Log.Infof("Database %q ready.", cfg.Database.Driver)

	var snapshots cache.SnapshotStore = cache.NoopStore{}
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(context.Background(), cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to redis: %v", err)
		}
		snapshots = cache.NewRedisStore(client, cfg.Redis.SnapshotTTL)
	}
	defer snapshots.Close()

	gameServer := server.NewGameServer(server.Options{
		Server:    cfg.Server,
		Game:      gameCfg,
		NewPolicy: policyFactory(cfg.Game.Seed),
		Records:   services.NewRecordService(db),
		Snapshots: snapshots,
		Monitor:   monitor.NewMonitor("gomind"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- gameServer.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	case <-ctx.Done():
		logger.Log.Info("Shutting down.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := gameServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warnf("Shutdown: %v", err)
	}
}

func gameConfig(cfg config.GameConfig) (state.Config, error) {
	capture, err := game.ParseCaptureRule(cfg.CaptureRule)
	if err != nil {
		return state.Config{}, err
	}
	illegal, err := state.ParseIllegalMovePolicy(cfg.IllegalMove)
	if err != nil {
		return state.Config{}, err
	}
	return state.Config{
		BoardSize:   cfg.BoardSize,
		Rules:       game.Rules{Capture: capture},
		IllegalMove: illegal,
		MaxMoves:    cfg.MaxMoves,
	}, nil
}

// policyFactory gives every session its own random opponent. A non-zero
// seed makes the sequence of sessions reproducible.
func policyFactory(seed int64) func() game.Policy {
	var n atomic.Int64
	return func() game.Policy {
		if seed == 0 {
			return game.NewRandomPolicy(0)
		}
		return game.NewRandomPolicy(seed + n.Add(1) - 1)
	}
}
