// cmd/sync/main.go
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prepflow/inventory-intel/internal/config"
	"github.com/prepflow/inventory-intel/internal/ledger"
	"github.com/prepflow/inventory-intel/internal/possync"
	"github.com/prepflow/inventory-intel/internal/repository/postgres"
	"github.com/prepflow/inventory-intel/internal/service"
	"github.com/prepflow/inventory-intel/pkg/logger"
)

// Standalone POS synchronization daemon. Runs the sync cycle on the
// configured interval until interrupted.
func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	store, connections := buildBackends(cfg)

	window := time.Duration(cfg.Sync.ConflictWindowMS) * time.Millisecond
	resolver := possync.NewResolver(window, nil)
	provider := possync.NewSimulatedProvider(store, time.Now().UnixNano())
	engine := possync.NewEngine(provider, store, resolver, cfg.Sync.ConfidenceThreshold, nil)

	interval := time.Duration(cfg.Sync.IntervalSeconds) * time.Second
	syncService := service.NewSyncService(engine, connections, interval, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := syncService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Fatal().Err(err).Msg("sync daemon failed")
	}

	logger.Log.Info().Msg("sync daemon exiting")
}

func buildBackends(cfg *config.Config) (ledger.Store, service.ConnectionSource) {
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("database unavailable, using in-memory store")
		return ledger.NewMemoryStore(), service.StaticConnectionSource{
			{ID: "pos-main", Name: "Main Counter", Connected: true},
			{ID: "pos-bar", Name: "Bar Terminal", Connected: true},
		}
	}

	return postgres.NewLedgerRepository(db), postgres.NewCountRepository(db)
}
