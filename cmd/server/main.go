// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepflow/inventory-intel/internal/api"
	"github.com/prepflow/inventory-intel/internal/cache"
	"github.com/prepflow/inventory-intel/internal/config"
	"github.com/prepflow/inventory-intel/internal/forecast"
	"github.com/prepflow/inventory-intel/internal/ledger"
	"github.com/prepflow/inventory-intel/internal/parlevel"
	"github.com/prepflow/inventory-intel/internal/possync"
	"github.com/prepflow/inventory-intel/internal/repository/postgres"
	"github.com/prepflow/inventory-intel/internal/service"
	"github.com/prepflow/inventory-intel/internal/variance"
	"github.com/prepflow/inventory-intel/internal/waste"
	"github.com/prepflow/inventory-intel/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	store, suppliers, connections, counts := buildBackends(cfg)

	reportCache, err := cache.NewVarianceReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, running without report cache")
		reportCache = cache.NewNoopVarianceReportCache()
	}

	// Analytic engines
	engine := forecast.NewEngine(nil, nil)
	optimizer := parlevel.NewOptimizer(suppliers, nil)
	predictor := waste.NewPredictor(nil, waste.Environment{}, nil)
	detector := variance.NewDetector(varianceHistory, nil)

	// POS synchronization
	window := time.Duration(cfg.Sync.ConflictWindowMS) * time.Millisecond
	resolver := possync.NewResolver(window, nil)
	provider := possync.NewSimulatedProvider(store, time.Now().UnixNano())
	syncEngine := possync.NewEngine(provider, store, resolver, cfg.Sync.ConfidenceThreshold, nil)

	interval := time.Duration(cfg.Sync.IntervalSeconds) * time.Second
	lookback := time.Duration(cfg.Forecast.LookbackDays) * 24 * time.Hour
	services := &api.Services{
		ForecastService:     service.NewForecastService(store, engine, optimizer, predictor, lookback, nil),
		VarianceService:     service.NewVarianceService(store, detector, varianceHistory, reportCache, counts, nil),
		SyncService:         service.NewSyncService(syncEngine, connections, interval, nil),
		DefaultHorizonHours: float64(cfg.Forecast.DefaultHorizonHours),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// varianceHistory is process-wide so repeated reports see trend movement.
var varianceHistory = variance.NewMemoryHistory()

// buildBackends wires Postgres when reachable and falls back to the
// in-memory store for local development. Without Postgres there is no
// stored-count source; variance requests must carry counts inline.
func buildBackends(cfg *config.Config) (ledger.Store, parlevel.SupplierDirectory, service.ConnectionSource, service.CountSource) {
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("database unavailable, using in-memory store")
		return ledger.NewMemoryStore(), parlevel.StaticSupplierDirectory{}, service.StaticConnectionSource{
			{ID: "pos-main", Name: "Main Counter", Connected: true},
			{ID: "pos-bar", Name: "Bar Terminal", Connected: true},
		}, nil
	}

	countRepo := postgres.NewCountRepository(db)
	return postgres.NewLedgerRepository(db), postgres.NewSupplierRepository(db), countRepo, countRepo
}
