package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/prepflow/inventory-intel/internal/possync"
)

// resolutionHistoryLimit bounds the in-process audit trail of conflict
// resolutions exposed over the API.
const resolutionHistoryLimit = 200

// ConnectionSource lists the configured POS channels and records sync
// outcomes. The Postgres repository implements it; a static slice works for
// single-process deployments.
type ConnectionSource interface {
	ListConnections(ctx context.Context) ([]domain.PosConnection, error)
	MarkSynced(ctx context.Context, posID string, at time.Time, connected bool) error
}

// StaticConnectionSource serves a fixed set of channels and discards sync
// outcomes.
type StaticConnectionSource []domain.PosConnection

func (s StaticConnectionSource) ListConnections(ctx context.Context) ([]domain.PosConnection, error) {
	return append([]domain.PosConnection(nil), s...), nil
}

func (s StaticConnectionSource) MarkSynced(ctx context.Context, posID string, at time.Time, connected bool) error {
	return nil
}

// SyncService drives the POS synchronization engine against the configured
// channels.
type SyncService struct {
	engine      *possync.Engine
	connections ConnectionSource
	interval    time.Duration
	now         func() time.Time

	mu          sync.Mutex
	resolutions []domain.ConflictResolution
}

func NewSyncService(engine *possync.Engine, connections ConnectionSource, interval time.Duration, now func() time.Time) *SyncService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &SyncService{
		engine:      engine,
		connections: connections,
		interval:    interval,
		now:         now,
	}
}

// RunOnce executes one sync cycle covering the trailing interval.
func (s *SyncService) RunOnce(ctx context.Context) (possync.CycleResult, error) {
	return s.runCycleSince(ctx, s.now().Add(-s.interval))
}

func (s *SyncService) runCycleSince(ctx context.Context, since time.Time) (possync.CycleResult, error) {
	connections, err := s.connections.ListConnections(ctx)
	if err != nil {
		return possync.CycleResult{}, err
	}

	result, err := s.engine.RunCycle(ctx, connections, since)
	if err != nil {
		return result, err
	}

	for _, channel := range result.Channels {
		if err := s.connections.MarkSynced(ctx, channel.PosID, result.CompletedAt, channel.Connected); err != nil {
			log.Warn().Err(err).Str("pos_id", channel.PosID).Msg("failed to record channel sync state")
		}
	}

	s.recordResolutions(result.Resolutions)

	return result, nil
}

func (s *SyncService) recordResolutions(resolutions []domain.ConflictResolution) {
	if len(resolutions) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolutions = append(s.resolutions, resolutions...)
	if excess := len(s.resolutions) - resolutionHistoryLimit; excess > 0 {
		s.resolutions = append([]domain.ConflictResolution(nil), s.resolutions[excess:]...)
	}
}

// Resolutions returns the audit trail of conflict resolutions from recent
// cycles, newest last.
func (s *SyncService) Resolutions() []domain.ConflictResolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ConflictResolution(nil), s.resolutions...)
}

// Run loops sync cycles on the configured interval until the context ends.
// Each cycle picks up where the previous successful one left off.
func (s *SyncService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("starting pos auto-sync")

	since := s.now().Add(-s.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cycleStart := s.now()
			result, err := s.runCycleSince(ctx, since)
			if err != nil {
				log.Error().Err(err).Msg("sync cycle failed")
				continue
			}
			since = cycleStart
			log.Info().
				Int("reports", result.ReportCount).
				Int("resolutions", len(result.Resolutions)).
				Int("applied", result.Applied).
				Msg("sync cycle complete")
		}
	}
}

// CheckIntegrity compares the ledger against every channel for one item.
func (s *SyncService) CheckIntegrity(ctx context.Context, itemID string) ([]possync.Discrepancy, error) {
	connections, err := s.connections.ListConnections(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.CheckIntegrity(ctx, itemID, connections)
}
