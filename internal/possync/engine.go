package possync

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/prepflow/inventory-intel/internal/ledger"
)

// DefaultConfidenceThreshold gates automatic ledger writes.
const DefaultConfidenceThreshold = 0.8

// CycleResult summarizes one synchronization pass across all channels.
type CycleResult struct {
	Resolutions []domain.ConflictResolution `json:"resolutions"`
	Applied     int                         `json:"applied"`
	ReportCount int                         `json:"report_count"`
	Channels    []ChannelStatus             `json:"channels"`
	CompletedAt time.Time                   `json:"completed_at"`
}

// ChannelStatus records how one POS channel fared during a cycle.
type ChannelStatus struct {
	PosID     string `json:"pos_id"`
	Connected bool   `json:"connected"`
	Reports   int    `json:"reports"`
	Err       string `json:"error,omitempty"`
}

// Discrepancy is a disagreement between the ledger and one channel's
// reported on-hand level.
type Discrepancy struct {
	PosID  string  `json:"pos_id"`
	ItemID string  `json:"item_id"`
	Delta  float64 `json:"delta"` // channel quantity minus ledger quantity
}

// Engine drives the multi-channel sync cycle: fetch, group, resolve, apply.
type Engine struct {
	provider  Provider
	store     ledger.Store
	resolver  *Resolver
	threshold float64
	now       func() time.Time
}

func NewEngine(provider Provider, store ledger.Store, resolver *Resolver, threshold float64, now func() time.Time) *Engine {
	if resolver == nil {
		resolver = NewResolver(0, now)
	}
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		provider:  provider,
		store:     store,
		resolver:  resolver,
		threshold: threshold,
		now:       now,
	}
}

// RunCycle fetches reports from every connected channel, resolves conflicts
// and applies confident winners to the ledger. A failing channel is marked
// disconnected for the cycle and does not abort the others.
func (e *Engine) RunCycle(ctx context.Context, connections []domain.PosConnection, since time.Time) (CycleResult, error) {
	result := CycleResult{}

	var (
		mu      sync.Mutex
		reports []domain.PosReport
	)
	result.Channels = make([]ChannelStatus, len(connections))

	g, gctx := errgroup.WithContext(ctx)
	for i, conn := range connections {
		if !conn.Connected {
			result.Channels[i] = ChannelStatus{PosID: conn.ID, Connected: false}
			continue
		}

		g.Go(func() error {
			if ok, err := e.provider.Status(gctx, conn); err != nil || !ok {
				mu.Lock()
				defer mu.Unlock()
				status := ChannelStatus{PosID: conn.ID, Connected: false}
				if err != nil {
					status.Err = err.Error()
					log.Warn().Err(err).Str("pos_id", conn.ID).Msg("channel status check failed, dropping for this cycle")
				} else {
					log.Warn().Str("pos_id", conn.ID).Msg("channel unreachable, dropping for this cycle")
				}
				result.Channels[i] = status
				return nil
			}

			fetched, err := e.provider.FetchReports(gctx, conn, since)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("pos_id", conn.ID).Msg("channel fetch failed, dropping for this cycle")
				result.Channels[i] = ChannelStatus{PosID: conn.ID, Connected: false, Err: err.Error()}
				return nil
			}
			reports = append(reports, fetched...)
			result.Channels[i] = ChannelStatus{PosID: conn.ID, Connected: true, Reports: len(fetched)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	result.ReportCount = len(reports)

	groups := e.resolver.GroupConflicts(reports)
	for _, group := range groups {
		resolution := e.resolver.Resolve(group)

		if resolution.Confidence > e.threshold {
			if err := e.apply(ctx, &resolution); err != nil {
				log.Error().Err(err).
					Str("resolution_id", resolution.ID).
					Str("item_id", resolution.Winner.ItemID).
					Msg("applying resolution failed")
			} else {
				result.Applied++
			}
		} else {
			log.Info().
				Str("resolution_id", resolution.ID).
				Float64("confidence", resolution.Confidence).
				Str("type", string(resolution.ResolutionType)).
				Msg("resolution held for manual review")
		}

		for _, rejected := range resolution.Rejected {
			log.Debug().
				Str("pos_id", rejected.PosID).
				Str("transaction_id", rejected.TransactionID).
				Time("timestamp", rejected.Timestamp).
				Msg("rejected conflicting report")
		}

		result.Resolutions = append(result.Resolutions, resolution)
	}

	result.CompletedAt = e.now()
	return result, nil
}

func (e *Engine) apply(ctx context.Context, resolution *domain.ConflictResolution) error {
	reason := "Multi-POS sync resolution: " + resolution.Reasoning
	err := e.store.AdjustStock(ctx, resolution.Winner.ItemID, resolution.Winner.QuantityChange, reason)
	if err != nil {
		return fmt.Errorf("adjust stock for %s: %w", resolution.Winner.ItemID, err)
	}
	resolution.AppliedToLedger = true
	return nil
}

// CheckIntegrity compares the ledger's quantity for one item against every
// connected channel's reported level.
func (e *Engine) CheckIntegrity(ctx context.Context, itemID string, connections []domain.PosConnection) ([]Discrepancy, error) {
	item, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var discrepancies []Discrepancy
	for _, conn := range connections {
		if !conn.Connected {
			continue
		}

		levels, err := e.provider.FetchInventory(ctx, conn)
		if err != nil {
			log.Warn().Err(err).Str("pos_id", conn.ID).Msg("inventory fetch failed during integrity check")
			continue
		}

		for _, level := range levels {
			if level.ItemID != itemID {
				continue
			}
			if math.Abs(level.Quantity-item.CurrentStock) > 1e-9 {
				discrepancies = append(discrepancies, Discrepancy{
					PosID:  conn.ID,
					ItemID: itemID,
					Delta:  level.Quantity - item.CurrentStock,
				})
			}
		}
	}

	return discrepancies, nil
}
