// Package possync reconciles stock-change reports arriving from multiple
// point-of-sale channels, resolving conflicting reports before they reach
// the ledger.
package possync

import (
	"context"
	"time"

	"github.com/prepflow/inventory-intel/internal/domain"
)

// InventoryLevel is one channel's view of an item's on-hand quantity.
type InventoryLevel struct {
	ItemID    string    `json:"item_id"`
	Quantity  float64   `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// Provider is the transport-facing port for one POS integration. Each
// channel (Square, Toast, a webhook relay) gets its own implementation.
type Provider interface {
	// FetchReports returns the channel's stock-change reports since the
	// given time, in no particular order.
	FetchReports(ctx context.Context, conn domain.PosConnection, since time.Time) ([]domain.PosReport, error)

	// FetchInventory returns the channel's current on-hand levels, used
	// for integrity checks against the ledger.
	FetchInventory(ctx context.Context, conn domain.PosConnection) ([]InventoryLevel, error)

	// Status reports whether the channel is currently reachable.
	Status(ctx context.Context, conn domain.PosConnection) (bool, error)
}
