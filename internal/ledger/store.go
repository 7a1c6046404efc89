// Package ledger defines the read/write contract over the append-only
// per-item transaction history and current stock snapshot. Every stock
// mutation goes through AdjustStock or Record so the ledger stays the
// single source of truth for theoretical quantity.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/prepflow/inventory-intel/internal/domain"
)

// ErrItemNotFound is returned when an item id is not known to the store.
// Callers passing explicit item ids must surface this loudly.
var ErrItemNotFound = errors.New("ledger: item not found")

// Store is the collaborator contract for the persistent ledger.
type Store interface {
	// GetItem returns the current snapshot of one item.
	GetItem(ctx context.Context, itemID string) (domain.InventoryItem, error)

	// ListItems returns a snapshot of all known items.
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)

	// GetHistory returns the item's ledger entries within [from, to] in
	// chronological order. A zero from or to leaves that bound open.
	GetHistory(ctx context.Context, itemID string, from, to time.Time) ([]domain.LedgerEntry, error)

	// AdjustStock applies a signed delta to the item's stock and appends
	// an adjustment entry carrying the reason. Stock is clamped at 0.
	AdjustStock(ctx context.Context, itemID string, delta float64, reason string) error

	// Record appends a transaction (purchase, sale, adjustment, waste) and
	// applies its effect to the item's stock, clamped at 0.
	Record(ctx context.Context, entry domain.LedgerEntry) error

	// StockAt replays the ledger to derive the item's stock level at the
	// given instant. Result is never negative.
	StockAt(ctx context.Context, itemID string, at time.Time) (float64, error)
}

// EntryEffect is the signed stock effect of one ledger entry: purchases and
// adjustments apply their signed delta, sales and waste always draw down.
func EntryEffect(e domain.LedgerEntry) float64 {
	switch e.Kind {
	case domain.EntrySale, domain.EntryWaste:
		if e.Quantity < 0 {
			return e.Quantity
		}
		return -e.Quantity
	default:
		return e.Quantity
	}
}
