package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/prepflow/inventory-intel/internal/ledger"
)

// ledgerRepository is the Postgres-backed ledger.Store. Stock mutations run
// in a transaction so the entry append and the snapshot update stay atomic.
type ledgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) ledger.Store {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetItem(ctx context.Context, itemID string) (domain.InventoryItem, error) {
	query := `
		SELECT id, name, category, unit, current_stock, cost_per_unit,
		       par_level, COALESCE(supplier_id, '') AS supplier_id, last_updated
		FROM inventory_items
		WHERE id = $1
	`

	var item domain.InventoryItem
	err := sqlx.GetContext(ctx, r.db, &item, query, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InventoryItem{}, ledger.ErrItemNotFound
	}
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

func (r *ledgerRepository) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	query := `
		SELECT id, name, category, unit, current_stock, cost_per_unit,
		       par_level, COALESCE(supplier_id, '') AS supplier_id, last_updated
		FROM inventory_items
		ORDER BY id
	`

	var items []domain.InventoryItem
	if err := sqlx.SelectContext(ctx, r.db, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	return items, nil
}

func (r *ledgerRepository) GetHistory(ctx context.Context, itemID string, from, to time.Time) ([]domain.LedgerEntry, error) {
	if _, err := r.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, item_id, quantity, kind, timestamp, COALESCE(reason, '') AS reason
		FROM ledger_entries
		WHERE item_id = $1
		  AND ($2::timestamptz IS NULL OR timestamp >= $2)
		  AND ($3::timestamptz IS NULL OR timestamp <= $3)
		ORDER BY timestamp, id
	`

	var entries []domain.LedgerEntry
	err := sqlx.SelectContext(ctx, r.db, &entries, query, itemID, nullableTime(from), nullableTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return entries, nil
}

func (r *ledgerRepository) AdjustStock(ctx context.Context, itemID string, delta float64, reason string) error {
	return r.Record(ctx, domain.LedgerEntry{
		ItemID:   itemID,
		Quantity: delta,
		Kind:     domain.EntryAdjustment,
		Reason:   reason,
	})
}

func (r *ledgerRepository) Record(ctx context.Context, entry domain.LedgerEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	effect := ledger.EntryEffect(entry)

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET current_stock = GREATEST(0, current_stock + $1),
			    last_updated = $2
			WHERE id = $3
		`, effect, entry.Timestamp, entry.ItemID)
		if err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}
		if affected == 0 {
			return ledger.ErrItemNotFound
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO ledger_entries (item_id, quantity, kind, timestamp, reason)
			VALUES ($1, $2, $3, $4, $5)
		`, entry.ItemID, entry.Quantity, entry.Kind, entry.Timestamp, entry.Reason)
		if err != nil {
			return fmt.Errorf("failed to insert ledger entry: %w", err)
		}

		return nil
	})
}

func (r *ledgerRepository) StockAt(ctx context.Context, itemID string, at time.Time) (float64, error) {
	query := `
		SELECT COALESCE(opening_stock, 0)
		FROM inventory_items
		WHERE id = $1
	`

	var opening float64
	err := sqlx.GetContext(ctx, r.db, &opening, query, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ledger.ErrItemNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get opening stock: %w", err)
	}

	entries, err := r.GetHistory(ctx, itemID, time.Time{}, at)
	if err != nil {
		return 0, err
	}

	// Replay in order, clamping at zero, same as the in-memory store.
	stock := opening
	for _, e := range entries {
		stock += ledger.EntryEffect(e)
		if stock < 0 {
			stock = 0
		}
	}
	return stock, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
