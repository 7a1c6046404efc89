package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/prepflow/inventory-intel/internal/domain"
)

// countRepository persists physical count events and POS channel records.
type countRepository struct {
	db *DB
}

func NewCountRepository(db *DB) *countRepository {
	return &countRepository{db: db}
}

func (r *countRepository) SaveCounts(ctx context.Context, counts []domain.PhysicalCount) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO physical_counts (
				id, item_id, quantity, count_date, counted_by, method, notes
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id)
			DO UPDATE SET
				quantity = EXCLUDED.quantity,
				count_date = EXCLUDED.count_date,
				counted_by = EXCLUDED.counted_by,
				method = EXCLUDED.method,
				notes = EXCLUDED.notes
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, count := range counts {
			_, err := stmt.ExecContext(
				ctx,
				count.ID,
				count.ItemID,
				count.Quantity,
				count.CountDate,
				count.CountedBy,
				count.Method,
				count.Notes,
			)
			if err != nil {
				return fmt.Errorf("failed to insert physical count: %w", err)
			}
		}

		return nil
	})
}

// CountsInPeriod returns the most recent count per item within the period.
func (r *countRepository) CountsInPeriod(ctx context.Context, from, to time.Time) ([]domain.PhysicalCount, error) {
	query := `
		SELECT DISTINCT ON (item_id)
			id, item_id, quantity, count_date, counted_by, method, COALESCE(notes, '') AS notes
		FROM physical_counts
		WHERE count_date >= $1 AND count_date <= $2
		ORDER BY item_id, count_date DESC
	`

	var counts []domain.PhysicalCount
	if err := sqlx.SelectContext(ctx, r.db, &counts, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to get counts: %w", err)
	}

	return counts, nil
}

func (r *countRepository) ListConnections(ctx context.Context) ([]domain.PosConnection, error) {
	query := `
		SELECT id, name, connected, last_sync
		FROM pos_connections
		ORDER BY id
	`

	var connections []domain.PosConnection
	if err := sqlx.SelectContext(ctx, r.db, &connections, query); err != nil {
		return nil, fmt.Errorf("failed to list pos connections: %w", err)
	}

	return connections, nil
}

func (r *countRepository) MarkSynced(ctx context.Context, posID string, at time.Time, connected bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE pos_connections
		SET connected = $1, last_sync = $2
		WHERE id = $3
	`, connected, at, posID)
	if err != nil {
		return fmt.Errorf("failed to mark pos connection synced: %w", err)
	}
	return nil
}
