package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/prepflow/inventory-intel/internal/parlevel"
)

// supplierRepository answers lead-time lookups for the par-level optimizer.
// A supplier missing from the table is not an error; the optimizer falls
// back to its default lead time.
type supplierRepository struct {
	db *DB
}

func NewSupplierRepository(db *DB) parlevel.SupplierDirectory {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) LeadTimeHours(ctx context.Context, supplierID string) (float64, error) {
	query := `
		SELECT lead_time_hours
		FROM suppliers
		WHERE id = $1
	`

	var hours float64
	err := sqlx.GetContext(ctx, r.db, &hours, query, supplierID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get supplier lead time: %w", err)
	}

	return hours, nil
}
