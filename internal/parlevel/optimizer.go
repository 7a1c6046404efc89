// Package parlevel derives reorder levels from demand forecasts: lead-time
// demand plus a confidence-and-volatility scaled safety stock.
package parlevel

import (
	"context"
	"math"

	"github.com/prepflow/inventory-intel/internal/domain"
)

// DefaultLeadTimeHours is assumed when an item has no supplier on record or
// the directory cannot answer.
const DefaultLeadTimeHours = 24.0

// SupplierDirectory resolves supplier lead times. A missing supplier is not
// an error; callers fall back to DefaultLeadTimeHours.
type SupplierDirectory interface {
	LeadTimeHours(ctx context.Context, supplierID string) (float64, error)
}

// StaticSupplierDirectory is a map-backed directory for tests and
// single-process deployments.
type StaticSupplierDirectory map[string]float64

func (d StaticSupplierDirectory) LeadTimeHours(ctx context.Context, supplierID string) (float64, error) {
	hours, ok := d[supplierID]
	if !ok {
		return 0, nil
	}
	return hours, nil
}

// SpoilageConstraint caps a recommended level for perishables. The base
// model passes the level through unchanged; real sensor or shelf-life input
// can be wired in here.
type SpoilageConstraint func(item domain.InventoryItem, level float64) float64

// Optimizer computes recommended par levels.
type Optimizer struct {
	suppliers  SupplierDirectory
	constraint SpoilageConstraint
}

func NewOptimizer(suppliers SupplierDirectory, constraint SpoilageConstraint) *Optimizer {
	if constraint == nil {
		constraint = func(_ domain.InventoryItem, level float64) float64 { return level }
	}
	return &Optimizer{suppliers: suppliers, constraint: constraint}
}

// Recommend returns the non-negative par level for an item given its
// forecast demand, the forecast confidence and the item's demand
// volatility (coefficient of variation of daily sales).
func (o *Optimizer) Recommend(ctx context.Context, item domain.InventoryItem, demand, confidence, volatility float64) float64 {
	safetyStock := demand * (1 - confidence) * (1 + volatility)
	leadTimeDemand := demand * (o.leadTimeHours(ctx, item.SupplierID) / 24)

	level := o.constraint(item, leadTimeDemand+safetyStock)
	return math.Max(0, level)
}

func (o *Optimizer) leadTimeHours(ctx context.Context, supplierID string) float64 {
	if o.suppliers == nil || supplierID == "" {
		return DefaultLeadTimeHours
	}

	hours, err := o.suppliers.LeadTimeHours(ctx, supplierID)
	if err != nil || hours <= 0 {
		return DefaultLeadTimeHours
	}
	return hours
}
