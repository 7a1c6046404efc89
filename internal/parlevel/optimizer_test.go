package parlevel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prepflow/inventory-intel/internal/domain"
)

type failingDirectory struct{}

func (failingDirectory) LeadTimeHours(ctx context.Context, supplierID string) (float64, error) {
	return 0, errors.New("directory unavailable")
}

func TestRecommendDefaultLeadTime(t *testing.T) {
	ctx := context.Background()
	optimizer := NewOptimizer(nil, nil)
	item := domain.InventoryItem{ID: "item-1"}

	// 24h lead time = one day of demand; safety = 10*(1-0.8)*(1+0.5) = 3.
	level := optimizer.Recommend(ctx, item, 10, 0.8, 0.5)
	assert.InDelta(t, 13.0, level, 1e-9)
}

func TestRecommendSupplierLeadTime(t *testing.T) {
	ctx := context.Background()
	directory := StaticSupplierDirectory{"sup-1": 48}
	optimizer := NewOptimizer(directory, nil)
	item := domain.InventoryItem{ID: "item-1", SupplierID: "sup-1"}

	// 48h lead time doubles the lead-time demand: 20 + 3 = 23.
	level := optimizer.Recommend(ctx, item, 10, 0.8, 0.5)
	assert.InDelta(t, 23.0, level, 1e-9)
}

func TestRecommendUnknownSupplierFallsBack(t *testing.T) {
	ctx := context.Background()
	directory := StaticSupplierDirectory{}
	optimizer := NewOptimizer(directory, nil)
	item := domain.InventoryItem{ID: "item-1", SupplierID: "missing"}

	level := optimizer.Recommend(ctx, item, 10, 0.8, 0.5)
	assert.InDelta(t, 13.0, level, 1e-9)
}

func TestRecommendDirectoryErrorFallsBack(t *testing.T) {
	ctx := context.Background()
	optimizer := NewOptimizer(failingDirectory{}, nil)
	item := domain.InventoryItem{ID: "item-1", SupplierID: "sup-1"}

	level := optimizer.Recommend(ctx, item, 10, 0.8, 0.5)
	assert.InDelta(t, 13.0, level, 1e-9)
}

func TestRecommendSafetyStockScaling(t *testing.T) {
	ctx := context.Background()
	optimizer := NewOptimizer(nil, nil)
	item := domain.InventoryItem{ID: "item-1"}

	// Full confidence removes the safety stock entirely.
	confident := optimizer.Recommend(ctx, item, 10, 1.0, 2.0)
	assert.InDelta(t, 10.0, confident, 1e-9)

	// Lower confidence and higher volatility both grow the buffer.
	shaky := optimizer.Recommend(ctx, item, 10, 0.5, 1.0)
	assert.InDelta(t, 20.0, shaky, 1e-9)
	assert.Greater(t, shaky, confident)
}

func TestRecommendSpoilageConstraint(t *testing.T) {
	ctx := context.Background()
	capAtFive := func(_ domain.InventoryItem, level float64) float64 {
		if level > 5 {
			return 5
		}
		return level
	}
	optimizer := NewOptimizer(nil, capAtFive)
	item := domain.InventoryItem{ID: "item-1"}

	level := optimizer.Recommend(ctx, item, 10, 0.8, 0.5)
	assert.Equal(t, 5.0, level)
}

func TestRecommendNeverNegative(t *testing.T) {
	ctx := context.Background()
	negating := func(_ domain.InventoryItem, level float64) float64 { return -level }
	optimizer := NewOptimizer(nil, negating)
	item := domain.InventoryItem{ID: "item-1"}

	level := optimizer.Recommend(ctx, item, 10, 0.8, 0.5)
	assert.Equal(t, 0.0, level)
}
