package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/prepflow/inventory-intel/internal/ledger"
	"github.com/prepflow/inventory-intel/internal/variance"
)

var varianceTestNow = time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

// memoryCountSource records saved counts and serves stored ones.
type memoryCountSource struct {
	saved  []domain.PhysicalCount
	stored []domain.PhysicalCount
}

func (m *memoryCountSource) SaveCounts(ctx context.Context, counts []domain.PhysicalCount) error {
	m.saved = append(m.saved, counts...)
	return nil
}

func (m *memoryCountSource) CountsInPeriod(ctx context.Context, from, to time.Time) ([]domain.PhysicalCount, error) {
	return m.stored, nil
}

func newVarianceFixture(t *testing.T, counts CountSource) (*VarianceService, domain.ReportPeriod) {
	t.Helper()

	clock := func() time.Time { return varianceTestNow }
	store := ledger.NewMemoryStore()
	store.SetClock(clock)
	store.PutItem(domain.InventoryItem{
		ID:           "flour",
		Name:         "Flour",
		Category:     domain.CategoryGrains,
		CurrentStock: 100,
		CostPerUnit:  1,
		ParLevel:     120,
	})

	detector := variance.NewDetector(nil, clock)
	svc := NewVarianceService(store, detector, nil, nil, counts, clock)
	period := domain.ReportPeriod{
		Start: varianceTestNow.Add(-7 * 24 * time.Hour),
		End:   varianceTestNow,
	}
	return svc, period
}

func physicalCount(quantity float64) domain.PhysicalCount {
	return domain.PhysicalCount{
		ID:        "count-1",
		ItemID:    "flour",
		Quantity:  quantity,
		CountDate: varianceTestNow,
		CountedBy: "morning shift",
		Method:    domain.CountPhysical,
	}
}

func TestBuildReportPersistsInlineCounts(t *testing.T) {
	source := &memoryCountSource{}
	svc, period := newVarianceFixture(t, source)

	report, err := svc.BuildReport(context.Background(), period, []domain.PhysicalCount{physicalCount(90)})
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalItems)
	require.Len(t, source.saved, 1)
	assert.Equal(t, "flour", source.saved[0].ItemID)
}

func TestBuildReportFallsBackToStoredCounts(t *testing.T) {
	source := &memoryCountSource{stored: []domain.PhysicalCount{physicalCount(90)}}
	svc, period := newVarianceFixture(t, source)

	report, err := svc.BuildReport(context.Background(), period, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalItems)
	assert.Empty(t, source.saved, "stored counts are not re-persisted")
}

func TestBuildReportNoCountsAnywhere(t *testing.T) {
	svc, period := newVarianceFixture(t, nil)

	_, err := svc.BuildReport(context.Background(), period, nil)
	assert.ErrorIs(t, err, ErrNoCounts)
}
