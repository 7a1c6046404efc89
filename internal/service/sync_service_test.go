package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/prepflow/inventory-intel/internal/ledger"
	"github.com/prepflow/inventory-intel/internal/possync"
)

var syncTestNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixedProvider struct {
	reports map[string][]domain.PosReport
}

func (p *fixedProvider) FetchReports(ctx context.Context, conn domain.PosConnection, since time.Time) ([]domain.PosReport, error) {
	return p.reports[conn.ID], nil
}

func (p *fixedProvider) FetchInventory(ctx context.Context, conn domain.PosConnection) ([]possync.InventoryLevel, error) {
	return nil, nil
}

func (p *fixedProvider) Status(ctx context.Context, conn domain.PosConnection) (bool, error) {
	return true, nil
}

func newSyncFixture(t *testing.T) (*SyncService, *ledger.MemoryStore) {
	t.Helper()

	store := ledger.NewMemoryStore()
	store.PutItem(domain.InventoryItem{
		ID:           "tomato",
		Name:         "Tomato",
		Category:     domain.CategoryVegetables,
		CurrentStock: 50,
		CostPerUnit:  2,
		ParLevel:     60,
	})

	clock := func() time.Time { return syncTestNow }
	provider := &fixedProvider{reports: map[string][]domain.PosReport{
		"pos-main": {{
			PosID:          "pos-main",
			TransactionID:  "tx-1",
			ItemID:         "tomato",
			Timestamp:      syncTestNow.Add(-10 * time.Second),
			QuantityChange: -3,
			Kind:           domain.EntrySale,
			Priority:       5,
			SequenceNumber: 1,
		}},
	}}

	resolver := possync.NewResolver(0, clock)
	engine := possync.NewEngine(provider, store, resolver, 0, clock)
	connections := StaticConnectionSource{
		{ID: "pos-main", Name: "Main Counter", Connected: true},
	}

	return NewSyncService(engine, connections, time.Minute, clock), store
}

func TestRunOnceAppliesAndRecordsResolutions(t *testing.T) {
	svc, store := newSyncFixture(t)

	result, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Resolutions, 1)
	assert.Equal(t, 1, result.Applied)

	item, err := store.GetItem(context.Background(), "tomato")
	require.NoError(t, err)
	assert.InDelta(t, 47.0, item.CurrentStock, 1e-9)

	trail := svc.Resolutions()
	require.Len(t, trail, 1)
	assert.True(t, trail[0].AppliedToLedger)
}

func TestResolutionTrailIsBounded(t *testing.T) {
	svc, _ := newSyncFixture(t)

	batch := make([]domain.ConflictResolution, 50)
	for i := 0; i < 5; i++ {
		svc.recordResolutions(batch)
	}

	assert.Len(t, svc.Resolutions(), resolutionHistoryLimit)
}

func TestResolutionsReturnsCopy(t *testing.T) {
	svc, _ := newSyncFixture(t)
	svc.recordResolutions([]domain.ConflictResolution{{ID: "resolution_a"}})

	trail := svc.Resolutions()
	trail[0].ID = "mutated"

	assert.Equal(t, "resolution_a", svc.Resolutions()[0].ID)
}
