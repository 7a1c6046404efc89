package possync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/prepflow/inventory-intel/internal/ledger"
)

// stubProvider serves canned reports per channel and fails on demand.
// failing errors every call; offline reports an unreachable channel from a
// healthy transport; fetchFailing passes the status check but fails fetches.
type stubProvider struct {
	reports      map[string][]domain.PosReport
	inventory    map[string][]InventoryLevel
	failing      map[string]bool
	offline      map[string]bool
	fetchFailing map[string]bool
}

func (p *stubProvider) FetchReports(ctx context.Context, conn domain.PosConnection, since time.Time) ([]domain.PosReport, error) {
	if p.failing[conn.ID] || p.fetchFailing[conn.ID] {
		return nil, errors.New("connection reset")
	}
	return p.reports[conn.ID], nil
}

func (p *stubProvider) FetchInventory(ctx context.Context, conn domain.PosConnection) ([]InventoryLevel, error) {
	if p.failing[conn.ID] || p.fetchFailing[conn.ID] {
		return nil, errors.New("connection reset")
	}
	return p.inventory[conn.ID], nil
}

func (p *stubProvider) Status(ctx context.Context, conn domain.PosConnection) (bool, error) {
	if p.failing[conn.ID] {
		return false, errors.New("connection reset")
	}
	return !p.offline[conn.ID], nil
}

func syncItem() domain.InventoryItem {
	return domain.InventoryItem{
		ID:           "item-1",
		Name:         "Tomatoes",
		Category:     domain.CategoryVegetables,
		Unit:         "kg",
		CurrentStock: 50,
		CostPerUnit:  1.5,
		ParLevel:     40,
	}
}

func connection(id string) domain.PosConnection {
	return domain.PosConnection{ID: id, Name: id, Connected: true}
}

func TestRunCycleAppliesConfidentResolutions(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	store.PutItem(syncItem())

	provider := &stubProvider{
		reports: map[string][]domain.PosReport{
			"square": {report("square", "tx-1", 20, -2, 3)},
			"toast":  {report("toast", "tx-2", 10, -3, 9)},
		},
	}

	engine := NewEngine(provider, store, NewResolver(0, fixedClock), 0, fixedClock)

	result, err := engine.RunCycle(ctx, []domain.PosConnection{connection("square"), connection("toast")}, testNow.Add(-time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, result.ReportCount)
	require.Len(t, result.Resolutions, 1)
	assert.Equal(t, 1, result.Applied)

	resolution := result.Resolutions[0]
	assert.True(t, resolution.AppliedToLedger)
	assert.Equal(t, "tx-2", resolution.Winner.TransactionID)

	// Winner's delta (-3) reached the ledger as an annotated adjustment.
	item, err := store.GetItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 47.0, item.CurrentStock)

	history, err := store.GetHistory(ctx, "item-1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Reason, "Multi-POS sync resolution")
}

func TestRunCycleHoldsLowConfidence(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	store.PutItem(syncItem())

	// Stale low-priority conflict: manual resolution at confidence 0.5.
	staleNow := func() time.Time { return testNow.Add(10 * time.Minute) }
	provider := &stubProvider{
		reports: map[string][]domain.PosReport{
			"square": {report("square", "tx-1", 20, -2, 3)},
			"toast":  {report("toast", "tx-2", 10, -3, 3)},
		},
	}

	engine := NewEngine(provider, store, NewResolver(0, staleNow), 0, staleNow)

	result, err := engine.RunCycle(ctx, []domain.PosConnection{connection("square"), connection("toast")}, testNow.Add(-time.Hour))
	require.NoError(t, err)

	require.Len(t, result.Resolutions, 1)
	assert.Equal(t, 0, result.Applied)
	assert.False(t, result.Resolutions[0].AppliedToLedger)

	item, err := store.GetItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, item.CurrentStock)
}

func TestRunCycleSurvivesChannelFailure(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	store.PutItem(syncItem())

	provider := &stubProvider{
		reports: map[string][]domain.PosReport{
			"square": {report("square", "tx-1", 5, -2, 3)},
		},
		failing: map[string]bool{"toast": true},
	}

	engine := NewEngine(provider, store, NewResolver(0, fixedClock), 0, fixedClock)

	result, err := engine.RunCycle(ctx, []domain.PosConnection{connection("square"), connection("toast")}, testNow.Add(-time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, result.ReportCount)

	statuses := map[string]ChannelStatus{}
	for _, ch := range result.Channels {
		statuses[ch.PosID] = ch
	}
	assert.True(t, statuses["square"].Connected)
	assert.False(t, statuses["toast"].Connected)
	assert.NotEmpty(t, statuses["toast"].Err)

	// The singleton report from the healthy channel still applied.
	assert.Equal(t, 1, result.Applied)
}

func TestRunCycleSkipsUnreachableChannels(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	store.PutItem(syncItem())

	// The status check reports toast unreachable; its reports are never
	// fetched even though the transport would serve them.
	provider := &stubProvider{
		reports: map[string][]domain.PosReport{
			"square": {report("square", "tx-1", 5, -2, 3)},
			"toast":  {report("toast", "tx-2", 5, -3, 3)},
		},
		offline: map[string]bool{"toast": true},
	}

	engine := NewEngine(provider, store, NewResolver(0, fixedClock), 0, fixedClock)

	result, err := engine.RunCycle(ctx, []domain.PosConnection{connection("square"), connection("toast")}, testNow.Add(-time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, result.ReportCount)

	statuses := map[string]ChannelStatus{}
	for _, ch := range result.Channels {
		statuses[ch.PosID] = ch
	}
	assert.True(t, statuses["square"].Connected)
	assert.False(t, statuses["toast"].Connected)
	assert.Empty(t, statuses["toast"].Err, "unreachable is not an error")
}

func TestRunCycleDropsChannelOnFetchFailure(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	store.PutItem(syncItem())

	provider := &stubProvider{
		reports: map[string][]domain.PosReport{
			"square": {report("square", "tx-1", 5, -2, 3)},
		},
		fetchFailing: map[string]bool{"toast": true},
	}

	engine := NewEngine(provider, store, NewResolver(0, fixedClock), 0, fixedClock)

	result, err := engine.RunCycle(ctx, []domain.PosConnection{connection("square"), connection("toast")}, testNow.Add(-time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, result.ReportCount)

	statuses := map[string]ChannelStatus{}
	for _, ch := range result.Channels {
		statuses[ch.PosID] = ch
	}
	assert.False(t, statuses["toast"].Connected)
	assert.NotEmpty(t, statuses["toast"].Err)
	assert.Equal(t, 1, result.Applied)
}

func TestRunCycleSkipsDisconnectedChannels(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	store.PutItem(syncItem())

	provider := &stubProvider{
		reports: map[string][]domain.PosReport{
			"square": {report("square", "tx-1", 5, -2, 3)},
		},
	}

	offline := connection("square")
	offline.Connected = false

	engine := NewEngine(provider, store, NewResolver(0, fixedClock), 0, fixedClock)
	result, err := engine.RunCycle(ctx, []domain.PosConnection{offline}, testNow.Add(-time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 0, result.ReportCount)
	assert.Empty(t, result.Resolutions)
}

func TestCheckIntegrity(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	store.PutItem(syncItem())

	provider := &stubProvider{
		inventory: map[string][]InventoryLevel{
			"square": {{ItemID: "item-1", Quantity: 50, Timestamp: testNow}},
			"toast":  {{ItemID: "item-1", Quantity: 44, Timestamp: testNow}},
		},
	}

	engine := NewEngine(provider, store, NewResolver(0, fixedClock), 0, fixedClock)

	discrepancies, err := engine.CheckIntegrity(ctx, "item-1", []domain.PosConnection{connection("square"), connection("toast")})
	require.NoError(t, err)

	require.Len(t, discrepancies, 1)
	assert.Equal(t, "toast", discrepancies[0].PosID)
	assert.InDelta(t, -6.0, discrepancies[0].Delta, 1e-9)
}

func TestCheckIntegrityUnknownItem(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	engine := NewEngine(&stubProvider{}, store, NewResolver(0, fixedClock), 0, fixedClock)

	_, err := engine.CheckIntegrity(ctx, "missing", nil)
	assert.ErrorIs(t, err, ledger.ErrItemNotFound)
}
