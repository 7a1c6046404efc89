package possync

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/prepflow/inventory-intel/internal/ledger"
)

// SimulatedProvider fabricates plausible sale reports from the current
// inventory. It stands in for real POS integrations in development and
// demos; each channel gets its own sequence counter.
type SimulatedProvider struct {
	store ledger.Store

	mu        sync.Mutex
	rng       *rand.Rand
	sequences map[string]int64
}

func NewSimulatedProvider(store ledger.Store, seed int64) *SimulatedProvider {
	return &SimulatedProvider{
		store:     store,
		rng:       rand.New(rand.NewSource(seed)),
		sequences: make(map[string]int64),
	}
}

func (p *SimulatedProvider) FetchReports(ctx context.Context, conn domain.PosConnection, since time.Time) ([]domain.PosReport, error) {
	items, err := p.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	count := p.rng.Intn(4) // 0-3 reports per channel per cycle
	reports := make([]domain.PosReport, 0, count)
	now := time.Now()
	window := now.Sub(since)
	if window <= 0 {
		window = time.Minute
	}

	for i := 0; i < count; i++ {
		item := items[p.rng.Intn(len(items))]
		p.sequences[conn.ID]++
		seq := p.sequences[conn.ID]

		reports = append(reports, domain.PosReport{
			PosID:          conn.ID,
			TransactionID:  fmt.Sprintf("%s-%d-%d", conn.ID, now.UnixNano(), seq),
			ItemID:         item.ID,
			Timestamp:      since.Add(time.Duration(p.rng.Int63n(int64(window)))),
			QuantityChange: -float64(1 + p.rng.Intn(3)),
			Kind:           domain.EntrySale,
			Priority:       1 + p.rng.Intn(10),
			SequenceNumber: seq,
		})
	}

	return reports, nil
}

func (p *SimulatedProvider) FetchInventory(ctx context.Context, conn domain.PosConnection) ([]InventoryLevel, error) {
	items, err := p.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	levels := make([]InventoryLevel, 0, len(items))
	for _, item := range items {
		levels = append(levels, InventoryLevel{
			ItemID:    item.ID,
			Quantity:  item.CurrentStock,
			Timestamp: now,
		})
	}
	return levels, nil
}

func (p *SimulatedProvider) Status(ctx context.Context, conn domain.PosConnection) (bool, error) {
	return true, nil
}
