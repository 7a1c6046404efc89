package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prepflow/inventory-intel/internal/domain"
)

// MemoryStore is an in-memory Store used by tests and as the default store
// when no database is configured. Reads operate on copies so analytic
// computations see a consistent snapshot without blocking writers.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[string]domain.InventoryItem
	opening map[string]float64 // stock at item creation, before any entries
	entries map[string][]domain.LedgerEntry
	nextID  int64
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:   make(map[string]domain.InventoryItem),
		opening: make(map[string]float64),
		entries: make(map[string][]domain.LedgerEntry),
		nextID:  1,
		now:     time.Now,
	}
}

// SetClock overrides the store's notion of now. Test hook.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// PutItem registers or replaces an item snapshot. The stock it carries
// becomes the opening balance for ledger replay.
func (s *MemoryStore) PutItem(item domain.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	if _, ok := s.opening[item.ID]; !ok {
		s.opening[item.ID] = item.CurrentStock
	}
}

func (s *MemoryStore) GetItem(ctx context.Context, itemID string) (domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return domain.InventoryItem{}, ErrItemNotFound
	}
	return item, nil
}

func (s *MemoryStore) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.InventoryItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *MemoryStore) GetHistory(ctx context.Context, itemID string, from, to time.Time) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.items[itemID]; !ok {
		return nil, ErrItemNotFound
	}

	var out []domain.LedgerEntry
	for _, e := range s.entries[itemID] {
		if !from.IsZero() && e.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && e.Timestamp.After(to) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryStore) AdjustStock(ctx context.Context, itemID string, delta float64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendLocked(domain.LedgerEntry{
		ItemID:    itemID,
		Quantity:  delta,
		Kind:      domain.EntryAdjustment,
		Timestamp: s.now(),
		Reason:    reason,
	})
}

func (s *MemoryStore) Record(ctx context.Context, entry domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	return s.appendLocked(entry)
}

func (s *MemoryStore) StockAt(ctx context.Context, itemID string, at time.Time) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.items[itemID]; !ok {
		return 0, ErrItemNotFound
	}

	stock := s.opening[itemID]
	entries := append([]domain.LedgerEntry(nil), s.entries[itemID]...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.Before(entries[j].Timestamp) })
	for _, e := range entries {
		if !at.IsZero() && e.Timestamp.After(at) {
			break
		}
		stock += EntryEffect(e)
		if stock < 0 {
			stock = 0
		}
	}
	return stock, nil
}

// appendLocked assumes s.mu is held for writing.
func (s *MemoryStore) appendLocked(entry domain.LedgerEntry) error {
	item, ok := s.items[entry.ItemID]
	if !ok {
		return ErrItemNotFound
	}

	entry.ID = s.nextID
	s.nextID++
	s.entries[entry.ItemID] = append(s.entries[entry.ItemID], entry)

	item.CurrentStock += EntryEffect(entry)
	if item.CurrentStock < 0 {
		item.CurrentStock = 0
	}
	item.LastUpdated = entry.Timestamp
	s.items[entry.ItemID] = item
	return nil
}
