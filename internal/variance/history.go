package variance

import (
	"math"
	"sync"

	"github.com/prepflow/inventory-intel/internal/domain"
)

// HistoryRecorder is a History that also accepts new observations once a
// report is finalized.
type HistoryRecorder interface {
	History
	Observe(itemID string, percent float64)
}

// MemoryHistory keeps a rolling record of past variance percentages per
// item. Safe for concurrent use.
type MemoryHistory struct {
	mu   sync.RWMutex
	past map[string][]float64
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{past: make(map[string][]float64)}
}

// Observe records a finalized variance percentage for future trend
// comparisons. Call it after a report is published, not during analysis.
func (h *MemoryHistory) Observe(itemID string, percent float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.past[itemID] = append(h.past[itemID], percent)
}

// HistoricalVariance is the mean absolute variance percentage seen so far,
// 0 for items with no history.
func (h *MemoryHistory) HistoricalVariance(itemID string) float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	past := h.past[itemID]
	if len(past) == 0 {
		return 0
	}

	var sum float64
	for _, p := range past {
		sum += math.Abs(p)
	}
	return sum / float64(len(past))
}

// Trend compares the current absolute variance against the historical mean.
// A 10% band around the mean reads as stable.
func (h *MemoryHistory) Trend(itemID string, currentPercent float64) domain.Trend {
	historical := h.HistoricalVariance(itemID)
	if historical == 0 {
		return domain.TrendStable
	}

	current := math.Abs(currentPercent)
	switch {
	case current > historical*1.1:
		return domain.TrendWorsening
	case current < historical*0.9:
		return domain.TrendImproving
	default:
		return domain.TrendStable
	}
}
