package variance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepflow/inventory-intel/internal/domain"
)

var testNow = time.Date(2026, 8, 15, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func proteinItem() domain.InventoryItem {
	return domain.InventoryItem{
		ID:          "item-1",
		Name:        "Ribeye",
		Category:    domain.CategoryProtein,
		Unit:        "kg",
		CostPerUnit: 2,
	}
}

func countOf(qty float64) domain.PhysicalCount {
	return domain.PhysicalCount{
		ID:        "count-1",
		ItemID:    "item-1",
		Quantity:  qty,
		CountDate: testNow,
		Method:    domain.CountPhysical,
	}
}

func TestTheoreticalQuantityReplay(t *testing.T) {
	entries := []domain.LedgerEntry{
		{Kind: domain.EntryPurchase, Quantity: 50},
		{Kind: domain.EntrySale, Quantity: 30},
		{Kind: domain.EntryAdjustment, Quantity: -5},
		{Kind: domain.EntryWaste, Quantity: 3},
	}
	assert.Equal(t, 32.0, TheoreticalQuantity(20, entries))
}

func TestTheoreticalQuantityClampsAtZero(t *testing.T) {
	entries := []domain.LedgerEntry{
		{Kind: domain.EntrySale, Quantity: 500},
	}
	assert.Equal(t, 0.0, TheoreticalQuantity(20, entries))
}

func TestAnalyzeShortageScenario(t *testing.T) {
	detector := NewDetector(nil, fixedClock)

	// Theoretical 100 via opening balance, counted 80 at $2/unit.
	record := detector.Analyze(proteinItem(), countOf(80), nil, 100)

	assert.Equal(t, 100.0, record.TheoreticalQuantity)
	assert.Equal(t, 80.0, record.ActualQuantity)
	assert.Equal(t, -20.0, record.QuantityVariance)
	assert.InDelta(t, -20.0, record.QuantityVariancePercent, 1e-9)
	assert.InDelta(t, -40.0, record.ValueVariance, 1e-9)
	assert.Equal(t, domain.VarianceShortage, record.VarianceType)
	assert.Equal(t, domain.SeverityCritical, record.Severity)
	assert.Contains(t, record.PossibleCauses, "Potential theft or unauthorized usage")
	assert.Contains(t, record.PossibleCauses, "Portion control issues with high-value protein")

	scores := ScoreLossPatterns(record)
	assert.GreaterOrEqual(t, scores.Theft, 0.7)
	assert.True(t, scores.SuspectedTheft())
	assert.True(t, scores.PortionIssue())
	// Perishable shortage alone sits exactly on the spoilage threshold.
	assert.InDelta(t, 0.5, scores.Spoilage, 1e-9)
	assert.False(t, scores.SpoilageRelated())
}

func TestAnalyzeWithinTolerance(t *testing.T) {
	detector := NewDetector(nil, fixedClock)

	record := detector.Analyze(proteinItem(), countOf(99), nil, 100)

	assert.Equal(t, domain.VarianceWithinTolerance, record.VarianceType)
	assert.Equal(t, domain.SeverityLow, record.Severity)
	assert.Empty(t, record.PossibleCauses)
}

func TestAnalyzeZeroTheoretical(t *testing.T) {
	detector := NewDetector(nil, fixedClock)

	record := detector.Analyze(proteinItem(), countOf(5), nil, 0)

	assert.Equal(t, 0.0, record.TheoreticalQuantity)
	assert.Equal(t, 0.0, record.QuantityVariancePercent)
	assert.Equal(t, domain.VarianceWithinTolerance, record.VarianceType)
}

func TestAnalyzeNegativeCountClamped(t *testing.T) {
	detector := NewDetector(nil, fixedClock)

	record := detector.Analyze(proteinItem(), countOf(-4), nil, 10)

	assert.Equal(t, 0.0, record.ActualQuantity)
	assert.Equal(t, domain.VarianceShortage, record.VarianceType)
}

func TestAnalyzeOverageCauses(t *testing.T) {
	detector := NewDetector(nil, fixedClock)
	item := proteinItem()
	item.Category = domain.CategoryGrains

	record := detector.Analyze(item, countOf(120), nil, 100)

	assert.Equal(t, domain.VarianceOverage, record.VarianceType)
	assert.Contains(t, record.PossibleCauses, "Under-portioning in recipes")
	assert.Contains(t, record.PossibleCauses, "Counting errors")
}

func TestAnalyzeSpoilageCause(t *testing.T) {
	detector := NewDetector(nil, fixedClock)

	entries := []domain.LedgerEntry{
		{Kind: domain.EntryWaste, Quantity: 2, Timestamp: testNow.Add(-time.Hour)},
	}
	record := detector.Analyze(proteinItem(), countOf(90), entries, 100)

	// Replay: 100 - 2 = 98 theoretical, counted 90 is a shortage with a
	// waste entry on record.
	assert.Equal(t, domain.VarianceShortage, record.VarianceType)
	assert.Contains(t, record.PossibleCauses, "Spoilage or quality control issues")
}

func TestSeverityBands(t *testing.T) {
	assert.Equal(t, domain.SeverityLow, severityFor(3, 50))
	assert.Equal(t, domain.SeverityMedium, severityFor(6, 50))
	assert.Equal(t, domain.SeverityMedium, severityFor(3, 150))
	assert.Equal(t, domain.SeverityHigh, severityFor(12, 50))
	assert.Equal(t, domain.SeverityHigh, severityFor(3, 600))
	assert.Equal(t, domain.SeverityCritical, severityFor(25, 50))
	assert.Equal(t, domain.SeverityCritical, severityFor(3, 1500))
	assert.Equal(t, domain.SeverityCritical, severityFor(-25, -50))
}

func TestSeverityMonotonicInPercent(t *testing.T) {
	detector := NewDetector(nil, fixedClock)

	previous := domain.SeverityLow
	for _, counted := range []float64{99, 94, 88, 75} {
		record := detector.Analyze(proteinItem(), countOf(counted), nil, 100)
		assert.True(t, record.Severity.AtLeast(previous),
			"severity must not decrease as variance grows (counted %v)", counted)
		previous = record.Severity
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	history := NewMemoryHistory()
	history.Observe("item-1", -5)
	detector := NewDetector(history, fixedClock)

	first := detector.Analyze(proteinItem(), countOf(80), nil, 100)
	second := detector.Analyze(proteinItem(), countOf(80), nil, 100)
	assert.Equal(t, first, second)
}

func TestMemoryHistoryTrend(t *testing.T) {
	history := NewMemoryHistory()

	assert.Equal(t, domain.TrendStable, history.Trend("item-1", -20))

	history.Observe("item-1", -10)
	history.Observe("item-1", -10)

	assert.Equal(t, 10.0, history.HistoricalVariance("item-1"))
	assert.Equal(t, domain.TrendWorsening, history.Trend("item-1", -20))
	assert.Equal(t, domain.TrendImproving, history.Trend("item-1", -2))
	assert.Equal(t, domain.TrendStable, history.Trend("item-1", 10))
}

func TestRecommendationsForHighSeverityShortage(t *testing.T) {
	detector := NewDetector(nil, fixedClock)

	record := detector.Analyze(proteinItem(), countOf(80), nil, 100)

	require.NotEmpty(t, record.Recommendations)
	assert.Contains(t, record.Recommendations, "Conduct immediate investigation")
	assert.Contains(t, record.Recommendations, "Review security cameras and access logs")
	assert.Contains(t, record.Recommendations, "Install portion scales in kitchen")
	assert.Contains(t, record.Recommendations, "Increase inventory monitoring frequency")
}
