package waste

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepflow/inventory-intel/internal/domain"
)

var testNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func TestPredictNoWasteWhenConsumedFirst(t *testing.T) {
	predictor := NewPredictor(nil, Environment{}, fixedClock)

	// Protein: 72h base shelf life, adjusted 72*1.0*0.9 = 64.8h.
	// Demand 20 over 72h consumes 10 units in 36h, well before spoilage.
	item := domain.InventoryItem{
		ID:           "item-1",
		Category:     domain.CategoryProtein,
		CurrentStock: 10,
		CostPerUnit:  8,
		ParLevel:     10,
	}
	prediction := predictor.Predict(item, 72, DemandContext{Demand: 20, Confidence: 0.8})

	assert.Equal(t, 0.0, prediction.PredictedWaste)
	assert.Equal(t, 0.0, prediction.CostImpact)
}

func TestPredictNoWasteAtExactTie(t *testing.T) {
	predictor := NewPredictor(nil, Environment{TemperatureFactor: 1.0, HumidityFactor: 1.0}, fixedClock)

	// Protein: 72h shelf life, neutral environment. Demand equal to stock
	// over a 72h horizon finishes consumption exactly at spoilage; waste
	// requires spoilage to come strictly first.
	item := domain.InventoryItem{
		ID:           "item-1",
		Category:     domain.CategoryProtein,
		CurrentStock: 30,
		CostPerUnit:  8,
		ParLevel:     30,
	}
	prediction := predictor.Predict(item, 72, DemandContext{Demand: 30, Confidence: 0.8})

	assert.Equal(t, 0.0, prediction.PredictedWaste)
	assert.Equal(t, 0.0, prediction.CostImpact)
}

func TestPredictWasteWhenSpoilageWins(t *testing.T) {
	predictor := NewPredictor(nil, Environment{}, fixedClock)

	// Demand 1 over 72h: 100 units last 7200h; spoilage at 64.8h.
	item := domain.InventoryItem{
		ID:           "item-1",
		Category:     domain.CategoryProtein,
		CurrentStock: 100,
		CostPerUnit:  8,
		ParLevel:     10,
	}
	prediction := predictor.Predict(item, 72, DemandContext{Demand: 1, Confidence: 0.8})

	expected := 100 * (1 - 64.8/7200.0)
	assert.InDelta(t, expected, prediction.PredictedWaste, 1e-9)
	assert.InDelta(t, expected*8, prediction.CostImpact, 1e-9)
	assert.Equal(t, testNow.Add(time.Duration(64.8*float64(time.Hour))), prediction.PredictedWasteDate)
}

func TestPredictZeroDemandLosesEverything(t *testing.T) {
	predictor := NewPredictor(nil, Environment{}, fixedClock)

	item := domain.InventoryItem{
		ID:           "item-1",
		Category:     domain.CategoryDairy,
		CurrentStock: 12,
		CostPerUnit:  3,
	}
	prediction := predictor.Predict(item, 72, DemandContext{Demand: 0, Confidence: 0.5})

	assert.InDelta(t, 12.0, prediction.PredictedWaste, 1e-9)
	assert.Contains(t, prediction.ContributingFactors, FactorLowDemand)
}

func TestPredictZeroStock(t *testing.T) {
	predictor := NewPredictor(nil, Environment{}, fixedClock)

	item := domain.InventoryItem{ID: "item-1", Category: domain.CategoryVegetables}
	prediction := predictor.Predict(item, 72, DemandContext{Demand: 5, Confidence: 0.5})

	assert.Equal(t, 0.0, prediction.PredictedWaste)
}

func TestContributingFactorsAndStrategies(t *testing.T) {
	predictor := NewPredictor(nil, Environment{}, fixedClock)

	// Vegetables: 120h shelf life is not "short" (threshold is strict <120).
	// Protein at 72h is. Overstocked and slow moving.
	item := domain.InventoryItem{
		ID:           "item-1",
		Category:     domain.CategoryProtein,
		CurrentStock: 100,
		CostPerUnit:  8,
		ParLevel:     10,
	}
	prediction := predictor.Predict(item, 72, DemandContext{Demand: 1, Confidence: 0.8})

	assert.ElementsMatch(t, []string{FactorLowDemand, FactorShortShelfLife, FactorOverstocking}, prediction.ContributingFactors)

	assert.Contains(t, prediction.PreventionStrategies, "Create promotional campaigns")
	assert.Contains(t, prediction.PreventionStrategies, "Reduce next order quantity")
	assert.Contains(t, prediction.PreventionStrategies, "Improve storage conditions")
	// Cost impact far above 10x unit cost triggers the sourcing pair.
	assert.Contains(t, prediction.PreventionStrategies, "Consider supplier alternatives")
	assert.Contains(t, prediction.PreventionStrategies, "Negotiate smaller batch sizes")
}

func TestPredictionConfidenceBounds(t *testing.T) {
	require.Equal(t, 0.1, predictionConfidence(DemandContext{Confidence: 0.1, Volatility: 2}))
	require.Equal(t, 1.0, predictionConfidence(DemandContext{Confidence: 0.9, TransactionCount: 60}))

	// Transaction volume bumps.
	base := predictionConfidence(DemandContext{Confidence: 0.5})
	some := predictionConfidence(DemandContext{Confidence: 0.5, TransactionCount: 30})
	many := predictionConfidence(DemandContext{Confidence: 0.5, TransactionCount: 60})
	assert.InDelta(t, 0.5, base, 1e-9)
	assert.InDelta(t, 0.6, some, 1e-9)
	assert.InDelta(t, 0.7, many, 1e-9)
}

func TestExpectedReduction(t *testing.T) {
	predictor := NewPredictor(nil, Environment{}, fixedClock)

	item := domain.InventoryItem{
		ID:       "item-1",
		Category: domain.CategoryDairy, // 168h shelf life
		ParLevel: 40,
	}

	// Weekly waste rate 5% of par, shelf factor 168/168 = 1:
	// current 2.0, optimized 1.0.
	reduction := predictor.ExpectedReduction(item, 20)
	assert.InDelta(t, 1.0, reduction, 1e-9)

	// Raising the par level never reports a negative reduction.
	assert.Equal(t, 0.0, predictor.ExpectedReduction(item, 80))
}

func TestSpoilageModelFallback(t *testing.T) {
	predictor := NewPredictor(nil, Environment{}, fixedClock)
	model := predictor.model(domain.Category("unknown"))
	assert.Equal(t, 720.0, model.BaseShelfLifeHours)
}
