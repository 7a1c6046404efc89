// Package waste estimates upcoming spoilage by racing each item's adjusted
// shelf life against its forecast consumption rate.
package waste

import (
	"math"
	"time"

	"github.com/prepflow/inventory-intel/internal/domain"
)

const (
	// DefaultHorizonHours is the waste forecast window when unspecified.
	DefaultHorizonHours = 72

	shortShelfLifeHours  = 120
	overstockParFactor   = 1.5
	lowDemandStockFactor = 0.5
	highValueCostFactor  = 10

	historicalWasteRate = 0.05
	weekHours           = 168
)

// Contributing factor labels. The prevention-strategy mapping keys off them.
const (
	FactorLowDemand      = "Low demand forecast"
	FactorShortShelfLife = "Short shelf life"
	FactorOverstocking   = "Overstocking"
)

// Environment are the fixed environmental adjustment factors applied to
// base shelf life. Hooks for real sensor input; the base model assumes
// optimal temperature and a slight humidity impact.
type Environment struct {
	TemperatureFactor float64
	HumidityFactor    float64
}

func DefaultEnvironment() Environment {
	return Environment{TemperatureFactor: 1.0, HumidityFactor: 0.9}
}

// DemandContext is what the predictor needs from the forecasting side.
type DemandContext struct {
	Demand           float64
	Confidence       float64
	TransactionCount int
	Volatility       float64
}

// Predictor estimates waste quantity, timing and cost for one item.
type Predictor struct {
	models map[domain.Category]SpoilageModel
	env    Environment
	now    func() time.Time
}

func NewPredictor(models map[domain.Category]SpoilageModel, env Environment, now func() time.Time) *Predictor {
	if models == nil {
		models = DefaultSpoilageModels()
	}
	if env.TemperatureFactor == 0 && env.HumidityFactor == 0 {
		env = DefaultEnvironment()
	}
	if now == nil {
		now = time.Now
	}
	return &Predictor{models: models, env: env, now: now}
}

// Predict races adjusted shelf life against forecast consumption. Waste
// occurs only when spoilage strictly precedes consumption.
func (p *Predictor) Predict(item domain.InventoryItem, horizonHours float64, demand DemandContext) domain.WastePrediction {
	if horizonHours <= 0 {
		horizonHours = DefaultHorizonHours
	}

	model := p.model(item.Category)
	adjustedShelfLife := model.BaseShelfLifeHours * p.env.TemperatureFactor * p.env.HumidityFactor

	timeToSpoilage := adjustedShelfLife
	timeToConsumption := consumptionHours(item.CurrentStock, demand.Demand, horizonHours)

	var predicted float64
	if timeToSpoilage < timeToConsumption {
		predicted = item.CurrentStock * math.Max(0, 1-timeToSpoilage/timeToConsumption)
	}

	costImpact := predicted * item.CostPerUnit
	factors := p.contributingFactors(item, model, demand.Demand)
	strategies := preventionStrategies(factors, costImpact, item.CostPerUnit)

	return domain.WastePrediction{
		ItemID:               item.ID,
		PredictedWaste:       predicted,
		PredictedWasteDate:   p.now().Add(time.Duration(adjustedShelfLife * float64(time.Hour))),
		Confidence:           predictionConfidence(demand),
		ContributingFactors:  factors,
		PreventionStrategies: strategies,
		CostImpact:           costImpact,
	}
}

// ExpectedReduction estimates how much weekly waste a par-level change
// avoids, using the historical waste rate normalized by shelf life.
func (p *Predictor) ExpectedReduction(item domain.InventoryItem, newParLevel float64) float64 {
	shelf := p.model(item.Category).BaseShelfLifeHours
	current := simulateWaste(item.ParLevel, shelf)
	optimized := simulateWaste(newParLevel, shelf)
	return math.Max(0, current-optimized)
}

func (p *Predictor) model(category domain.Category) SpoilageModel {
	if model, ok := p.models[category]; ok {
		return model
	}
	return p.models[domain.CategoryOther]
}

func (p *Predictor) contributingFactors(item domain.InventoryItem, model SpoilageModel, demand float64) []string {
	var factors []string

	if demand < item.CurrentStock*lowDemandStockFactor {
		factors = append(factors, FactorLowDemand)
	}
	if model.BaseShelfLifeHours < shortShelfLifeHours {
		factors = append(factors, FactorShortShelfLife)
	}
	if item.CurrentStock > item.ParLevel*overstockParFactor {
		factors = append(factors, FactorOverstocking)
	}

	return factors
}

func preventionStrategies(factors []string, costImpact, costPerUnit float64) []string {
	var strategies []string

	for _, factor := range factors {
		switch factor {
		case FactorLowDemand:
			strategies = append(strategies,
				"Create promotional campaigns",
				"Feature in daily specials")
		case FactorOverstocking:
			strategies = append(strategies,
				"Reduce next order quantity",
				"Implement dynamic par levels")
		case FactorShortShelfLife:
			strategies = append(strategies,
				"Improve storage conditions",
				"Implement FIFO rotation alerts")
		}
	}

	if costImpact > costPerUnit*highValueCostFactor {
		strategies = append(strategies,
			"Consider supplier alternatives",
			"Negotiate smaller batch sizes")
	}

	return strategies
}

func predictionConfidence(demand DemandContext) float64 {
	confidence := demand.Confidence

	if demand.TransactionCount > 50 {
		confidence += 0.2
	} else if demand.TransactionCount > 20 {
		confidence += 0.1
	}

	confidence -= demand.Volatility * 0.3

	return math.Max(0.1, math.Min(1.0, confidence))
}

// consumptionHours is how long the current stock lasts at the forecast
// consumption rate. Zero demand means stock is never consumed.
func consumptionHours(currentStock, demand, horizonHours float64) float64 {
	if currentStock <= 0 {
		return 0
	}
	if demand <= 0 {
		return math.Inf(1)
	}
	return currentStock / (demand / horizonHours)
}

func simulateWaste(parLevel, shelfLifeHours float64) float64 {
	return parLevel * historicalWasteRate * (shelfLifeHours / weekHours)
}
