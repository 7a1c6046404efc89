// Package forecast computes point demand forecasts for inventory items by
// blending historical sales with optional weather, event, seasonal and
// cross-item signals. The blend weights and clamps are fixed constants of
// the model, not learned.
package forecast

import (
	"math"
	"time"

	"github.com/prepflow/inventory-intel/internal/domain"
)

const (
	// DefaultHorizonHours is used when the caller does not specify one.
	DefaultHorizonHours = 24

	// lookbackCapHours caps how much history feeds the base demand (30 days).
	lookbackCapHours = 24 * 30

	weatherWeight     = 0.4
	eventWeight       = 0.3
	seasonalWeight    = 0.2
	correlationWeight = 0.1

	hotThresholdC    = 25.0
	coldThresholdC   = 10.0
	rainThreshold    = 0.5
	heatFactor       = 0.2
	coldFactor       = 0.15
	rainFactor       = 0.1
	eventImpactScale = 0.1

	costOptimizationRate = 0.05
)

// Input carries the optional exogenous signals for one prediction. Any nil
// or empty signal degrades to a neutral multiplier; Predict never fails on
// missing data.
type Input struct {
	HorizonHours float64
	Weather      *domain.WeatherSnapshot
	Events       []domain.LocalEvent
	Correlations []domain.ItemCorrelation
}

// Result is the forecaster core output. Recommended par and expected waste
// reduction are composed downstream by the par-level and waste modules.
type Result struct {
	Demand           float64
	Confidence       float64
	StockoutRisk     float64
	CostOptimization float64
	HorizonHours     float64
}

// Engine blends base demand with the four model multipliers. It is a pure
// computation over its inputs; the sensitivity table and clock are injected
// so tests stay deterministic.
type Engine struct {
	sensitivities map[domain.Category]WeatherSensitivity
	now           func() time.Time
}

func NewEngine(sensitivities map[domain.Category]WeatherSensitivity, now func() time.Time) *Engine {
	if sensitivities == nil {
		sensitivities = DefaultWeatherSensitivities()
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{sensitivities: sensitivities, now: now}
}

// Predict produces the demand forecast for one item over the requested
// horizon. history is the item's ledger, newest entries last or not --
// ordering does not matter here.
func (e *Engine) Predict(item domain.InventoryItem, history []domain.LedgerEntry, in Input) Result {
	horizon := in.HorizonHours
	if horizon <= 0 {
		horizon = DefaultHorizonHours
	}
	now := e.now()

	base := e.baseDemand(history, horizon, now)

	weather := e.weatherMultiplier(item.Category, in.Weather)
	event := e.eventMultiplier(in.Events)
	seasonal := e.seasonalMultiplier(history, now)
	correlation := e.correlationMultiplier(in.Correlations)

	demand := base * (weatherWeight*weather +
		eventWeight*event +
		seasonalWeight*seasonal +
		correlationWeight*correlation)

	confidence := e.Confidence(history, now)
	risk := stockoutRisk(item.CurrentStock, demand, item.ParLevel, horizon)

	return Result{
		Demand:           demand,
		Confidence:       confidence,
		StockoutRisk:     risk,
		CostOptimization: item.StockValue() * costOptimizationRate,
		HorizonHours:     horizon,
	}
}

// baseDemand is total quantity sold over the lookback window (capped at 30
// days) normalized to the requested horizon.
func (e *Engine) baseDemand(history []domain.LedgerEntry, horizonHours float64, now time.Time) float64 {
	lookback := math.Min(horizonHours, lookbackCapHours)
	if lookback <= 0 {
		return 0
	}

	var totalSold float64
	for _, entry := range history {
		if entry.Kind != domain.EntrySale {
			continue
		}
		if hoursSince(entry.Timestamp, now) > lookback {
			continue
		}
		totalSold += math.Abs(entry.Quantity)
	}

	return totalSold / (lookback / horizonHours)
}

func (e *Engine) weatherMultiplier(category domain.Category, weather *domain.WeatherSnapshot) float64 {
	if weather == nil {
		return 1.0
	}

	sens := e.sensitivities[category]
	multiplier := 1.0

	if weather.Temperature > hotThresholdC {
		multiplier += sens.Heat * heatFactor
	} else if weather.Temperature < coldThresholdC {
		multiplier += sens.Cold * coldFactor
	}

	if weather.Precipitation > rainThreshold {
		multiplier += sens.Rain * rainFactor
	}

	return clamp(multiplier, 0.5, 2.0)
}

func (e *Engine) eventMultiplier(events []domain.LocalEvent) float64 {
	if len(events) == 0 {
		return 1.0
	}

	multiplier := 1.0
	for _, event := range events {
		proximity := math.Max(0, 1-event.ProximityKm/10)
		attendance := math.Min(event.ExpectedAttendance/1000, 2)
		multiplier += proximity * attendance * eventImpactScale
	}

	return clamp(multiplier, 0.8, 3.0)
}

// seasonalMultiplier is the ratio of the average sale in the current
// month/weekday/hour bucket to the overall average sale. 1.0 with no data.
func (e *Engine) seasonalMultiplier(history []domain.LedgerEntry, now time.Time) float64 {
	var (
		bucketTotal, bucketCount   float64
		overallTotal, overallCount float64
	)

	for _, entry := range history {
		if entry.Kind != domain.EntrySale {
			continue
		}
		qty := math.Abs(entry.Quantity)
		overallTotal += qty
		overallCount++

		ts := entry.Timestamp
		if ts.Month() == now.Month() && ts.Weekday() == now.Weekday() && ts.Hour() == now.Hour() {
			bucketTotal += qty
			bucketCount++
		}
	}

	if overallCount == 0 || bucketCount == 0 || overallTotal == 0 {
		return 1.0
	}

	return (bucketTotal / bucketCount) / (overallTotal / overallCount)
}

func (e *Engine) correlationMultiplier(correlations []domain.ItemCorrelation) float64 {
	multiplier := 1.0
	for _, c := range correlations {
		impact := c.Strength * c.VelocityTrend * math.Exp(-c.LeadTimeHours/24)
		multiplier += impact * correlationWeight
	}

	return clamp(multiplier, 0.5, 2.0)
}

// Confidence is the product of a historical-consistency score and a
// data-quality score. Consistency comes from the regularity of daily sales,
// data quality from sample size; both stay inside [0,1].
func (e *Engine) Confidence(history []domain.LedgerEntry, now time.Time) float64 {
	var saleCount float64
	for _, entry := range history {
		if entry.Kind == domain.EntrySale && hoursSince(entry.Timestamp, now) <= lookbackCapHours {
			saleCount++
		}
	}
	dataQuality := 0.3 + 0.7*math.Min(1, saleCount/50)

	consistency := 0.5
	daily := dailySales(history, now)
	if len(daily) >= 2 {
		cv := coefficientOfVariation(daily)
		consistency = math.Max(0.3, 1-math.Min(1, cv))
	}

	return consistency * dataQuality
}

// SalesVelocity is units sold per hour over the trailing 24 hours.
func (e *Engine) SalesVelocity(history []domain.LedgerEntry, now time.Time) float64 {
	var sold float64
	for _, entry := range history {
		if entry.Kind != domain.EntrySale {
			continue
		}
		if hoursSince(entry.Timestamp, now) <= 24 {
			sold += math.Abs(entry.Quantity)
		}
	}
	return sold / 24
}

// VelocityTrend is the relative change of sales velocity between the last
// 24 hours and the 24 hours before that. 0 when there is no prior window.
func (e *Engine) VelocityTrend(history []domain.LedgerEntry, now time.Time) float64 {
	var current, previous float64
	for _, entry := range history {
		if entry.Kind != domain.EntrySale {
			continue
		}
		age := hoursSince(entry.Timestamp, now)
		switch {
		case age <= 24:
			current += math.Abs(entry.Quantity)
		case age <= 48:
			previous += math.Abs(entry.Quantity)
		}
	}

	if previous == 0 {
		return 0
	}
	return (current - previous) / previous
}

// DemandVolatility is the coefficient of variation of daily sales over the
// lookback window. Items with under two days of data report 0.5.
func (e *Engine) DemandVolatility(history []domain.LedgerEntry, now time.Time) float64 {
	daily := dailySales(history, now)
	if len(daily) < 2 {
		return 0.5
	}
	return coefficientOfVariation(daily)
}

// SaleCount is the number of sale entries in the item's history.
func (e *Engine) SaleCount(history []domain.LedgerEntry) int {
	count := 0
	for _, entry := range history {
		if entry.Kind == domain.EntrySale {
			count++
		}
	}
	return count
}

func stockoutRisk(currentStock, demand, parLevel, horizonHours float64) float64 {
	if demand <= 0 {
		// No measurable consumption: days of stock is undefined, lowest band.
		return 0.1
	}

	perDay := demand / (horizonHours / 24)
	daysOfStock := currentStock / perDay
	parDays := parLevel / perDay

	switch {
	case daysOfStock <= 1:
		return 0.9
	case daysOfStock <= parDays*0.5:
		return 0.7
	case daysOfStock <= parDays:
		return 0.4
	default:
		return 0.1
	}
}

func dailySales(history []domain.LedgerEntry, now time.Time) []float64 {
	byDay := make(map[string]float64)
	for _, entry := range history {
		if entry.Kind != domain.EntrySale {
			continue
		}
		if hoursSince(entry.Timestamp, now) > lookbackCapHours {
			continue
		}
		byDay[entry.Timestamp.Format("2006-01-02")] += math.Abs(entry.Quantity)
	}

	out := make([]float64, 0, len(byDay))
	for _, v := range byDay {
		out = append(out, v)
	}
	return out
}

func coefficientOfVariation(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0.5
	}

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return math.Sqrt(variance) / mean
}

func hoursSince(t, now time.Time) float64 {
	return now.Sub(t).Hours()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
