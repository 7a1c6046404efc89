// internal/domain/models.go
package domain

import "time"

// InventoryItem is a tracked stock item. Category drives the spoilage and
// weather-sensitivity lookups used by the analytic engines.
type InventoryItem struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Category     Category  `json:"category" db:"category"`
	Unit         string    `json:"unit" db:"unit"`
	CurrentStock float64   `json:"current_stock" db:"current_stock"`
	CostPerUnit  float64   `json:"cost_per_unit" db:"cost_per_unit"`
	ParLevel     float64   `json:"par_level" db:"par_level"`
	SupplierID   string    `json:"supplier_id,omitempty" db:"supplier_id"`
	LastUpdated  time.Time `json:"last_updated" db:"last_updated"`
}

// StockValue is the current stock valued at cost.
func (i InventoryItem) StockValue() float64 {
	return i.CurrentStock * i.CostPerUnit
}

// LedgerEntry is one immutable transaction in an item's history. The ordered
// per-item sequence is the source of truth for theoretical quantity.
type LedgerEntry struct {
	ID        int64     `json:"id" db:"id"`
	ItemID    string    `json:"item_id" db:"item_id"`
	Quantity  float64   `json:"quantity" db:"quantity"` // signed delta
	Kind      EntryKind `json:"kind" db:"kind"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Reason    string    `json:"reason,omitempty" db:"reason"`
}

// PhysicalCount is a one-off count event; consumed, never mutated.
type PhysicalCount struct {
	ID        string      `json:"id" db:"id"`
	ItemID    string      `json:"item_id" db:"item_id"`
	Quantity  float64     `json:"quantity" db:"quantity"`
	CountDate time.Time   `json:"count_date" db:"count_date"`
	CountedBy string      `json:"counted_by" db:"counted_by"`
	Method    CountMethod `json:"method" db:"method"`
	Notes     string      `json:"notes,omitempty" db:"notes"`
}

// WeatherSnapshot is an optional exogenous signal for demand forecasting.
type WeatherSnapshot struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Precipitation float64 `json:"precipitation"`
}

// LocalEvent is a nearby event expected to move demand.
type LocalEvent struct {
	Date               time.Time `json:"date"`
	Type               string    `json:"type"`
	ExpectedAttendance float64   `json:"expected_attendance"`
	ProximityKm        float64   `json:"proximity_km"`
}

// ItemCorrelation links demand between menu-related items.
type ItemCorrelation struct {
	ItemID        string  `json:"item_id"`
	Strength      float64 `json:"strength"` // -1..1
	LeadTimeHours float64 `json:"lead_time_hours"`
	VelocityTrend float64 `json:"velocity_trend"`
}

// DemandForecast is the full forecaster output for one item. Recomputed on
// demand; not persisted as history.
type DemandForecast struct {
	ItemID                 string    `json:"item_id"`
	HorizonHours           float64   `json:"horizon_hours"`
	Demand                 float64   `json:"demand"`
	Confidence             float64   `json:"confidence"`
	RecommendedPar         float64   `json:"recommended_par"`
	ExpectedWasteReduction float64   `json:"expected_waste_reduction"`
	CostOptimization       float64   `json:"cost_optimization"`
	StockoutRisk           float64   `json:"stockout_risk"`
	GeneratedAt            time.Time `json:"generated_at"`
}

// WastePrediction estimates upcoming spoilage for one item.
type WastePrediction struct {
	ItemID               string    `json:"item_id"`
	PredictedWaste       float64   `json:"predicted_waste"`
	PredictedWasteDate   time.Time `json:"predicted_waste_date"`
	Confidence           float64   `json:"confidence"`
	ContributingFactors  []string  `json:"contributing_factors"`
	PreventionStrategies []string  `json:"prevention_strategies"`
	CostImpact           float64   `json:"cost_impact"`
}

// PosConnection identifies one point-of-sale channel.
type PosConnection struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Connected bool      `json:"connected" db:"connected"`
	LastSync  time.Time `json:"last_sync" db:"last_sync"`
}
