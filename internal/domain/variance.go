package domain

import "time"

// VarianceRecord compares the ledger-derived theoretical quantity for one
// item against a physical count. Derived entirely from LedgerEntry +
// PhysicalCount + cost per unit; never mutated after creation.
type VarianceRecord struct {
	ItemID   string   `json:"item_id"`
	ItemName string   `json:"item_name"`
	Category Category `json:"category"`
	Unit     string   `json:"unit"`

	TheoreticalQuantity float64 `json:"theoretical_quantity"`
	TheoreticalValue    float64 `json:"theoretical_value"`
	ActualQuantity      float64 `json:"actual_quantity"`
	ActualValue         float64 `json:"actual_value"`

	QuantityVariance        float64 `json:"quantity_variance"` // actual - theoretical
	QuantityVariancePercent float64 `json:"quantity_variance_percent"`
	ValueVariance           float64 `json:"value_variance"`
	ValueVariancePercent    float64 `json:"value_variance_percent"`

	VarianceType    VarianceType `json:"variance_type"`
	Severity        Severity     `json:"severity"`
	PossibleCauses  []string     `json:"possible_causes"`
	Recommendations []string     `json:"recommendations"`

	HistoricalVariance float64 `json:"historical_variance"`
	TrendDirection     Trend   `json:"trend_direction"`

	CalculationDate time.Time `json:"calculation_date"`
	LastCountDate   time.Time `json:"last_count_date"`
}

// ReportPeriod is the date range a variance report covers.
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// VarianceReport aggregates per-item variance records for a count cycle.
type VarianceReport struct {
	ReportID   string       `json:"report_id"`
	ReportDate time.Time    `json:"report_date"`
	Period     ReportPeriod `json:"period"`

	TotalItems             int     `json:"total_items"`
	ItemsWithVariance      int     `json:"items_with_variance"`
	TotalValueVariance     float64 `json:"total_value_variance"`
	AverageVariancePercent float64 `json:"average_variance_percent"`

	Overages        []VarianceRecord `json:"overages"`
	Shortages       []VarianceRecord `json:"shortages"`
	WithinTolerance []VarianceRecord `json:"within_tolerance"`

	SuspectedTheft       []VarianceRecord `json:"suspected_theft"`
	PortionControlIssues []VarianceRecord `json:"portion_control_issues"`
	SpoilageRelated      []VarianceRecord `json:"spoilage_related"`

	ImmediateActions    []string `json:"immediate_actions"`
	ProcessImprovements []string `json:"process_improvements"`
	TrainingNeeds       []string `json:"training_needs"`
}
