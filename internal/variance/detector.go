// Package variance compares ledger-derived theoretical stock against
// physical counts, classifies the discrepancies and scores likely loss
// patterns (theft, portion control, spoilage).
package variance

import (
	"math"
	"time"

	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/prepflow/inventory-intel/internal/ledger"
)

const (
	tolerancePercent = 2.0
	mediumPercent    = 5.0
	highPercent      = 10.0
	criticalPercent  = 20.0

	mediumValue   = 100.0
	highValue     = 500.0
	criticalValue = 1000.0

	theftFlagThreshold    = 0.7
	portionFlagThreshold  = 0.6
	spoilageFlagThreshold = 0.5
)

// History supplies an item's variance track record. Implementations must be
// read-only from the detector's point of view so that analyzing the same
// inputs twice yields the same record.
type History interface {
	HistoricalVariance(itemID string) float64
	Trend(itemID string, currentPercent float64) domain.Trend
}

// Detector derives VarianceRecords from ledger history and counts.
type Detector struct {
	history History
	now     func() time.Time
}

func NewDetector(history History, now func() time.Time) *Detector {
	if history == nil {
		history = NewMemoryHistory()
	}
	if now == nil {
		now = time.Now
	}
	return &Detector{history: history, now: now}
}

// TheoreticalQuantity replays the entries chronologically from the opening
// balance: purchases and adjustments apply their signed delta, sales and
// waste always draw down. The result is clamped at zero.
func TheoreticalQuantity(opening float64, entries []domain.LedgerEntry) float64 {
	quantity := opening
	for _, entry := range entries {
		quantity += ledger.EntryEffect(entry)
	}
	return math.Max(0, quantity)
}

// Analyze produces one VarianceRecord for a counted item. entries must be
// the item's ledger within the report period, chronologically ordered;
// opening is the item's stock at the period start.
func (d *Detector) Analyze(item domain.InventoryItem, count domain.PhysicalCount, entries []domain.LedgerEntry, opening float64) domain.VarianceRecord {
	theoreticalQty := TheoreticalQuantity(opening, entries)
	theoreticalValue := theoreticalQty * item.CostPerUnit

	actualQty := math.Max(0, count.Quantity)
	actualValue := actualQty * item.CostPerUnit

	qtyVariance := actualQty - theoreticalQty
	qtyVariancePct := 0.0
	if theoreticalQty > 0 {
		qtyVariancePct = qtyVariance / theoreticalQty * 100
	}

	valueVariance := actualValue - theoreticalValue
	valueVariancePct := 0.0
	if theoreticalValue > 0 {
		valueVariancePct = valueVariance / theoreticalValue * 100
	}

	varianceType := classify(qtyVariancePct)
	severity := severityFor(qtyVariancePct, valueVariance)
	causes := possibleCauses(item, qtyVariancePct, entries)

	return domain.VarianceRecord{
		ItemID:                  item.ID,
		ItemName:                item.Name,
		Category:                item.Category,
		Unit:                    item.Unit,
		TheoreticalQuantity:     theoreticalQty,
		TheoreticalValue:        theoreticalValue,
		ActualQuantity:          actualQty,
		ActualValue:             actualValue,
		QuantityVariance:        qtyVariance,
		QuantityVariancePercent: qtyVariancePct,
		ValueVariance:           valueVariance,
		ValueVariancePercent:    valueVariancePct,
		VarianceType:            varianceType,
		Severity:                severity,
		PossibleCauses:          causes,
		Recommendations:         recommendations(varianceType, severity, causes),
		HistoricalVariance:      d.history.HistoricalVariance(item.ID),
		TrendDirection:          d.history.Trend(item.ID, qtyVariancePct),
		CalculationDate:         d.now(),
		LastCountDate:           count.CountDate,
	}
}

func classify(variancePercent float64) domain.VarianceType {
	if math.Abs(variancePercent) <= tolerancePercent {
		return domain.VarianceWithinTolerance
	}
	if variancePercent > 0 {
		return domain.VarianceOverage
	}
	return domain.VarianceShortage
}

// severityFor checks the bands most severe first so the highest matching
// tier wins.
func severityFor(variancePercent, valueVariance float64) domain.Severity {
	absPct := math.Abs(variancePercent)
	absValue := math.Abs(valueVariance)

	switch {
	case absPct >= criticalPercent || absValue > criticalValue:
		return domain.SeverityCritical
	case absPct >= highPercent || absValue > highValue:
		return domain.SeverityHigh
	case absPct >= mediumPercent || absValue > mediumValue:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func possibleCauses(item domain.InventoryItem, variancePercent float64, entries []domain.LedgerEntry) []string {
	var causes []string

	if variancePercent < -15 {
		causes = append(causes,
			"Potential theft or unauthorized usage",
			"Over-portioning in kitchen",
			"Unrecorded waste or spoilage")
	} else if variancePercent > 15 {
		causes = append(causes,
			"Under-portioning in recipes",
			"Unrecorded returns or credits",
			"Counting errors")
	}

	if item.Category == domain.CategoryProtein && math.Abs(variancePercent) > 10 {
		causes = append(causes, "Portion control issues with high-value protein")
	}

	if variancePercent < 0 && hasWasteEntry(entries) {
		causes = append(causes, "Spoilage or quality control issues")
	}

	return causes
}

func hasWasteEntry(entries []domain.LedgerEntry) bool {
	for _, entry := range entries {
		if entry.Kind == domain.EntryWaste {
			return true
		}
	}
	return false
}

func recommendations(varianceType domain.VarianceType, severity domain.Severity, causes []string) []string {
	var recs []string

	if severity.AtLeast(domain.SeverityHigh) {
		recs = append(recs,
			"Conduct immediate investigation",
			"Implement daily counting for this item")
	}

	for _, cause := range causes {
		switch cause {
		case "Potential theft or unauthorized usage":
			recs = append(recs,
				"Review security cameras and access logs",
				"Implement portion control training")
		case "Portion control issues with high-value protein":
			recs = append(recs,
				"Install portion scales in kitchen",
				"Review and update recipe specifications")
		}
	}

	if varianceType == domain.VarianceShortage {
		recs = append(recs, "Increase inventory monitoring frequency")
	}

	return recs
}

// LossScores holds the independent loss-pattern probabilities for a record.
// They are not mutually exclusive.
type LossScores struct {
	Theft          float64
	PortionControl float64
	Spoilage       float64
}

// ScoreLossPatterns computes theft, portion-control and spoilage scores
// from a record. Each accumulates its rule increments and caps at 1.0.
func ScoreLossPatterns(r domain.VarianceRecord) LossScores {
	var s LossScores

	if r.VarianceType == domain.VarianceShortage && r.ActualValue > 100 {
		s.Theft += 0.3
	}
	if r.QuantityVariancePercent < -15 {
		s.Theft += 0.4
	}
	if r.Category == domain.CategoryProtein {
		s.Theft += 0.2
	}
	if r.TrendDirection == domain.TrendWorsening {
		s.Theft += 0.1
	}

	if r.Category == domain.CategoryProtein && math.Abs(r.QuantityVariancePercent) > 10 {
		s.PortionControl += 0.5
	}
	if math.Abs(r.QuantityVariancePercent) > 8 {
		s.PortionControl += 0.3
	}

	switch r.Category {
	case domain.CategoryDairy, domain.CategoryVegetables, domain.CategoryProtein:
		s.Spoilage += 0.3
	}
	if r.VarianceType == domain.VarianceShortage {
		s.Spoilage += 0.2
	}

	s.Theft = math.Min(1.0, s.Theft)
	s.PortionControl = math.Min(1.0, s.PortionControl)
	s.Spoilage = math.Min(1.0, s.Spoilage)
	return s
}

// SuspectedTheft reports whether the theft score crosses the flag threshold.
func (s LossScores) SuspectedTheft() bool { return s.Theft > theftFlagThreshold }

// PortionIssue reports whether the portion-control score crosses its threshold.
func (s LossScores) PortionIssue() bool { return s.PortionControl > portionFlagThreshold }

// SpoilageRelated reports whether the spoilage score crosses its threshold.
func (s LossScores) SpoilageRelated() bool { return s.Spoilage > spoilageFlagThreshold }
