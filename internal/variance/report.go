package variance

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/prepflow/inventory-intel/internal/domain"
)

// BuildReport aggregates per-item records for one count cycle into a
// variance report: bucketed records, totals, loss-pattern groupings and
// action lists.
func BuildReport(period domain.ReportPeriod, records []domain.VarianceRecord, reportDate time.Time) domain.VarianceReport {
	report := domain.VarianceReport{
		ReportID:   "variance_" + uuid.New().String(),
		ReportDate: reportDate,
		Period:     period,
		TotalItems: len(records),
	}

	var totalAbsPct float64
	criticalCount := 0

	for _, r := range records {
		switch r.VarianceType {
		case domain.VarianceOverage:
			report.Overages = append(report.Overages, r)
		case domain.VarianceShortage:
			report.Shortages = append(report.Shortages, r)
		default:
			report.WithinTolerance = append(report.WithinTolerance, r)
		}

		if r.VarianceType != domain.VarianceWithinTolerance {
			report.ItemsWithVariance++
		}
		if r.Severity == domain.SeverityCritical {
			criticalCount++
		}

		report.TotalValueVariance += math.Abs(r.ValueVariance)
		totalAbsPct += math.Abs(r.QuantityVariancePercent)

		scores := ScoreLossPatterns(r)
		if scores.SuspectedTheft() {
			report.SuspectedTheft = append(report.SuspectedTheft, r)
		}
		if scores.PortionIssue() {
			report.PortionControlIssues = append(report.PortionControlIssues, r)
		}
		if scores.SpoilageRelated() {
			report.SpoilageRelated = append(report.SpoilageRelated, r)
		}
	}

	if len(records) > 0 {
		report.AverageVariancePercent = totalAbsPct / float64(len(records))
	}

	if criticalCount > 0 {
		report.ImmediateActions = append(report.ImmediateActions,
			fmt.Sprintf("Investigate %d critical variance items immediately", criticalCount))
	}
	if len(report.SuspectedTheft) > 0 {
		report.ImmediateActions = append(report.ImmediateActions,
			"Review security protocols and access controls")
		report.ProcessImprovements = append(report.ProcessImprovements,
			"Implement additional inventory security measures")
	}
	if len(report.PortionControlIssues) > 0 {
		report.TrainingNeeds = append(report.TrainingNeeds,
			"Kitchen staff portion control training")
		report.ProcessImprovements = append(report.ProcessImprovements,
			"Install portion control scales and measuring tools")
	}

	return report
}
