package variance

import (
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/prepflow/inventory-intel/internal/domain"
)

var exportHeader = []string{
	"Item Name", "Category", "Unit",
	"Theoretical Qty", "Actual Qty", "Qty Variance", "Qty Variance %",
	"Theoretical Value", "Actual Value", "Value Variance", "Value Variance %",
	"Type", "Severity", "Possible Causes", "Recommendations",
	"Historical Variance %", "Trend", "Last Count Date",
}

// ExportTabular renders a report as CSV for spreadsheet review: one header
// row, one summary row, data rows ordered by absolute value variance
// (largest first), then labeled sections for loss patterns and actions.
func ExportTabular(report domain.VarianceReport) string {
	records := make([]domain.VarianceRecord, 0,
		len(report.Shortages)+len(report.Overages)+len(report.WithinTolerance))
	records = append(records, report.Shortages...)
	records = append(records, report.Overages...)
	records = append(records, report.WithinTolerance...)

	sort.SliceStable(records, func(i, j int) bool {
		return math.Abs(records[i].ValueVariance) > math.Abs(records[j].ValueVariance)
	})

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write(exportHeader)
	w.Write([]string{
		"SUMMARY",
		fmt.Sprintf("%d items", report.TotalItems),
		fmt.Sprintf("%d with variance", report.ItemsWithVariance),
		"", "", "",
		formatQty(report.AverageVariancePercent),
		"", "",
		formatMoney(report.TotalValueVariance),
		"", "", "", "", "", "", "",
		report.ReportDate.Format("2006-01-02"),
	})

	for _, r := range records {
		w.Write([]string{
			r.ItemName,
			string(r.Category),
			r.Unit,
			formatQty(r.TheoreticalQuantity),
			formatQty(r.ActualQuantity),
			formatQty(r.QuantityVariance),
			formatQty(r.QuantityVariancePercent),
			formatMoney(r.TheoreticalValue),
			formatMoney(r.ActualValue),
			formatMoney(r.ValueVariance),
			formatQty(r.ValueVariancePercent),
			string(r.VarianceType),
			string(r.Severity),
			strings.Join(r.PossibleCauses, "; "),
			strings.Join(r.Recommendations, "; "),
			formatQty(r.HistoricalVariance),
			string(r.TrendDirection),
			r.LastCountDate.Format("2006-01-02"),
		})
	}

	writeItemSection(w, "SUSPECTED THEFT", report.SuspectedTheft)
	writeItemSection(w, "PORTION CONTROL ISSUES", report.PortionControlIssues)
	writeTextSection(w, "IMMEDIATE ACTIONS", report.ImmediateActions)
	writeTextSection(w, "PROCESS IMPROVEMENTS", report.ProcessImprovements)

	w.Flush()
	return sb.String()
}

func writeItemSection(w *csv.Writer, label string, records []domain.VarianceRecord) {
	if len(records) == 0 {
		return
	}
	w.Write([]string{label})
	for _, r := range records {
		w.Write([]string{r.ItemName, formatQty(r.QuantityVariancePercent), formatMoney(r.ValueVariance)})
	}
}

func writeTextSection(w *csv.Writer, label string, lines []string) {
	if len(lines) == 0 {
		return
	}
	w.Write([]string{label})
	for _, line := range lines {
		w.Write([]string{line})
	}
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatMoney(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}
