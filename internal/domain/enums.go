package domain

import "strings"

// Category groups inventory items for spoilage and weather-sensitivity lookups.
type Category string

const (
	CategoryDairy      Category = "dairy"
	CategoryVegetables Category = "vegetables"
	CategoryProtein    Category = "protein"
	CategoryGrains     Category = "grains"
	CategoryOther      Category = "other"
)

// ParseCategory returns the category for a given label (case-insensitive).
// Unknown labels map to CategoryOther.
func ParseCategory(label string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(label))) {
	case CategoryDairy:
		return CategoryDairy
	case CategoryVegetables:
		return CategoryVegetables
	case CategoryProtein:
		return CategoryProtein
	case CategoryGrains:
		return CategoryGrains
	default:
		return CategoryOther
	}
}

// EntryKind is the kind of a ledger transaction.
type EntryKind string

const (
	EntryPurchase   EntryKind = "purchase"
	EntrySale       EntryKind = "sale"
	EntryAdjustment EntryKind = "adjustment"
	EntryWaste      EntryKind = "waste"
)

// CountMethod records how a physical count was taken.
type CountMethod string

const (
	CountPhysical  CountMethod = "physical"
	CountScale     CountMethod = "scale"
	CountEstimated CountMethod = "estimated"
)

// VarianceType classifies a theoretical-vs-actual discrepancy.
type VarianceType string

const (
	VarianceOverage         VarianceType = "overage"
	VarianceShortage        VarianceType = "shortage"
	VarianceWithinTolerance VarianceType = "within_tolerance"
)

// Severity ranks how serious a variance is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank orders severities from least to most severe.
var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// Trend describes how an item's variance is evolving over time.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendWorsening Trend = "worsening"
	TrendStable    Trend = "stable"
)

// ResolutionType is how a POS conflict group was resolved.
type ResolutionType string

const (
	ResolutionMerge      ResolutionType = "merge"
	ResolutionPrioritize ResolutionType = "prioritize"
	ResolutionRollback   ResolutionType = "rollback"
	ResolutionManual     ResolutionType = "manual"
)
