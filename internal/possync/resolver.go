package possync

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/prepflow/inventory-intel/internal/domain"
)

const (
	// DefaultConflictWindow is how far apart two reports for the same item
	// may be and still count as conflicting.
	DefaultConflictWindow = 30 * time.Second

	// priority 8 and above marks a report as business critical.
	highPriority = 8

	timestampTieWindow = time.Second
	recentWindow       = 60 * time.Second
	freshWinnerAge     = 5 * time.Minute
	crowdedGroupSize   = 3
)

// Resolver groups conflicting reports and picks a winner per group.
type Resolver struct {
	window time.Duration
	now    func() time.Time
}

func NewResolver(window time.Duration, now func() time.Time) *Resolver {
	if window <= 0 {
		window = DefaultConflictWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{window: window, now: now}
}

// GroupConflicts partitions reports into conflict groups. Two reports
// conflict when they reference the same item under different transaction
// IDs, fall within the conflict window of each other, and disagree on
// quantity or kind. A report conflicting with nothing becomes its own
// singleton group. Input order does not affect the result.
func (r *Resolver) GroupConflicts(reports []domain.PosReport) [][]domain.PosReport {
	sorted := sortReports(reports)

	var groups [][]domain.PosReport
	processed := make(map[string]bool, len(sorted))

	for _, seed := range sorted {
		if processed[seed.TransactionID] {
			continue
		}

		group := []domain.PosReport{seed}
		for _, candidate := range sorted {
			if candidate.TransactionID == seed.TransactionID || processed[candidate.TransactionID] {
				continue
			}
			if r.conflicts(seed, candidate) {
				group = append(group, candidate)
			}
		}

		for _, member := range group {
			processed[member.TransactionID] = true
		}
		groups = append(groups, group)
	}

	return groups
}

// Resolve picks the winning report for one conflict group and explains the
// choice. It never mutates the ledger; applying is the engine's job.
func (r *Resolver) Resolve(group []domain.PosReport) domain.ConflictResolution {
	now := r.now()

	if len(group) == 1 {
		return domain.ConflictResolution{
			ID:             "resolution_" + uuid.New().String(),
			ResolutionType: domain.ResolutionMerge,
			Winner:         group[0],
			Reasoning:      fmt.Sprintf("No conflicting reports; applied directly from POS %s", group[0].PosID),
			Confidence:     1.0,
			Timestamp:      now,
		}
	}

	resolutionType := r.resolutionType(group, now)

	ordered := orderForResolution(group)
	winner := ordered[0]
	if resolutionType == domain.ResolutionPrioritize {
		winner = highestPriority(ordered)
	}

	rejected := make([]domain.PosReport, 0, len(group)-1)
	for _, report := range ordered {
		if report.TransactionID != winner.TransactionID {
			rejected = append(rejected, report)
		}
	}

	return domain.ConflictResolution{
		ID:             "resolution_" + uuid.New().String(),
		ResolutionType: resolutionType,
		Winner:         winner,
		Rejected:       rejected,
		Reasoning:      reasoning(resolutionType, winner, len(group)),
		Confidence:     r.confidence(group, winner, now),
		Timestamp:      now,
	}
}

func (r *Resolver) conflicts(a, b domain.PosReport) bool {
	if a.ItemID != b.ItemID {
		return false
	}
	dt := a.Timestamp.Sub(b.Timestamp)
	if dt < 0 {
		dt = -dt
	}
	if dt > r.window {
		return false
	}
	return a.QuantityChange != b.QuantityChange || a.Kind != b.Kind
}

func (r *Resolver) resolutionType(group []domain.PosReport, now time.Time) domain.ResolutionType {
	hasHighPriority := false
	hasRecent := false

	for _, report := range group {
		if report.Priority >= highPriority {
			hasHighPriority = true
		}
		if now.Sub(report.Timestamp) < recentWindow {
			hasRecent = true
		}
	}

	switch {
	case hasHighPriority:
		return domain.ResolutionPrioritize
	case hasRecent:
		return domain.ResolutionMerge
	default:
		return domain.ResolutionManual
	}
}

func (r *Resolver) confidence(group []domain.PosReport, winner domain.PosReport, now time.Time) float64 {
	confidence := 0.5

	if winner.Priority >= highPriority {
		confidence += 0.3
	}
	if now.Sub(winner.Timestamp) < freshWinnerAge {
		confidence += 0.2
	}
	if len(group) > crowdedGroupSize {
		confidence -= 0.2
	}

	if confidence < 0.1 {
		return 0.1
	}
	if confidence > 1.0 {
		return 1.0
	}
	return confidence
}

func reasoning(resolutionType domain.ResolutionType, winner domain.PosReport, groupSize int) string {
	switch resolutionType {
	case domain.ResolutionPrioritize:
		return fmt.Sprintf("Selected transaction from POS %s due to higher priority (%d)", winner.PosID, winner.Priority)
	case domain.ResolutionMerge:
		return fmt.Sprintf("Merged transactions with %s as primary source under latest timestamp precedence", winner.PosID)
	case domain.ResolutionRollback:
		return "Rolled back to last known good state due to data corruption"
	default:
		return fmt.Sprintf("Manual review required for %d conflicting transactions", groupSize)
	}
}

// orderForResolution sorts a group so the chronologically latest report
// comes first. Reports within one second of each other rank by descending
// priority, then by sequence number and transaction ID so repeated runs
// agree.
func orderForResolution(group []domain.PosReport) []domain.PosReport {
	ordered := append([]domain.PosReport(nil), group...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		dt := a.Timestamp.Sub(b.Timestamp)
		if dt < 0 {
			dt = -dt
		}
		if dt < timestampTieWindow {
			if a.Priority != b.Priority {
				return a.Priority > b.Priority
			}
			if a.SequenceNumber != b.SequenceNumber {
				return a.SequenceNumber > b.SequenceNumber
			}
			return a.TransactionID < b.TransactionID
		}
		return a.Timestamp.After(b.Timestamp)
	})
	return ordered
}

func highestPriority(ordered []domain.PosReport) domain.PosReport {
	best := ordered[0]
	for _, report := range ordered[1:] {
		if report.Priority > best.Priority {
			best = report
		}
	}
	return best
}

// sortReports is the deterministic canonical order for raw report sets.
func sortReports(reports []domain.PosReport) []domain.PosReport {
	sorted := append([]domain.PosReport(nil), reports...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.SequenceNumber != b.SequenceNumber {
			return a.SequenceNumber < b.SequenceNumber
		}
		return a.TransactionID < b.TransactionID
	})
	return sorted
}
