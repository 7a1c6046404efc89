package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prepflow/inventory-intel/internal/cache"
	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/prepflow/inventory-intel/internal/ledger"
	"github.com/prepflow/inventory-intel/internal/variance"
)

// ErrNoCounts is returned when a report request carries no counts and no
// stored counts exist for the period.
var ErrNoCounts = errors.New("service: no physical counts for period")

// CountSource persists physical counts and recalls the latest count per
// item within a period. The Postgres count repository implements it.
type CountSource interface {
	SaveCounts(ctx context.Context, counts []domain.PhysicalCount) error
	CountsInPeriod(ctx context.Context, from, to time.Time) ([]domain.PhysicalCount, error)
}

// VarianceService turns physical counts into variance reports, caching the
// finished report per period.
type VarianceService struct {
	store    ledger.Store
	detector *variance.Detector
	history  variance.HistoryRecorder
	cache    cache.VarianceReportCache
	counts   CountSource
	now      func() time.Time
}

func NewVarianceService(store ledger.Store, detector *variance.Detector, history variance.HistoryRecorder, cacheImpl cache.VarianceReportCache, counts CountSource, now func() time.Time) *VarianceService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopVarianceReportCache()
	}
	if now == nil {
		now = time.Now
	}
	return &VarianceService{
		store:    store,
		detector: detector,
		history:  history,
		cache:    cacheImpl,
		counts:   counts,
		now:      now,
	}
}

// AnalyzeCount produces the variance record for a single counted item.
func (s *VarianceService) AnalyzeCount(ctx context.Context, count domain.PhysicalCount, period domain.ReportPeriod) (domain.VarianceRecord, error) {
	item, err := s.store.GetItem(ctx, count.ItemID)
	if err != nil {
		return domain.VarianceRecord{}, err
	}

	opening, err := s.store.StockAt(ctx, count.ItemID, period.Start)
	if err != nil {
		return domain.VarianceRecord{}, err
	}

	entries, err := s.store.GetHistory(ctx, count.ItemID, period.Start, period.End)
	if err != nil {
		return domain.VarianceRecord{}, err
	}

	return s.detector.Analyze(item, count, entries, opening), nil
}

// BuildReport analyzes all counts for the period and aggregates them.
// Inline counts are persisted through the count source; a request without
// counts falls back to the stored counts for the period. The finished
// report feeds the per-item variance history so the next report sees trend
// movement.
func (s *VarianceService) BuildReport(ctx context.Context, period domain.ReportPeriod, counts []domain.PhysicalCount) (domain.VarianceReport, error) {
	if report, ok, err := s.cache.Get(ctx, period); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("variance: cache get report failed")
	}

	if len(counts) > 0 {
		if s.counts != nil {
			if err := s.counts.SaveCounts(ctx, counts); err != nil {
				log.Warn().Err(err).Msg("variance: persisting counts failed")
			}
		}
	} else if s.counts != nil {
		stored, err := s.counts.CountsInPeriod(ctx, period.Start, period.End)
		if err != nil {
			return domain.VarianceReport{}, err
		}
		counts = stored
	}
	if len(counts) == 0 {
		return domain.VarianceReport{}, ErrNoCounts
	}

	records := make([]domain.VarianceRecord, 0, len(counts))
	for _, count := range counts {
		record, err := s.AnalyzeCount(ctx, count, period)
		if err != nil {
			log.Warn().Err(err).Str("item_id", count.ItemID).Msg("variance analysis failed, skipping count")
			continue
		}
		records = append(records, record)
	}

	report := variance.BuildReport(period, records, s.now())

	if s.history != nil {
		for _, record := range records {
			s.history.Observe(record.ItemID, record.QuantityVariancePercent)
		}
	}

	if err := s.cache.Set(ctx, period, report); err != nil {
		log.Warn().Err(err).Msg("variance: cache set report failed")
	}

	return report, nil
}

// Export renders a report in the tabular export format.
func (s *VarianceService) Export(report domain.VarianceReport) string {
	return variance.ExportTabular(report)
}
