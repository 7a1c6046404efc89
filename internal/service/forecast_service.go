package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/prepflow/inventory-intel/internal/forecast"
	"github.com/prepflow/inventory-intel/internal/ledger"
	"github.com/prepflow/inventory-intel/internal/parlevel"
	"github.com/prepflow/inventory-intel/internal/pipeline"
	"github.com/prepflow/inventory-intel/internal/waste"
)

const (
	defaultLookback = 30 * 24 * time.Hour
	batchWorkers    = 4
)

// ForecastService composes the demand engine, par-level optimizer and waste
// predictor into the full per-item forecast.
type ForecastService struct {
	store     ledger.Store
	engine    *forecast.Engine
	optimizer *parlevel.Optimizer
	predictor *waste.Predictor
	runner    *pipeline.Runner
	lookback  time.Duration
	now       func() time.Time
}

func NewForecastService(store ledger.Store, engine *forecast.Engine, optimizer *parlevel.Optimizer, predictor *waste.Predictor, lookback time.Duration, now func() time.Time) *ForecastService {
	if lookback <= 0 {
		lookback = defaultLookback
	}
	if now == nil {
		now = time.Now
	}
	return &ForecastService{
		store:     store,
		engine:    engine,
		optimizer: optimizer,
		predictor: predictor,
		runner:    pipeline.NewRunner(batchWorkers),
		lookback:  lookback,
		now:       now,
	}
}

// ForecastItem produces the full demand forecast for one item.
func (s *ForecastService) ForecastItem(ctx context.Context, itemID string, in forecast.Input) (domain.DemandForecast, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return domain.DemandForecast{}, err
	}

	now := s.now()
	history, err := s.store.GetHistory(ctx, itemID, now.Add(-s.lookback), now)
	if err != nil {
		return domain.DemandForecast{}, err
	}

	result := s.engine.Predict(item, history, in)
	volatility := s.engine.DemandVolatility(history, now)

	recommendedPar := s.optimizer.Recommend(ctx, item, result.Demand, result.Confidence, volatility)
	wasteReduction := s.predictor.ExpectedReduction(item, recommendedPar)

	return domain.DemandForecast{
		ItemID:                 item.ID,
		HorizonHours:           result.HorizonHours,
		Demand:                 result.Demand,
		Confidence:             result.Confidence,
		RecommendedPar:         recommendedPar,
		ExpectedWasteReduction: wasteReduction,
		CostOptimization:       result.CostOptimization,
		StockoutRisk:           result.StockoutRisk,
		GeneratedAt:            now,
	}, nil
}

// ForecastAll forecasts every known item. Per-item failures are logged and
// skipped so one bad item does not sink the batch.
func (s *ForecastService) ForecastAll(ctx context.Context, in forecast.Input) ([]domain.DemandForecast, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.DemandForecast, len(items))
	jobs := make([]pipeline.Job, len(items))
	for i, item := range items {
		i, item := i, item
		jobs[i] = func(ctx context.Context) error {
			fc, err := s.ForecastItem(ctx, item.ID, in)
			if err != nil {
				log.Warn().Err(err).Str("item_id", item.ID).Msg("forecast failed, skipping item")
				return nil
			}
			results[i] = &fc
			return nil
		}
	}
	if err := s.runner.Run(ctx, jobs); err != nil {
		return nil, err
	}

	forecasts := make([]domain.DemandForecast, 0, len(items))
	for _, fc := range results {
		if fc != nil {
			forecasts = append(forecasts, *fc)
		}
	}
	return forecasts, nil
}

// PredictWaste estimates upcoming spoilage for one item, feeding the waste
// predictor with the item's demand context.
func (s *ForecastService) PredictWaste(ctx context.Context, itemID string, horizonHours float64, in forecast.Input) (domain.WastePrediction, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return domain.WastePrediction{}, err
	}

	now := s.now()
	history, err := s.store.GetHistory(ctx, itemID, now.Add(-s.lookback), now)
	if err != nil {
		return domain.WastePrediction{}, err
	}

	if in.HorizonHours <= 0 {
		in.HorizonHours = horizonHours
	}
	result := s.engine.Predict(item, history, in)

	return s.predictor.Predict(item, horizonHours, waste.DemandContext{
		Demand:           result.Demand,
		Confidence:       result.Confidence,
		TransactionCount: s.engine.SaleCount(history),
		Volatility:       s.engine.DemandVolatility(history, now),
	}), nil
}

// PredictWasteAll runs the waste predictor across the whole inventory.
func (s *ForecastService) PredictWasteAll(ctx context.Context, horizonHours float64, in forecast.Input) ([]domain.WastePrediction, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.WastePrediction, len(items))
	jobs := make([]pipeline.Job, len(items))
	for i, item := range items {
		i, item := i, item
		jobs[i] = func(ctx context.Context) error {
			prediction, err := s.PredictWaste(ctx, item.ID, horizonHours, in)
			if err != nil {
				log.Warn().Err(err).Str("item_id", item.ID).Msg("waste prediction failed, skipping item")
				return nil
			}
			results[i] = &prediction
			return nil
		}
	}
	if err := s.runner.Run(ctx, jobs); err != nil {
		return nil, err
	}

	predictions := make([]domain.WastePrediction, 0, len(items))
	for _, p := range results {
		if p != nil {
			predictions = append(predictions, *p)
		}
	}
	return predictions, nil
}
