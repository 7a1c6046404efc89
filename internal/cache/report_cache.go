package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prepflow/inventory-intel/internal/config"
	"github.com/prepflow/inventory-intel/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	varianceReportKeyPrefix = "variance:report"
	varianceScanBatchSize   = 100
)

// VarianceReportCache holds the latest variance report per report period so
// repeated dashboard pulls don't replay the whole ledger.
type VarianceReportCache interface {
	Get(ctx context.Context, period domain.ReportPeriod) (domain.VarianceReport, bool, error)
	Set(ctx context.Context, period domain.ReportPeriod, report domain.VarianceReport) error
	Invalidate(ctx context.Context, period domain.ReportPeriod) error
	InvalidateAll(ctx context.Context) error
}

type redisVarianceReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopVarianceReportCache struct{}

func NewVarianceReportCache(cfg config.CacheConfig) (VarianceReportCache, error) {
	if !cfg.Enabled {
		return &noopVarianceReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisVarianceReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopVarianceReportCache() VarianceReportCache {
	return &noopVarianceReportCache{}
}

func (c *redisVarianceReportCache) Get(ctx context.Context, period domain.ReportPeriod) (domain.VarianceReport, bool, error) {
	key := buildVarianceReportKey(period)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return domain.VarianceReport{}, false, nil
	}
	if err != nil {
		return domain.VarianceReport{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.VarianceReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return domain.VarianceReport{}, false, fmt.Errorf("decode variance report cache: %w", err)
	}

	return report, true, nil
}

func (c *redisVarianceReportCache) Set(ctx context.Context, period domain.ReportPeriod, report domain.VarianceReport) error {
	key := buildVarianceReportKey(period)
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode variance report cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisVarianceReportCache) Invalidate(ctx context.Context, period domain.ReportPeriod) error {
	return c.client.Del(ctx, buildVarianceReportKey(period)).Err()
}

func (c *redisVarianceReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, varianceReportKeyPrefix, varianceScanBatchSize)
}

func (n *noopVarianceReportCache) Get(ctx context.Context, period domain.ReportPeriod) (domain.VarianceReport, bool, error) {
	return domain.VarianceReport{}, false, nil
}

func (n *noopVarianceReportCache) Set(ctx context.Context, period domain.ReportPeriod, report domain.VarianceReport) error {
	return nil
}

func (n *noopVarianceReportCache) Invalidate(ctx context.Context, period domain.ReportPeriod) error {
	return nil
}

func (n *noopVarianceReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildVarianceReportKey(period domain.ReportPeriod) string {
	return fmt.Sprintf("%s:%s", varianceReportKeyPrefix, periodHash(period))
}

func periodHash(period domain.ReportPeriod) string {
	raw := fmt.Sprintf("start=%s|end=%s",
		period.Start.UTC().Format(time.RFC3339),
		period.End.UTC().Format(time.RFC3339))
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
