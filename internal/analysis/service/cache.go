package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"revenue_radar_backend/internal/engine/domain"
	"revenue_radar_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReportCache stores full reports in Redis keyed by organization. Reports
// are invalidated whenever a new snapshot lands, so a cached report is never
// older than the data it was computed from.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewReportCache creates a cache. rdb may be nil to disable caching.
func NewReportCache(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *ReportCache {
	return &ReportCache{rdb: rdb, ttl: ttl, log: log}
}

func reportKey(orgID uuid.UUID) string {
	return fmt.Sprintf("report:full:%s", orgID)
}

// Get returns the cached report for the org, if any. Cache failures read as
// misses; the analysis always has the authoritative path.
func (c *ReportCache) Get(ctx context.Context, orgID uuid.UUID) (domain.FullReport, bool) {
	if c == nil || c.rdb == nil {
		return domain.FullReport{}, false
	}

	raw, err := c.rdb.Get(ctx, reportKey(orgID)).Bytes()
	if err != nil {
		if err != redis.Nil && c.log != nil {
			c.log.Warn("report cache read failed", "error", err)
		}
		return domain.FullReport{}, false
	}

	var report domain.FullReport
	if err := json.Unmarshal(raw, &report); err != nil {
		if c.log != nil {
			c.log.Warn("report cache decode failed", "error", err)
		}
		return domain.FullReport{}, false
	}
	return report, true
}

// Set stores a report for the org.
func (c *ReportCache) Set(ctx context.Context, orgID uuid.UUID, report domain.FullReport) {
	if c == nil || c.rdb == nil {
		return
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, reportKey(orgID), raw, c.ttl).Err(); err != nil && c.log != nil {
		c.log.Warn("report cache write failed", "error", err)
	}
}

// Invalidate drops the cached report for the org.
func (c *ReportCache) Invalidate(ctx context.Context, orgID uuid.UUID) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, reportKey(orgID)).Err(); err != nil && c.log != nil {
		c.log.Warn("report cache invalidation failed", "error", err)
	}
}
