package service

import (
	"context"
	"testing"
	"time"

	"revenue_radar_backend/internal/engine/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewReportCache(rdb, time.Minute, nil), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	orgID := uuid.New()

	report := domain.FullReport{
		GeneratedAt: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		HealthScore: 72,
	}

	if _, ok := cache.Get(ctx, orgID); ok {
		t.Fatal("expected miss before set")
	}

	cache.Set(ctx, orgID, report)

	got, ok := cache.Get(ctx, orgID)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got.HealthScore != 72 {
		t.Fatalf("healthScore = %d, want 72", got.HealthScore)
	}
	if !got.GeneratedAt.Equal(report.GeneratedAt) {
		t.Fatalf("generatedAt = %v", got.GeneratedAt)
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	orgID := uuid.New()

	cache.Set(ctx, orgID, domain.FullReport{HealthScore: 50})
	cache.Invalidate(ctx, orgID)

	if _, ok := cache.Get(ctx, orgID); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func TestCacheScopedPerOrg(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	orgA, orgB := uuid.New(), uuid.New()

	cache.Set(ctx, orgA, domain.FullReport{HealthScore: 10})

	if _, ok := cache.Get(ctx, orgB); ok {
		t.Fatal("org B must not see org A's report")
	}
}

func TestCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	orgID := uuid.New()

	cache.Set(ctx, orgID, domain.FullReport{HealthScore: 90})
	mr.FastForward(2 * time.Minute)

	if _, ok := cache.Get(ctx, orgID); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestNilClientDisablesCache(t *testing.T) {
	cache := NewReportCache(nil, time.Minute, nil)
	ctx := context.Background()
	orgID := uuid.New()

	cache.Set(ctx, orgID, domain.FullReport{HealthScore: 1})
	if _, ok := cache.Get(ctx, orgID); ok {
		t.Fatal("nil client must behave as a permanent miss")
	}
	cache.Invalidate(ctx, orgID)
}
