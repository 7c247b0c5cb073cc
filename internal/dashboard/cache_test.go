package dashboard

import (
	"context"
	"testing"
	"time"

	"admissions_crm_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, 5*time.Minute, logger.New("test")), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, FilterWeek); ok {
		t.Fatal("expected miss on empty cache")
	}

	stats := Stats{
		TotalLeads:        10,
		ConvertedLeads:    3,
		ConversionRate:    0.3,
		StageDistribution: map[string]int{"NEW": 7, "PAID": 3},
		DailyTrend:        []DailyCount{{Date: "2026-03-01", Count: 10}},
		Filter:            FilterWeek,
	}
	cache.Set(ctx, FilterWeek, stats)

	got, ok := cache.Get(ctx, FilterWeek)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.TotalLeads != 10 || got.StageDistribution["NEW"] != 7 {
		t.Fatalf("got %+v", got)
	}
	if len(got.DailyTrend) != 1 || got.DailyTrend[0].Date != "2026-03-01" {
		t.Fatalf("trend = %+v", got.DailyTrend)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, FilterAll, Stats{TotalLeads: 1})
	mr.FastForward(6 * time.Minute)

	if _, ok := cache.Get(ctx, FilterAll); ok {
		t.Fatal("expected expiry after TTL")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, FilterWeek, Stats{TotalLeads: 1})
	cache.Set(ctx, FilterMonth, Stats{TotalLeads: 2})
	cache.Set(ctx, FilterAll, Stats{TotalLeads: 3})

	cache.Invalidate(ctx)

	for _, filter := range []string{FilterWeek, FilterMonth, FilterAll} {
		if _, ok := cache.Get(ctx, filter); ok {
			t.Fatalf("expected %s to be invalidated", filter)
		}
	}
}

func TestCacheDisabledWithoutClient(t *testing.T) {
	cache := NewCache(nil, time.Minute, logger.New("test"))
	ctx := context.Background()

	cache.Set(ctx, FilterAll, Stats{TotalLeads: 1})
	if _, ok := cache.Get(ctx, FilterAll); ok {
		t.Fatal("nil client must always miss")
	}
	cache.Invalidate(ctx)
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	cache, mr := newTestCache(t)

	mr.Set(cacheKeyPrefix+FilterAll, "{not json")
	if _, ok := cache.Get(context.Background(), FilterAll); ok {
		t.Fatal("corrupt entry must read as a miss")
	}
}
