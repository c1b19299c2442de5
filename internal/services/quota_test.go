package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeUsageStore records persisted usage and serves a seeded month cost.
type fakeUsageStore struct {
	monthCost map[string]float64
	recorded  int
	failWith  error
}

func (f *fakeUsageStore) RecordUsage(ctx context.Context, guildID string, at time.Time, costUSD float64) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.recorded++
	return nil
}

func (f *fakeUsageStore) MonthCost(ctx context.Context, guildID, monthKey string) (float64, error) {
	return f.monthCost[monthKey], nil
}

func newTestGate(t *testing.T, cfg GateConfig, store UsageStore, start time.Time) (*Gate, *time.Time) {
	t.Helper()
	now := start
	g := NewGate(context.Background(), "g1", cfg, store, zerolog.Nop())
	g.now = func() time.Time { return now }
	// Reprime the month key under the fake clock.
	g.monthKey = now.UTC().Format("2006-01")
	return g, &now
}

func TestGateMinuteCeiling(t *testing.T) {
	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	g, now := newTestGate(t, GateConfig{PerMinute: 3, PerDay: 100, MaxMonthlyCostUSD: 10}, nil, start)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !g.TryAcquire(ctx) {
			t.Fatalf("acquire %d should pass", i)
		}
	}
	if g.TryAcquire(ctx) {
		t.Fatalf("4th acquire should be denied")
	}

	// The window slides: a minute later the oldest entries expire.
	*now = start.Add(61 * time.Second)
	if !g.TryAcquire(ctx) {
		t.Fatalf("acquire after window slide should pass")
	}
}

func TestGateDailyCeiling(t *testing.T) {
	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	g, now := newTestGate(t, GateConfig{PerDay: 2, MaxMonthlyCostUSD: 10}, nil, start)
	ctx := context.Background()

	if !g.TryAcquire(ctx) || !g.TryAcquire(ctx) {
		t.Fatalf("first two acquires should pass")
	}
	if g.TryAcquire(ctx) {
		t.Fatalf("3rd acquire should hit the daily ceiling")
	}

	// A denial mutates nothing: the windows still hold exactly two entries.
	snap := g.Snapshot()
	if snap.RequestsToday != 2 {
		t.Fatalf("denied acquire consumed quota: %d", snap.RequestsToday)
	}

	*now = start.Add(25 * time.Hour)
	if !g.TryAcquire(ctx) {
		t.Fatalf("acquire next day should pass")
	}
}

func TestGateMonthlyCostCeiling(t *testing.T) {
	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	g, now := newTestGate(t, GateConfig{PerMinute: 100, PerDay: 100, MaxMonthlyCostUSD: 0.002}, nil, start)
	ctx := context.Background()

	if !g.TryAcquire(ctx) {
		t.Fatalf("first acquire should pass")
	}
	g.RecordCost(ctx, 0.001)
	if !g.TryAcquire(ctx) {
		t.Fatalf("below ceiling should pass")
	}
	g.RecordCost(ctx, 0.001)
	if g.TryAcquire(ctx) {
		t.Fatalf("at ceiling should be denied")
	}

	// New calendar month resets the accumulated cost.
	*now = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if !g.TryAcquire(ctx) {
		t.Fatalf("acquire in new month should pass")
	}
}

func TestGatePrimesMonthCostFromStore(t *testing.T) {
	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := &fakeUsageStore{monthCost: map[string]float64{
		start.Format("2006-01"): 10.0,
	}}
	g := NewGate(context.Background(), "g1", GateConfig{PerMinute: 10, PerDay: 10, MaxMonthlyCostUSD: 10}, store, zerolog.Nop())
	g.now = func() time.Time { return start }

	// A restarted process keeps honoring spend already recorded this month.
	if g.TryAcquire(context.Background()) {
		t.Fatalf("acquire should be denied from persisted month cost")
	}
}

func TestGateRecordCostPersists(t *testing.T) {
	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := &fakeUsageStore{monthCost: map[string]float64{}}
	g, _ := newTestGate(t, GateConfig{PerMinute: 10, PerDay: 10, MaxMonthlyCostUSD: 10}, store, start)

	g.RecordCost(context.Background(), 0.001)
	g.RecordCost(context.Background(), 0.001)
	if store.recorded != 2 {
		t.Fatalf("expected 2 persisted records, got %d", store.recorded)
	}
}

func TestGateRecordCostSurvivesStoreFailure(t *testing.T) {
	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := &fakeUsageStore{monthCost: map[string]float64{}, failWith: fmt.Errorf("disk full")}
	g, _ := newTestGate(t, GateConfig{PerMinute: 10, PerDay: 10, MaxMonthlyCostUSD: 10}, store, start)

	// Must not panic or propagate; in-memory accounting still advances.
	g.RecordCost(context.Background(), 0.5)
	if snap := g.Snapshot(); snap.MonthCostUSD != 0.5 {
		t.Fatalf("month cost = %f, want 0.5", snap.MonthCostUSD)
	}
}

func TestGateCostAlertFiresOnce(t *testing.T) {
	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	g, _ := newTestGate(t, GateConfig{PerMinute: 10, PerDay: 10, MaxMonthlyCostUSD: 10, CostAlertUSD: 8}, nil, start)
	ctx := context.Background()

	g.RecordCost(ctx, 7.9)
	if g.Snapshot().CostAlertIssued {
		t.Fatalf("alert should not fire below threshold")
	}
	g.RecordCost(ctx, 0.2)
	if !g.Snapshot().CostAlertIssued {
		t.Fatalf("alert should fire at threshold")
	}
	g.RecordCost(ctx, 0.2)
	if !g.Snapshot().CostAlertIssued {
		t.Fatalf("alert latch should stay set")
	}
}

func TestGateSnapshotRollsAcrossMonthBoundary(t *testing.T) {
	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := &fakeUsageStore{monthCost: map[string]float64{"2026-09": 1.25}}
	g, now := newTestGate(t, GateConfig{PerMinute: 10, PerDay: 10, MaxMonthlyCostUSD: 10, CostAlertUSD: 3}, store, start)
	ctx := context.Background()

	g.RecordCost(ctx, 4.0)
	snap := g.Snapshot()
	if snap.MonthCostUSD != 4.0 || !snap.CostAlertIssued {
		t.Fatalf("august snapshot = %+v", snap)
	}

	// A snapshot taken after the month turned reports the fresh month even
	// when no acquisition has run yet.
	*now = time.Date(2026, 9, 1, 0, 30, 0, 0, time.UTC)
	snap = g.Snapshot()
	if snap.MonthCostUSD != 0 {
		t.Fatalf("september snapshot still shows august cost: %f", snap.MonthCostUSD)
	}
	if snap.CostAlertIssued {
		t.Fatalf("alert state must reset with the month")
	}

	// The display-only roll must not block the durable reload: the next
	// acquisition still picks up September's persisted remainder.
	if !g.TryAcquire(ctx) {
		t.Fatalf("september acquire should pass")
	}
	if snap = g.Snapshot(); snap.MonthCostUSD != 1.25 {
		t.Fatalf("persisted september cost not reloaded: %f", snap.MonthCostUSD)
	}
}
