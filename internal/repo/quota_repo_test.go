package repo

import (
	"context"
	"math"
	"testing"

	"github.com/JonPark0/translate-bot/internal/domain"
)

func TestAddQuotaUsageAccumulates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := AddQuotaUsage(ctx, db, "g1", domain.QuotaUsageMonth, "2026-08", 1, 0.001); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	row, err := GetQuotaUsage(ctx, db, "g1", domain.QuotaUsageMonth, "2026-08")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row == nil {
		t.Fatalf("expected usage row")
	}
	if row.Requests != 3 {
		t.Fatalf("requests = %d, want 3", row.Requests)
	}
	if math.Abs(row.CostUSD-0.003) > 1e-9 {
		t.Fatalf("cost = %f, want 0.003", row.CostUSD)
	}
}

func TestQuotaUsagePeriodsAreIndependent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := AddQuotaUsage(ctx, db, "g1", domain.QuotaUsageDay, "2026-08-30", 5, 0.005); err != nil {
		t.Fatalf("add day: %v", err)
	}
	if err := AddQuotaUsage(ctx, db, "g1", domain.QuotaUsageMonth, "2026-08", 5, 0.005); err != nil {
		t.Fatalf("add month: %v", err)
	}
	if err := AddQuotaUsage(ctx, db, "g2", domain.QuotaUsageMonth, "2026-08", 1, 0.001); err != nil {
		t.Fatalf("add other guild: %v", err)
	}

	day, err := GetQuotaUsage(ctx, db, "g1", domain.QuotaUsageDay, "2026-08-30")
	if err != nil || day == nil {
		t.Fatalf("get day: %v %v", day, err)
	}
	if day.Requests != 5 {
		t.Fatalf("day requests = %d", day.Requests)
	}

	cost, err := MonthlyCost(ctx, db, "g1", "2026-08")
	if err != nil {
		t.Fatalf("monthly cost: %v", err)
	}
	if math.Abs(cost-0.005) > 1e-9 {
		t.Fatalf("monthly cost = %f", cost)
	}

	// Unrecorded period reads as zero.
	cost, err = MonthlyCost(ctx, db, "g1", "2026-07")
	if err != nil {
		t.Fatalf("monthly cost empty: %v", err)
	}
	if cost != 0 {
		t.Fatalf("expected zero cost, got %f", cost)
	}
}
