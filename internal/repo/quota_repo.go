// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for durable quota
// accounting rows.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JonPark0/translate-bot/internal/domain"
)

// AddQuotaUsage accumulates request count and cost onto the (guild, kind,
// period) row, creating it on first use. The increment happens in a single
// upsert so concurrent writers never lose updates.
func AddQuotaUsage(ctx context.Context, db *gorm.DB, guildID string, kind domain.QuotaUsageKind, period string, requests int64, costUSD float64) error {
	row := domain.QuotaUsage{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		Kind:      kind,
		Period:    period,
		Requests:  requests,
		CostUSD:   costUSD,
		UpdatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}, {Name: "kind"}, {Name: "period"}},
		DoUpdates: clause.Assignments(map[string]any{
			"requests":   gorm.Expr("requests + ?", requests),
			"cost_usd":   gorm.Expr("cost_usd + ?", costUSD),
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
}

// GetQuotaUsage fetches one accounting row. Returns (nil, nil) when the
// period has no recorded usage.
func GetQuotaUsage(ctx context.Context, db *gorm.DB, guildID string, kind domain.QuotaUsageKind, period string) (*domain.QuotaUsage, error) {
	var row domain.QuotaUsage
	err := db.WithContext(ctx).
		Where("guild_id = ? AND kind = ? AND period = ?", guildID, kind, period).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MonthlyCost returns the accumulated cost for a month key ("2026-08"),
// zero when nothing has been recorded.
func MonthlyCost(ctx context.Context, db *gorm.DB, guildID, monthKey string) (float64, error) {
	row, err := GetQuotaUsage(ctx, db, guildID, domain.QuotaUsageMonth, monthKey)
	if err != nil || row == nil {
		return 0, err
	}
	return row.CostUSD, nil
}
