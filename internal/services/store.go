package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/JonPark0/translate-bot/internal/domain"
	"github.com/JonPark0/translate-bot/internal/repo"
)

// GormMappingStore implements MappingStore on the SQLite-backed repo layer.
type GormMappingStore struct {
	DB *gorm.DB
}

var _ MappingStore = (*GormMappingStore)(nil)

func (s *GormMappingStore) Create(ctx context.Context, m *domain.MessageMapping) error {
	return repo.CreateMapping(ctx, s.DB, m)
}

func (s *GormMappingStore) Get(ctx context.Context, guildID, sourceMessageID string) (*domain.MessageMapping, error) {
	return repo.GetMapping(ctx, s.DB, guildID, sourceMessageID)
}

func (s *GormMappingStore) Update(ctx context.Context, guildID, sourceMessageID string, mirrors []domain.MessageMirror, snapshot string) (bool, error) {
	return repo.UpdateMapping(ctx, s.DB, guildID, sourceMessageID, mirrors, snapshot)
}

func (s *GormMappingStore) Delete(ctx context.Context, guildID, sourceMessageID string) (bool, error) {
	return repo.DeleteMapping(ctx, s.DB, guildID, sourceMessageID)
}

func (s *GormMappingStore) FindByMirror(ctx context.Context, guildID, languageCode, mirrorMessageID string) (*domain.MessageMapping, error) {
	return repo.FindMappingByMirror(ctx, s.DB, guildID, languageCode, mirrorMessageID)
}

// GormUsageStore implements UsageStore on the quota rows: one accumulator per
// calendar day and one per calendar month, both advanced atomically.
type GormUsageStore struct {
	DB *gorm.DB
}

var _ UsageStore = (*GormUsageStore)(nil)

func (s *GormUsageStore) RecordUsage(ctx context.Context, guildID string, at time.Time, costUSD float64) error {
	day := at.UTC().Format(dayKeyLayout)
	month := at.UTC().Format(monthKeyLayout)
	if err := repo.AddQuotaUsage(ctx, s.DB, guildID, domain.QuotaUsageDay, day, 1, costUSD); err != nil {
		return err
	}
	return repo.AddQuotaUsage(ctx, s.DB, guildID, domain.QuotaUsageMonth, month, 1, costUSD)
}

func (s *GormUsageStore) MonthCost(ctx context.Context, guildID, monthKey string) (float64, error) {
	return repo.MonthlyCost(ctx, s.DB, guildID, monthKey)
}
