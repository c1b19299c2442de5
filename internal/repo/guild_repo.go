// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for guild
// configuration and channel topology rows.
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

// GetGuildConfig fetches the configuration for a guild. Returns (nil, nil)
// when the guild has never been configured.
func GetGuildConfig(ctx context.Context, db *gorm.DB, guildID string) (*domain.GuildConfig, error) {
	var cfg domain.GuildConfig
	err := db.WithContext(ctx).Where("guild_id = ?", guildID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpsertGuildConfig inserts or fully replaces a guild's configuration row.
func UpsertGuildConfig(ctx context.Context, db *gorm.DB, cfg *domain.GuildConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = cfg.UpdatedAt
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		UpdateAll: true,
	}).Create(cfg).Error
}

// ListChannelLanguages returns the guild's topology rows ordered by position.
func ListChannelLanguages(ctx context.Context, db *gorm.DB, guildID string) ([]domain.ChannelLanguage, error) {
	var out []domain.ChannelLanguage
	err := db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("position ASC, language_code ASC").
		Find(&out).Error
	return out, err
}

// ReplaceChannelLanguages swaps a guild's entire topology in one transaction.
// Row ids and positions are assigned from slice order.
func ReplaceChannelLanguages(ctx context.Context, db *gorm.DB, guildID string, rows []domain.ChannelLanguage) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("guild_id = ?", guildID).Delete(&domain.ChannelLanguage{}).Error; err != nil {
			return err
		}
		for i := range rows {
			row := rows[i]
			if row.ID == "" {
				row.ID = uuid.NewString()
			}
			row.GuildID = guildID
			row.Position = i
			if row.CreatedAt.IsZero() {
				row.CreatedAt = now
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
