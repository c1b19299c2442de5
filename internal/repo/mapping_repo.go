// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for message
// mappings and their mirrors.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JonPark0/translate-bot/internal/domain"
)

// ErrDuplicateMapping is returned by CreateMapping when a mapping already
// exists for the same (guild, source message) pair.
var ErrDuplicateMapping = errors.New("message mapping already exists")

// CreateMapping inserts a mapping and its mirror rows in one transaction.
// Missing row ids and timestamps are filled in. A unique-key violation on
// (guild_id, source_message_id) is reported as ErrDuplicateMapping.
func CreateMapping(ctx context.Context, db *gorm.DB, m *domain.MessageMapping) error {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	for i := range m.Mirrors {
		if m.Mirrors[i].ID == "" {
			m.Mirrors[i].ID = uuid.NewString()
		}
		m.Mirrors[i].MappingID = m.ID
		m.Mirrors[i].GuildID = m.GuildID
		if m.Mirrors[i].CreatedAt.IsZero() {
			m.Mirrors[i].CreatedAt = now
		}
	}

	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMapping
		}
		return err
	}
	return nil
}

// GetMapping fetches a mapping with its mirrors. Returns (nil, nil) when no
// mapping exists for the pair.
func GetMapping(ctx context.Context, db *gorm.DB, guildID, sourceMessageID string) (*domain.MessageMapping, error) {
	var m domain.MessageMapping
	err := db.WithContext(ctx).
		Preload("Mirrors").
		Where("guild_id = ? AND source_message_id = ?", guildID, sourceMessageID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMapping atomically replaces the mirror set and content snapshot of an
// existing mapping. Returns false when no mapping exists for the pair; readers
// never observe a half-replaced mirror set because the swap happens inside a
// single transaction.
func UpdateMapping(ctx context.Context, db *gorm.DB, guildID, sourceMessageID string, mirrors []domain.MessageMirror, snapshot string) (bool, error) {
	found := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m domain.MessageMapping
		err := tx.Where("guild_id = ? AND source_message_id = ?", guildID, sourceMessageID).First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		now := time.Now().UTC()
		if err := tx.Model(&domain.MessageMapping{}).
			Where("id = ?", m.ID).
			Updates(map[string]any{"content_snapshot": snapshot, "updated_at": now}).Error; err != nil {
			return err
		}
		if err := tx.Where("mapping_id = ?", m.ID).Delete(&domain.MessageMirror{}).Error; err != nil {
			return err
		}
		for i := range mirrors {
			row := mirrors[i]
			if row.ID == "" {
				row.ID = uuid.NewString()
			}
			row.MappingID = m.ID
			row.GuildID = guildID
			if row.CreatedAt.IsZero() {
				row.CreatedAt = now
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return found, err
}

// DeleteMapping removes a mapping and its mirrors. Mirrors are deleted
// explicitly rather than through the FK cascade, which depends on the
// foreign_keys pragma being set on every pooled connection. Deleting a
// nonexistent mapping is not an error and returns false.
func DeleteMapping(ctx context.Context, db *gorm.DB, guildID, sourceMessageID string) (bool, error) {
	deleted := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m domain.MessageMapping
		err := tx.Where("guild_id = ? AND source_message_id = ?", guildID, sourceMessageID).First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("mapping_id = ?", m.ID).Delete(&domain.MessageMirror{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", m.ID).Delete(&domain.MessageMapping{}).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// FindMappingByMirror resolves the mapping that owns a given mirror message.
// Used for reply-chain resolution when a reply targets a mirrored message
// rather than a source message. Returns (nil, nil) when the mirror is unknown.
func FindMappingByMirror(ctx context.Context, db *gorm.DB, guildID, languageCode, mirrorMessageID string) (*domain.MessageMapping, error) {
	var mirror domain.MessageMirror
	err := db.WithContext(ctx).
		Where("guild_id = ? AND language_code = ? AND message_id = ?", guildID, languageCode, mirrorMessageID).
		First(&mirror).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var m domain.MessageMapping
	if err := db.WithContext(ctx).Preload("Mirrors").Where("id = ?", mirror.MappingID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// CountMappings uses a raw COUNT so a missing table surfaces as an error.
func CountMappings(ctx context.Context, db *gorm.DB, guildID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM message_mappings WHERE guild_id = ?", guildID).Scan(&total).Error
	return total, err
}

// PruneMappingsBefore deletes mappings created before the cutoff and returns
// how many were removed. Old mappings only matter while their source messages
// can still plausibly be edited or deleted.
func PruneMappingsBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	var pruned int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("mapping_id IN (?)", tx.Model(&domain.MessageMapping{}).Select("id").Where("created_at < ?", cutoff)).
			Delete(&domain.MessageMirror{}).Error; err != nil {
			return err
		}
		res := tx.Where("created_at < ?", cutoff).Delete(&domain.MessageMapping{})
		pruned = res.RowsAffected
		return res.Error
	})
	return pruned, err
}

// isUniqueViolation detects unique-constraint failures across the GORM error
// translator and the raw sqlite error text.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
