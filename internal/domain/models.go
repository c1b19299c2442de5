// Package domain defines the persistence models for guild configuration,
// channel topology, message mappings, and quota accounting. These types are
// mapped with GORM and form the core data layer of the translation bot.
package domain

import (
	"time"
)

// Feature identifies a guild-level feature toggle. The set is closed: only
// the constants below exist, and unknown values are never stored.
type Feature string

const (
	// FeatureTranslation enables channel-to-channel translation mirroring.
	FeatureTranslation Feature = "translation"
	// FeatureTTS is reserved for the text-to-speech feature (not implemented).
	FeatureTTS Feature = "tts"
	// FeatureMusic is reserved for the music feature (not implemented).
	FeatureMusic Feature = "music"
)

// GuildConfig holds the per-guild settings the bot operates under. One row
// per guild, keyed by the guild snowflake.
//
// Fields:
//   - GuildID: Discord guild snowflake, primary key.
//   - GuildName: last observed guild name (diagnostics only).
//   - APIKey: optional per-guild Gemini API key; when empty the process-wide
//     key from the environment is used.
//   - TranslationEnabled / TTSEnabled / MusicEnabled: closed feature-flag set.
//   - RatePerMinute / MaxDailyRequests: admission ceilings for the quota gate.
//   - MaxMonthlyCostUSD / CostAlertUSD: monthly spend ceiling and the
//     operator-alert threshold below it.
//   - Initialized: set once guild setup has completed.
type GuildConfig struct {
	GuildID   string `json:"guild_id"   gorm:"type:varchar(32);primaryKey"`
	GuildName string `json:"guild_name" gorm:"type:varchar(255);not null;default:''"`
	APIKey    string `json:"-"          gorm:"type:text;not null;default:''"`

	TranslationEnabled bool `json:"translation_enabled" gorm:"not null;default:false"`
	TTSEnabled         bool `json:"tts_enabled"         gorm:"not null;default:false"`
	MusicEnabled       bool `json:"music_enabled"       gorm:"not null;default:false"`

	RatePerMinute     int     `json:"rate_per_minute"      gorm:"not null;default:30"`
	MaxDailyRequests  int     `json:"max_daily_requests"   gorm:"not null;default:1000"`
	MaxMonthlyCostUSD float64 `json:"max_monthly_cost_usd" gorm:"not null;default:10"`
	CostAlertUSD      float64 `json:"cost_alert_usd"       gorm:"not null;default:8"`

	Initialized bool      `json:"initialized" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for GuildConfig.
func (GuildConfig) TableName() string { return "guild_configs" }

// FeatureEnabled reports whether the given feature is switched on.
func (g *GuildConfig) FeatureEnabled(f Feature) bool {
	switch f {
	case FeatureTranslation:
		return g.TranslationEnabled
	case FeatureTTS:
		return g.TTSEnabled
	case FeatureMusic:
		return g.MusicEnabled
	default:
		return false
	}
}

// ChannelLanguage is one row of a guild's channel topology: the binding of a
// language to the single channel that carries it. Each channel belongs to
// exactly one language and each language maps to at most one channel, both
// enforced by unique indexes.
type ChannelLanguage struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	GuildID      string    `json:"guild_id"      gorm:"type:varchar(32);not null;uniqueIndex:ux_guild_language,priority:1;uniqueIndex:ux_guild_channel,priority:1"`
	LanguageCode string    `json:"language_code" gorm:"type:varchar(8);not null;uniqueIndex:ux_guild_language,priority:2"`
	LanguageName string    `json:"language_name" gorm:"type:varchar(64);not null;default:''"`
	ChannelID    string    `json:"channel_id"    gorm:"type:varchar(32);not null;uniqueIndex:ux_guild_channel,priority:2"`
	Position     int       `json:"position"      gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for ChannelLanguage.
func (ChannelLanguage) TableName() string { return "channel_languages" }

// MessageMapping links one source message to the set of mirrors produced for
// it. Created once after the first successful fan-out, updated in place on
// every edit, and hard-deleted when the source message is deleted. Rows are
// not soft-deleted: a removed mapping must free its unique key immediately.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - GuildID / SourceMessageID: composite unique key.
//   - SourceChannelID: channel the source message was posted in.
//   - ContentSnapshot: last known source text, used to detect no-op edits.
//   - ReplyToMessageID: source-message id this message replies to, if any.
//   - Mirrors: one row per target language that received a mirror.
type MessageMapping struct {
	ID               string    `json:"id"                gorm:"type:char(36);primaryKey"`
	GuildID          string    `json:"guild_id"          gorm:"type:varchar(32);not null;uniqueIndex:ux_guild_source,priority:1"`
	SourceMessageID  string    `json:"source_message_id" gorm:"type:varchar(32);not null;uniqueIndex:ux_guild_source,priority:2"`
	SourceChannelID  string    `json:"source_channel_id" gorm:"type:varchar(32);not null"`
	ContentSnapshot  string    `json:"content_snapshot"  gorm:"type:text;not null;default:''"`
	ReplyToMessageID *string   `json:"reply_to_message_id,omitempty" gorm:"type:varchar(32)"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Mirrors are cascade-deleted with their mapping.
	Mirrors []MessageMirror `json:"mirrors" gorm:"foreignKey:MappingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for MessageMapping.
func (MessageMapping) TableName() string { return "message_mappings" }

// MirrorFor returns the mirror row for a language, if one exists.
func (m *MessageMapping) MirrorFor(languageCode string) (MessageMirror, bool) {
	for _, mr := range m.Mirrors {
		if mr.LanguageCode == languageCode {
			return mr, true
		}
	}
	return MessageMirror{}, false
}

// MessageMirror is a single mirrored copy of a source message in one target
// language's channel. The channel id is stored alongside the message id so
// delete propagation keeps working after topology changes.
type MessageMirror struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	MappingID    string    `json:"mapping_id"    gorm:"type:char(36);not null;uniqueIndex:ux_mapping_language,priority:1"`
	GuildID      string    `json:"guild_id"      gorm:"type:varchar(32);not null;index:idx_mirror_lookup,priority:1"`
	LanguageCode string    `json:"language_code" gorm:"type:varchar(8);not null;uniqueIndex:ux_mapping_language,priority:2;index:idx_mirror_lookup,priority:2"`
	ChannelID    string    `json:"channel_id"    gorm:"type:varchar(32);not null"`
	MessageID    string    `json:"message_id"    gorm:"type:varchar(32);not null;index:idx_mirror_lookup,priority:3"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for MessageMirror.
func (MessageMirror) TableName() string { return "message_mirrors" }

// QuotaUsageKind distinguishes the accounting period of a QuotaUsage row.
type QuotaUsageKind string

const (
	// QuotaUsageMonth rows accumulate per calendar month ("2026-08").
	QuotaUsageMonth QuotaUsageKind = "month"
	// QuotaUsageDay rows accumulate per calendar day ("2026-08-30").
	QuotaUsageDay QuotaUsageKind = "day"
)

// QuotaUsage is the durable record behind the quota gate: accumulated request
// counts and estimated API cost per guild and period. The in-memory sliding
// windows enforce the rate ceilings; these rows survive restarts and back the
// monthly cost ceiling and operator reporting.
type QuotaUsage struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	GuildID   string         `json:"guild_id"  gorm:"type:varchar(32);not null;uniqueIndex:ux_guild_kind_period,priority:1"`
	Kind      QuotaUsageKind `json:"kind"      gorm:"type:varchar(8);not null;uniqueIndex:ux_guild_kind_period,priority:2;check:kind IN ('month','day')"`
	Period    string         `json:"period"    gorm:"type:varchar(10);not null;uniqueIndex:ux_guild_kind_period,priority:3"`
	Requests  int64          `json:"requests"  gorm:"not null;default:0"`
	CostUSD   float64        `json:"cost_usd"  gorm:"not null;default:0"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the database table name for QuotaUsage.
func (QuotaUsage) TableName() string { return "quota_usage" }
