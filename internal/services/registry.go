package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/JonPark0/translate-bot/internal/domain"
	"github.com/JonPark0/translate-bot/internal/repo"
)

// TranslatorFactory builds a Translator for one API key. The production
// factory wraps the Gemini client; tests substitute fakes.
type TranslatorFactory func(ctx context.Context, apiKey string) (Translator, error)

// Registry hands out the per-guild collaborators of a fan-out: topology,
// translator, and quota gate, all keyed by guild id. Topology is read fresh
// from the database on every event so channel reconfiguration takes effect
// immediately; translators and gates are cached because they carry state (an
// API client connection, the sliding quota windows). Evict drops a guild's
// cached state when the bot leaves the guild.
type Registry struct {
	db            *gorm.DB
	defaultAPIKey string
	gateDefaults  GateConfig
	newTranslator TranslatorFactory
	log           zerolog.Logger

	mu          sync.Mutex
	gates       map[string]*Gate
	translators map[string]*translatorEntry
}

type translatorEntry struct {
	apiKey     string
	translator Translator
}

// NewRegistry constructs a Registry backed by db. defaultAPIKey is used for
// guilds without their own key; gateDefaults applies to guilds without a
// stored configuration.
func NewRegistry(db *gorm.DB, defaultAPIKey string, gateDefaults GateConfig, factory TranslatorFactory, log zerolog.Logger) *Registry {
	return &Registry{
		db:            db,
		defaultAPIKey: defaultAPIKey,
		gateDefaults:  gateDefaults,
		newTranslator: factory,
		log:           log.With().Str("component", "registry").Logger(),
		gates:         make(map[string]*Gate),
		translators:   make(map[string]*translatorEntry),
	}
}

// CurrentTopology implements TopologyProvider. Rows with a language code that
// does not parse as a BCP 47 tag are skipped with a warning rather than
// poisoning the whole topology.
func (r *Registry) CurrentTopology(ctx context.Context, guildID string) (Topology, error) {
	rows, err := repo.ListChannelLanguages(ctx, r.db, guildID)
	if err != nil {
		return Topology{}, fmt.Errorf("list channel languages: %w", err)
	}
	topo := Topology{GuildID: guildID, Channels: make([]LanguageChannel, 0, len(rows))}
	for _, row := range rows {
		if _, err := language.Parse(row.LanguageCode); err != nil {
			r.log.Warn().
				Str("guild_id", guildID).
				Str("channel_id", row.ChannelID).
				Str("language", row.LanguageCode).
				Msg("skipping channel with invalid language code")
			continue
		}
		topo.Channels = append(topo.Channels, LanguageChannel{
			Language:  row.LanguageCode,
			ChannelID: row.ChannelID,
		})
	}
	return topo, nil
}

// Translator returns the guild's translator, building it on first use. A
// guild-specific API key takes precedence over the process default; the
// cached instance is rebuilt when the effective key changes. ErrNoTranslator
// is returned when neither key is set.
func (r *Registry) Translator(ctx context.Context, guildID string) (Translator, error) {
	key, err := r.effectiveAPIKey(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrNoTranslator
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.translators[guildID]; ok && entry.apiKey == key {
		return entry.translator, nil
	}
	translator, err := r.newTranslator(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("build translator: %w", err)
	}
	r.translators[guildID] = &translatorEntry{apiKey: key, translator: translator}
	return translator, nil
}

// Gate returns the guild's quota gate, building it from the stored guild
// configuration (or the process defaults) on first use. The gate is cached
// for the guild's lifetime: its sliding windows live in memory.
func (r *Registry) Gate(ctx context.Context, guildID string) (AdmissionGate, error) {
	r.mu.Lock()
	if g, ok := r.gates[guildID]; ok {
		r.mu.Unlock()
		return g, nil
	}
	r.mu.Unlock()

	cfg := r.gateDefaults
	gc, err := repo.GetGuildConfig(ctx, r.db, guildID)
	if err != nil {
		return nil, fmt.Errorf("load guild config: %w", err)
	}
	if gc != nil {
		cfg = GateConfig{
			PerMinute:         gc.RatePerMinute,
			PerDay:            gc.MaxDailyRequests,
			MaxMonthlyCostUSD: gc.MaxMonthlyCostUSD,
			CostAlertUSD:      gc.CostAlertUSD,
		}
	}

	gate := NewGate(ctx, guildID, cfg, &GormUsageStore{DB: r.db}, r.log)

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have built the gate while we read the config; the
	// first one in wins so the windows stay in one place.
	if g, ok := r.gates[guildID]; ok {
		return g, nil
	}
	r.gates[guildID] = gate
	return gate, nil
}

// Snapshot exposes the current usage of a guild's gate, if one is active.
func (r *Registry) Snapshot(guildID string) (UsageSnapshot, bool) {
	r.mu.Lock()
	g, ok := r.gates[guildID]
	r.mu.Unlock()
	if !ok {
		return UsageSnapshot{}, false
	}
	return g.Snapshot(), true
}

// Evict drops all cached state for a guild. Called when the bot is removed
// from the guild; the next event for that guild rebuilds from the database.
func (r *Registry) Evict(guildID string) {
	r.mu.Lock()
	delete(r.gates, guildID)
	delete(r.translators, guildID)
	r.mu.Unlock()
}

// effectiveAPIKey resolves the API key for a guild: its own stored key if
// present, otherwise the process default.
func (r *Registry) effectiveAPIKey(ctx context.Context, guildID string) (string, error) {
	gc, err := repo.GetGuildConfig(ctx, r.db, guildID)
	if err != nil {
		return "", fmt.Errorf("load guild config: %w", err)
	}
	if gc != nil && gc.APIKey != "" {
		return gc.APIKey, nil
	}
	return r.defaultAPIKey, nil
}

// TranslationEnabled reports whether the translation feature is on for the
// guild. Guilds without a stored configuration default to enabled.
func (r *Registry) TranslationEnabled(ctx context.Context, guildID string) (bool, error) {
	gc, err := repo.GetGuildConfig(ctx, r.db, guildID)
	if err != nil {
		return false, fmt.Errorf("load guild config: %w", err)
	}
	if gc == nil {
		return true, nil
	}
	return gc.FeatureEnabled(domain.FeatureTranslation), nil
}
