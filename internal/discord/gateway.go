package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/JonPark0/translate-bot/internal/domain"
	"github.com/JonPark0/translate-bot/internal/repo"
	"github.com/JonPark0/translate-bot/internal/services"
)

// Gateway owns the Discord session: it subscribes to message and guild
// lifecycle events and forwards them to the synchronizer. discordgo runs each
// handler in its own goroutine, so handlers call the synchronizer directly.
type Gateway struct {
	session  *discordgo.Session
	sync     *services.Synchronizer
	registry *services.Registry
	db       *gorm.DB
	log      zerolog.Logger

	botUserID string
}

// NewGateway builds the session with the intents this bot needs: guild
// metadata, guild messages, and message content. The synchronizer is attached
// separately via AttachSynchronizer because its sender needs the session this
// constructor creates.
func NewGateway(token string, registry *services.Registry, db *gorm.DB, log zerolog.Logger) (*Gateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	g := &Gateway{
		session:  session,
		registry: registry,
		db:       db,
		log:      log.With().Str("component", "gateway").Logger(),
	}
	session.AddHandler(g.handleReady)
	session.AddHandler(g.handleMessageCreate)
	session.AddHandler(g.handleMessageUpdate)
	session.AddHandler(g.handleMessageDelete)
	session.AddHandler(g.handleGuildCreate)
	session.AddHandler(g.handleGuildDelete)
	return g, nil
}

// Session exposes the underlying discordgo session for the REST sender.
func (g *Gateway) Session() *discordgo.Session {
	return g.session
}

// AttachSynchronizer wires the event handlers to the synchronizer. Must be
// called before Start.
func (g *Gateway) AttachSynchronizer(sync *services.Synchronizer) {
	g.sync = sync
}

// Start opens the gateway connection and blocks until ctx is cancelled.
func (g *Gateway) Start(ctx context.Context) error {
	if g.sync == nil {
		return fmt.Errorf("no synchronizer attached")
	}
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord connection: %w", err)
	}
	g.log.Info().Msg("gateway connected")
	<-ctx.Done()
	return g.session.Close()
}

func (g *Gateway) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	g.botUserID = r.User.ID
	g.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("bot ready")
}

func (g *Gateway) handleMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if !g.shouldProcess(m.Message) {
		return
	}
	ctx := context.Background()
	if !g.translationEnabled(ctx, m.GuildID) {
		return
	}
	if err := g.sync.HandleCreate(ctx, eventFromMessage(m.Message)); err != nil {
		g.log.Error().Err(err).
			Str("guild_id", m.GuildID).
			Str("message_id", m.ID).
			Msg("create fan-out failed")
	}
}

func (g *Gateway) handleMessageUpdate(_ *discordgo.Session, m *discordgo.MessageUpdate) {
	if !g.shouldProcess(m.Message) {
		return
	}
	// Discord emits content-less update events when it crawls link embeds;
	// those are not edits.
	if m.Content == "" {
		return
	}
	ctx := context.Background()
	if !g.translationEnabled(ctx, m.GuildID) {
		return
	}
	if err := g.sync.HandleEdit(ctx, eventFromMessage(m.Message)); err != nil {
		g.log.Error().Err(err).
			Str("guild_id", m.GuildID).
			Str("message_id", m.ID).
			Msg("edit fan-out failed")
	}
}

func (g *Gateway) handleMessageDelete(_ *discordgo.Session, m *discordgo.MessageDelete) {
	if m.GuildID == "" {
		return
	}
	ctx := context.Background()
	ev := services.DeleteEvent{
		GuildID:   m.GuildID,
		MessageID: m.ID,
		ChannelID: m.ChannelID,
	}
	if err := g.sync.HandleDelete(ctx, ev); err != nil {
		g.log.Error().Err(err).
			Str("guild_id", m.GuildID).
			Str("message_id", m.ID).
			Msg("delete sync failed")
	}
}

// handleGuildCreate records the guild on first contact. A guild seen for the
// first time gets a config row with translation enabled; a known guild only
// has its stored name refreshed.
func (g *Gateway) handleGuildCreate(_ *discordgo.Session, ev *discordgo.GuildCreate) {
	ctx := context.Background()
	cfg, err := repo.GetGuildConfig(ctx, g.db, ev.ID)
	if err != nil {
		g.log.Error().Err(err).Str("guild_id", ev.ID).Msg("failed to load guild config")
		return
	}
	if cfg == nil {
		cfg = &domain.GuildConfig{
			GuildID:            ev.ID,
			GuildName:          ev.Name,
			TranslationEnabled: true,
			RatePerMinute:      30,
			MaxDailyRequests:   1000,
			MaxMonthlyCostUSD:  10,
			CostAlertUSD:       8,
		}
	} else {
		cfg.GuildName = ev.Name
	}
	if err := repo.UpsertGuildConfig(ctx, g.db, cfg); err != nil {
		g.log.Error().Err(err).Str("guild_id", ev.ID).Msg("failed to upsert guild config")
		return
	}
	g.log.Info().Str("guild_id", ev.ID).Str("guild_name", ev.Name).Msg("guild registered")
}

// handleGuildDelete drops the guild's cached translator and quota gate.
func (g *Gateway) handleGuildDelete(_ *discordgo.Session, ev *discordgo.GuildDelete) {
	if ev.Unavailable {
		// Outage, not removal; keep state.
		return
	}
	g.registry.Evict(ev.ID)
	g.log.Info().Str("guild_id", ev.ID).Msg("guild removed, cache evicted")
}

// shouldProcess filters events the synchronizer should never see: DMs, bot
// authors (including this bot's own mirrors), and events without an author.
func (g *Gateway) shouldProcess(m *discordgo.Message) bool {
	if m == nil || m.GuildID == "" || m.Author == nil {
		return false
	}
	if m.Author.Bot || m.Author.ID == g.botUserID {
		return false
	}
	return true
}

func (g *Gateway) translationEnabled(ctx context.Context, guildID string) bool {
	enabled, err := g.registry.TranslationEnabled(ctx, guildID)
	if err != nil {
		g.log.Error().Err(err).Str("guild_id", guildID).Msg("failed to check translation feature")
		return false
	}
	return enabled
}

// eventFromMessage converts a gateway message to the synchronizer's event.
func eventFromMessage(m *discordgo.Message) services.MessageEvent {
	ev := services.MessageEvent{
		GuildID:     m.GuildID,
		MessageID:   m.ID,
		ChannelID:   m.ChannelID,
		AuthorID:    m.Author.ID,
		AuthorName:  m.Author.Username,
		Content:     m.Content,
		HasStickers: len(m.StickerItems) > 0,
	}
	ev.AuthorAvatarURL = m.Author.AvatarURL("")
	for _, st := range m.StickerItems {
		ev.StickerNames = append(ev.StickerNames, st.Name)
	}
	if m.MessageReference != nil {
		ev.ReplyToMessageID = m.MessageReference.MessageID
	}
	return ev
}
