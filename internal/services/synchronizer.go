// Package services – fan-out synchronizer
//
// This file implements the Synchronizer, the orchestrator that keeps mirrored
// messages consistent with their source. It consumes source-message lifecycle
// events (create, edit, delete), resolves the channel topology, passes the
// quota gate, requests translations concurrently, delivers mirrors through
// the channel sender, and writes through the mapping store.
//
// Concurrency model: events for one source message arrive serialized from the
// gateway, but within a single event the per-language translate and deliver
// calls run in parallel. Partial failure is isolated per language — a failed
// translation or delivery for one target never cancels its siblings; the
// fan-out waits for all and collects what succeeded.
//
// Observability: lifecycle handlers are OpenTelemetry-instrumented; spans
// carry guild and message identifiers.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonPark0/translate-bot/internal/domain"
	"github.com/JonPark0/translate-bot/internal/repo"
)

// MessageEvent is a platform-agnostic source-message lifecycle event for
// creates and edits. Identifiers are platform snowflakes rendered as strings.
type MessageEvent struct {
	GuildID   string
	MessageID string
	ChannelID string

	AuthorID        string
	AuthorName      string
	AuthorAvatarURL string

	Content      string
	HasStickers  bool
	StickerNames []string

	// ReplyToMessageID is the id of the message this one replies to, if any.
	// It may name a source message or one of the bot's own mirrors.
	ReplyToMessageID string
}

// DeleteEvent notifies the synchronizer that a source message was removed.
type DeleteEvent struct {
	GuildID   string
	MessageID string
	ChannelID string
}

// Outbound is the content handed to the channel sender for one mirror.
type Outbound struct {
	Text            string
	AuthorName      string
	AuthorAvatarURL string
	// Verbatim marks content forwarded as-is (emoji, stickers, commands);
	// senders deliver it as a plain message rather than an embed.
	Verbatim bool
}

// ChannelSender delivers, edits, deletes, and probes mirror messages.
// Implementations return ErrMirrorNotFound when the target no longer exists;
// any other error is treated as transient for that one mirror.
type ChannelSender interface {
	Send(ctx context.Context, channelID string, msg Outbound, replyToMessageID string) (string, error)
	Edit(ctx context.Context, channelID, messageID string, msg Outbound) error
	Delete(ctx context.Context, channelID, messageID string) error
	Fetch(ctx context.Context, channelID, messageID string) (bool, error)
}

// Translator produces a translation of text into the target language. An
// empty result with a nil error means "nothing to do" (source and target
// language coincide, or the text is empty) and is not an error.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// MappingStore is the durable record linking a source message to its mirrors.
// All lookups return (nil, nil) for absent mappings; Create reports an
// existing row as repo.ErrDuplicateMapping.
type MappingStore interface {
	Create(ctx context.Context, m *domain.MessageMapping) error
	Get(ctx context.Context, guildID, sourceMessageID string) (*domain.MessageMapping, error)
	Update(ctx context.Context, guildID, sourceMessageID string, mirrors []domain.MessageMirror, snapshot string) (bool, error)
	Delete(ctx context.Context, guildID, sourceMessageID string) (bool, error)
	FindByMirror(ctx context.Context, guildID, languageCode, mirrorMessageID string) (*domain.MessageMapping, error)
}

// GuildResources supplies the per-guild collaborators a fan-out needs. The
// registry implements this; tests substitute fakes.
type GuildResources interface {
	CurrentTopology(ctx context.Context, guildID string) (Topology, error)
	Translator(ctx context.Context, guildID string) (Translator, error)
	Gate(ctx context.Context, guildID string) (AdmissionGate, error)
}

// Synchronizer orchestrates translation fan-out and mirror lifecycle sync.
type Synchronizer struct {
	Store      MappingStore
	Sender     ChannelSender
	Guilds     GuildResources
	Classifier ContentClassifier

	// TranslateTimeout bounds each translation call; DeliverTimeout bounds
	// each send/edit/delete. A timed-out call counts as failed for that one
	// language only.
	TranslateTimeout time.Duration
	DeliverTimeout   time.Duration

	// CostPerCallUSD is the estimated spend recorded per translation call.
	CostPerCallUSD float64

	Log zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewSynchronizer constructs a Synchronizer with default timeouts and cost.
func NewSynchronizer(store MappingStore, sender ChannelSender, guilds GuildResources, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		Store:            store,
		Sender:           sender,
		Guilds:           guilds,
		Classifier:       DefaultClassifier{},
		TranslateTimeout: 30 * time.Second,
		DeliverTimeout:   10 * time.Second,
		CostPerCallUSD:   0.001,
		Log:              log.With().Str("component", "synchronizer").Logger(),
		inflight:         make(map[string]struct{}),
	}
}

// HandleCreate fans a newly created source message out to its target
// channels. Duplicate deliveries of the same event are absorbed by the
// in-flight guard; a second concurrent call for the same message id returns
// immediately without side effects.
func (s *Synchronizer) HandleCreate(ctx context.Context, ev MessageEvent) error {
	tr := otel.Tracer("services/Synchronizer")
	ctx, span := tr.Start(ctx, "HandleCreate",
		trace.WithAttributes(
			attribute.String("guild.id", ev.GuildID),
			attribute.String("message.id", ev.MessageID),
		),
	)
	defer span.End()

	if !s.enter(ev.MessageID) {
		fanoutsTotal.WithLabelValues("create", "duplicate").Inc()
		return nil
	}
	defer s.leave(ev.MessageID)

	return s.fanOutNew(ctx, ev)
}

// HandleEdit propagates a source-message edit to its mirrors. Mirrors are
// edited in place; a mirror that disappeared is recreated and its id replaced.
// A message that was never fanned out (originally a command or link whose edit
// changed that) takes the creation path instead.
func (s *Synchronizer) HandleEdit(ctx context.Context, ev MessageEvent) error {
	tr := otel.Tracer("services/Synchronizer")
	ctx, span := tr.Start(ctx, "HandleEdit",
		trace.WithAttributes(
			attribute.String("guild.id", ev.GuildID),
			attribute.String("message.id", ev.MessageID),
		),
	)
	defer span.End()

	if !s.enter(ev.MessageID) {
		fanoutsTotal.WithLabelValues("edit", "duplicate").Inc()
		return nil
	}
	defer s.leave(ev.MessageID)

	m, err := s.Store.Get(ctx, ev.GuildID, ev.MessageID)
	if err != nil {
		return fmt.Errorf("load mapping: %w", err)
	}
	if m == nil {
		return s.fanOutNew(ctx, ev)
	}
	if ev.Content == m.ContentSnapshot {
		fanoutsTotal.WithLabelValues("edit", "noop").Inc()
		return nil
	}

	// Content that no longer translates (now emoji-only or command/link)
	// leaves the existing mirrors stale rather than dropping them, so delete
	// propagation still covers every mirror.
	if s.classifier().ShouldBypassTranslation(ev) || s.classifier().IsCommandOrLinkOnly(ev.Content) {
		fanoutsTotal.WithLabelValues("edit", "stale").Inc()
		return nil
	}

	topo, err := s.Guilds.CurrentTopology(ctx, ev.GuildID)
	if err != nil {
		return fmt.Errorf("resolve topology: %w", err)
	}
	srcLang, ok := topo.LanguageOf(ev.ChannelID)
	if !ok {
		fanoutsTotal.WithLabelValues("edit", "untracked").Inc()
		return nil
	}
	targets := topo.TargetsExcluding(srcLang)
	if len(targets) == 0 {
		return nil
	}

	gate, err := s.Guilds.Gate(ctx, ev.GuildID)
	if err != nil {
		return fmt.Errorf("resolve gate: %w", err)
	}
	if !gate.TryAcquire(ctx) {
		fanoutsTotal.WithLabelValues("edit", "quota_denied").Inc()
		s.Log.Debug().Str("guild_id", ev.GuildID).Str("message_id", ev.MessageID).Msg("edit skipped by quota gate")
		return nil
	}

	translator, err := s.Guilds.Translator(ctx, ev.GuildID)
	if err != nil {
		s.Log.Warn().Err(err).Str("guild_id", ev.GuildID).Msg("no translator for edit")
		return nil
	}

	var replyTo string
	if m.ReplyToMessageID != nil {
		replyTo = *m.ReplyToMessageID
	}
	anchors := s.replyAnchors(ctx, ev.GuildID, srcLang, replyTo)

	mirrors := s.editMirrors(ctx, translator, gate, ev, m, targets, anchors)

	// Mirrors in languages outside the current topology stay in the mapping
	// untouched; they still need delete propagation.
	inTargets := make(map[string]bool, len(targets))
	for _, t := range targets {
		inTargets[t.Language] = true
	}
	for _, old := range m.Mirrors {
		if !inTargets[old.LanguageCode] {
			mirrors = append(mirrors, domain.MessageMirror{
				LanguageCode: old.LanguageCode,
				ChannelID:    old.ChannelID,
				MessageID:    old.MessageID,
			})
		}
	}

	ok, err = s.Store.Update(ctx, ev.GuildID, ev.MessageID, mirrors, ev.Content)
	if err != nil {
		return fmt.Errorf("update mapping: %w", err)
	}
	if !ok {
		// The mapping vanished concurrently (deletion race). Persist what we
		// produced through the creation path; a duplicate means the race went
		// the other way and the other writer won.
		if len(mirrors) == 0 {
			return nil
		}
		if err := s.Store.Create(ctx, s.buildMapping(ev, mirrors)); err != nil && !errors.Is(err, repo.ErrDuplicateMapping) {
			return fmt.Errorf("recreate mapping: %w", err)
		}
	}
	fanoutsTotal.WithLabelValues("edit", "completed").Inc()
	return nil
}

// HandleDelete deletes every mirror of a removed source message and then the
// mapping itself. Mirrors that are already gone do not block the rest.
func (s *Synchronizer) HandleDelete(ctx context.Context, ev DeleteEvent) error {
	tr := otel.Tracer("services/Synchronizer")
	ctx, span := tr.Start(ctx, "HandleDelete",
		trace.WithAttributes(
			attribute.String("guild.id", ev.GuildID),
			attribute.String("message.id", ev.MessageID),
		),
	)
	defer span.End()

	m, err := s.Store.Get(ctx, ev.GuildID, ev.MessageID)
	if err != nil {
		return fmt.Errorf("load mapping: %w", err)
	}
	if m == nil {
		return nil
	}

	var wg sync.WaitGroup
	for _, mirror := range m.Mirrors {
		wg.Add(1)
		go func(mr domain.MessageMirror) {
			defer wg.Done()
			err := s.deleteMirror(ctx, mr.ChannelID, mr.MessageID)
			switch {
			case err == nil:
				mirrorOpsTotal.WithLabelValues("delete", "ok").Inc()
			case errors.Is(err, ErrMirrorNotFound):
				mirrorOpsTotal.WithLabelValues("delete", "not_found").Inc()
			default:
				mirrorOpsTotal.WithLabelValues("delete", "error").Inc()
				s.Log.Error().Err(err).
					Str("guild_id", ev.GuildID).
					Str("mirror_id", mr.MessageID).
					Str("language", mr.LanguageCode).
					Msg("failed to delete mirror")
			}
		}(mirror)
	}
	wg.Wait()

	// The mapping goes away regardless of individual mirror outcomes.
	if _, err := s.Store.Delete(ctx, ev.GuildID, ev.MessageID); err != nil {
		return fmt.Errorf("delete mapping: %w", err)
	}
	fanoutsTotal.WithLabelValues("delete", "completed").Inc()
	return nil
}

// fanOutNew runs the creation fan-out for ev. The caller holds the guard.
func (s *Synchronizer) fanOutNew(ctx context.Context, ev MessageEvent) error {
	topo, err := s.Guilds.CurrentTopology(ctx, ev.GuildID)
	if err != nil {
		return fmt.Errorf("resolve topology: %w", err)
	}
	srcLang, ok := topo.LanguageOf(ev.ChannelID)
	if !ok {
		fanoutsTotal.WithLabelValues("create", "untracked").Inc()
		return nil
	}
	targets := topo.TargetsExcluding(srcLang)
	if len(targets) == 0 {
		return nil
	}

	// Emoji/sticker-only and command/link content is mirrored verbatim: no
	// quota, no translation, and no mapping — such mirrors are not edit or
	// delete synchronized.
	if s.classifier().ShouldBypassTranslation(ev) || s.classifier().IsCommandOrLinkOnly(ev.Content) {
		s.mirrorVerbatim(ctx, ev, targets)
		fanoutsTotal.WithLabelValues("create", "verbatim").Inc()
		return nil
	}
	if strings.TrimSpace(ev.Content) == "" {
		fanoutsTotal.WithLabelValues("create", "empty").Inc()
		return nil
	}

	gate, err := s.Guilds.Gate(ctx, ev.GuildID)
	if err != nil {
		return fmt.Errorf("resolve gate: %w", err)
	}
	if !gate.TryAcquire(ctx) {
		fanoutsTotal.WithLabelValues("create", "quota_denied").Inc()
		s.Log.Debug().Str("guild_id", ev.GuildID).Str("message_id", ev.MessageID).Msg("fan-out skipped by quota gate")
		return nil
	}

	translator, err := s.Guilds.Translator(ctx, ev.GuildID)
	if err != nil {
		s.Log.Warn().Err(err).Str("guild_id", ev.GuildID).Msg("no translator for guild")
		return nil
	}

	anchors := s.replyAnchors(ctx, ev.GuildID, srcLang, ev.ReplyToMessageID)
	mirrors := s.sendTranslations(ctx, translator, gate, ev, targets, anchors)
	if len(mirrors) == 0 {
		fanoutsTotal.WithLabelValues("create", "no_mirrors").Inc()
		return nil
	}

	if err := s.Store.Create(ctx, s.buildMapping(ev, mirrors)); err != nil {
		if errors.Is(err, repo.ErrDuplicateMapping) {
			// Already fanned out by an earlier delivery.
			fanoutsTotal.WithLabelValues("create", "duplicate").Inc()
			return nil
		}
		return fmt.Errorf("create mapping: %w", err)
	}

	if len(mirrors) < len(targets) {
		fanoutsTotal.WithLabelValues("create", "partial").Inc()
	} else {
		fanoutsTotal.WithLabelValues("create", "completed").Inc()
	}
	return nil
}

// sendTranslations translates and delivers to every target concurrently and
// returns the mirrors that were produced. Failures are isolated per language.
func (s *Synchronizer) sendTranslations(ctx context.Context, translator Translator, gate AdmissionGate, ev MessageEvent, targets []LanguageChannel, anchors map[string]string) []domain.MessageMirror {
	results := make(chan domain.MessageMirror, len(targets))
	var wg sync.WaitGroup
	for _, tgt := range targets {
		wg.Add(1)
		go func(tgt LanguageChannel) {
			defer wg.Done()
			text, ok := s.translate(ctx, translator, gate, ev, tgt.Language)
			if !ok {
				return
			}
			out := Outbound{Text: text, AuthorName: ev.AuthorName, AuthorAvatarURL: ev.AuthorAvatarURL}
			id, err := s.send(ctx, tgt.ChannelID, out, anchors[tgt.Language])
			if err != nil {
				mirrorOpsTotal.WithLabelValues("send", "error").Inc()
				s.Log.Error().Err(err).
					Str("guild_id", ev.GuildID).
					Str("language", tgt.Language).
					Msg("failed to send mirror")
				return
			}
			mirrorOpsTotal.WithLabelValues("send", "ok").Inc()
			results <- domain.MessageMirror{LanguageCode: tgt.Language, ChannelID: tgt.ChannelID, MessageID: id}
		}(tgt)
	}
	wg.Wait()
	close(results)

	var mirrors []domain.MessageMirror
	for mr := range results {
		mirrors = append(mirrors, mr)
	}
	return mirrors
}

// editMirrors re-translates an edited message and converges each target's
// mirror: edit in place, recreate on NotFound, create when a translation is
// newly available, and keep the old mirror stale when translation fails.
func (s *Synchronizer) editMirrors(ctx context.Context, translator Translator, gate AdmissionGate, ev MessageEvent, m *domain.MessageMapping, targets []LanguageChannel, anchors map[string]string) []domain.MessageMirror {
	results := make(chan domain.MessageMirror, len(targets))
	var wg sync.WaitGroup
	for _, tgt := range targets {
		wg.Add(1)
		go func(tgt LanguageChannel) {
			defer wg.Done()
			old, hadOld := m.MirrorFor(tgt.Language)

			text, ok := s.translate(ctx, translator, gate, ev, tgt.Language)
			if !ok {
				// Stale-mirror policy: failed or empty re-translation keeps
				// the previous mirror and its content, as long as the mirror
				// still exists. A probe error keeps it too; only a confirmed
				// "gone" drops it from the mapping.
				if !hadOld {
					return
				}
				exists, ferr := s.fetch(ctx, old.ChannelID, old.MessageID)
				if ferr == nil && !exists {
					return
				}
				results <- domain.MessageMirror{LanguageCode: old.LanguageCode, ChannelID: old.ChannelID, MessageID: old.MessageID}
				return
			}

			out := Outbound{Text: text, AuthorName: ev.AuthorName, AuthorAvatarURL: ev.AuthorAvatarURL}
			if !hadOld {
				id, err := s.send(ctx, tgt.ChannelID, out, anchors[tgt.Language])
				if err != nil {
					mirrorOpsTotal.WithLabelValues("send", "error").Inc()
					return
				}
				mirrorOpsTotal.WithLabelValues("send", "ok").Inc()
				results <- domain.MessageMirror{LanguageCode: tgt.Language, ChannelID: tgt.ChannelID, MessageID: id}
				return
			}

			err := s.edit(ctx, old.ChannelID, old.MessageID, out)
			switch {
			case err == nil:
				mirrorOpsTotal.WithLabelValues("edit", "ok").Inc()
				results <- domain.MessageMirror{LanguageCode: old.LanguageCode, ChannelID: old.ChannelID, MessageID: old.MessageID}
			case errors.Is(err, ErrMirrorNotFound):
				mirrorOpsTotal.WithLabelValues("edit", "not_found").Inc()
				id, serr := s.send(ctx, tgt.ChannelID, out, anchors[tgt.Language])
				if serr != nil {
					mirrorOpsTotal.WithLabelValues("send", "error").Inc()
					return
				}
				mirrorOpsTotal.WithLabelValues("send", "ok").Inc()
				results <- domain.MessageMirror{LanguageCode: tgt.Language, ChannelID: tgt.ChannelID, MessageID: id}
			default:
				mirrorOpsTotal.WithLabelValues("edit", "error").Inc()
				s.Log.Error().Err(err).
					Str("guild_id", ev.GuildID).
					Str("language", tgt.Language).
					Msg("failed to edit mirror")
				// Transient failure: keep the old mirror, now stale.
				results <- domain.MessageMirror{LanguageCode: old.LanguageCode, ChannelID: old.ChannelID, MessageID: old.MessageID}
			}
		}(tgt)
	}
	wg.Wait()
	close(results)

	var mirrors []domain.MessageMirror
	for mr := range results {
		mirrors = append(mirrors, mr)
	}
	return mirrors
}

// mirrorVerbatim forwards non-translatable content as-is to every target.
func (s *Synchronizer) mirrorVerbatim(ctx context.Context, ev MessageEvent, targets []LanguageChannel) {
	out := Outbound{Text: s.verbatimText(ev), AuthorName: ev.AuthorName, Verbatim: true}
	var wg sync.WaitGroup
	for _, tgt := range targets {
		wg.Add(1)
		go func(tgt LanguageChannel) {
			defer wg.Done()
			if _, err := s.send(ctx, tgt.ChannelID, out, ""); err != nil {
				mirrorOpsTotal.WithLabelValues("send", "error").Inc()
				s.Log.Error().Err(err).
					Str("guild_id", ev.GuildID).
					Str("channel_id", tgt.ChannelID).
					Msg("failed to forward verbatim message")
				return
			}
			mirrorOpsTotal.WithLabelValues("send", "ok").Inc()
		}(tgt)
	}
	wg.Wait()
}

// verbatimText formats the as-is forwarding body with author attribution.
func (s *Synchronizer) verbatimText(ev MessageEvent) string {
	if ev.HasStickers {
		text := fmt.Sprintf("**%s** sent a sticker", ev.AuthorName)
		if ev.Content != "" {
			text += ": " + ev.Content
		}
		if len(ev.StickerNames) > 0 {
			text += fmt.Sprintf(" (Stickers: %s)", strings.Join(ev.StickerNames, ", "))
		}
		return text
	}
	return fmt.Sprintf("**%s**: %s", ev.AuthorName, ev.Content)
}

// replyAnchors resolves the reply anchor per target language. The replied-to
// id is looked up first as a source message, then as a mirror in the source
// channel's own language. Resolution never blocks on a missing mapping; a
// target language without a mirror simply gets no anchor.
func (s *Synchronizer) replyAnchors(ctx context.Context, guildID, sourceLanguage, replyToMessageID string) map[string]string {
	if replyToMessageID == "" {
		return nil
	}
	m, err := s.Store.Get(ctx, guildID, replyToMessageID)
	if err != nil {
		s.Log.Warn().Err(err).Str("guild_id", guildID).Msg("reply anchor lookup failed")
		return nil
	}
	if m == nil {
		// The reply may target one of our own mirrors posted in the source
		// channel; resolve it back to its mapping.
		m, err = s.Store.FindByMirror(ctx, guildID, sourceLanguage, replyToMessageID)
		if err != nil || m == nil {
			return nil
		}
	}
	anchors := make(map[string]string, len(m.Mirrors))
	for _, mr := range m.Mirrors {
		anchors[mr.LanguageCode] = mr.MessageID
	}
	return anchors
}

// translate runs one bounded translation call and records its cost. The
// second return is false when there is nothing to deliver for this language.
func (s *Synchronizer) translate(ctx context.Context, translator Translator, gate AdmissionGate, ev MessageEvent, targetLanguage string) (string, bool) {
	tctx, cancel := context.WithTimeout(ctx, s.TranslateTimeout)
	defer cancel()
	text, err := translator.Translate(tctx, ev.Content, targetLanguage)
	if err != nil {
		translationsTotal.WithLabelValues("error").Inc()
		s.Log.Error().Err(err).
			Str("guild_id", ev.GuildID).
			Str("language", targetLanguage).
			Msg("translation failed")
		return "", false
	}
	if text == "" {
		translationsTotal.WithLabelValues("empty").Inc()
		return "", false
	}
	translationsTotal.WithLabelValues("ok").Inc()
	gate.RecordCost(ctx, s.CostPerCallUSD)
	return text, true
}

func (s *Synchronizer) send(ctx context.Context, channelID string, out Outbound, replyTo string) (string, error) {
	dctx, cancel := context.WithTimeout(ctx, s.DeliverTimeout)
	defer cancel()
	return s.Sender.Send(dctx, channelID, out, replyTo)
}

func (s *Synchronizer) edit(ctx context.Context, channelID, messageID string, out Outbound) error {
	dctx, cancel := context.WithTimeout(ctx, s.DeliverTimeout)
	defer cancel()
	return s.Sender.Edit(dctx, channelID, messageID, out)
}

func (s *Synchronizer) fetch(ctx context.Context, channelID, messageID string) (bool, error) {
	dctx, cancel := context.WithTimeout(ctx, s.DeliverTimeout)
	defer cancel()
	return s.Sender.Fetch(dctx, channelID, messageID)
}

func (s *Synchronizer) deleteMirror(ctx context.Context, channelID, messageID string) error {
	dctx, cancel := context.WithTimeout(ctx, s.DeliverTimeout)
	defer cancel()
	return s.Sender.Delete(dctx, channelID, messageID)
}

// buildMapping assembles a fresh mapping row for ev with the given mirrors.
func (s *Synchronizer) buildMapping(ev MessageEvent, mirrors []domain.MessageMirror) *domain.MessageMapping {
	m := &domain.MessageMapping{
		GuildID:         ev.GuildID,
		SourceMessageID: ev.MessageID,
		SourceChannelID: ev.ChannelID,
		ContentSnapshot: ev.Content,
		Mirrors:         mirrors,
	}
	if ev.ReplyToMessageID != "" {
		replyTo := ev.ReplyToMessageID
		m.ReplyToMessageID = &replyTo
	}
	return m
}

// classifier returns the configured classifier or the default rules.
func (s *Synchronizer) classifier() ContentClassifier {
	if s.Classifier != nil {
		return s.Classifier
	}
	return DefaultClassifier{}
}

// enter adds a message id to the in-flight guard. It returns false when the
// id is already being processed, which absorbs duplicate deliveries.
func (s *Synchronizer) enter(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		s.inflight = make(map[string]struct{})
	}
	if _, busy := s.inflight[messageID]; busy {
		return false
	}
	s.inflight[messageID] = struct{}{}
	return true
}

// leave removes a message id from the in-flight guard.
func (s *Synchronizer) leave(messageID string) {
	s.mu.Lock()
	delete(s.inflight, messageID)
	s.mu.Unlock()
}
