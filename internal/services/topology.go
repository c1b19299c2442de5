// Package services – channel topology resolver
//
// A Topology is an immutable snapshot of one guild's channel-to-language
// configuration, taken once per inbound event. All resolution is pure
// function application over the snapshot; configuration changes only take
// effect on the next event.
package services

import "context"

// LanguageChannel binds one language to the single channel carrying it.
type LanguageChannel struct {
	Language  string
	ChannelID string
}

// Topology is a guild's channel-to-language configuration snapshot.
type Topology struct {
	GuildID  string
	Channels []LanguageChannel
}

// LanguageOf resolves the language bound to a channel. The second return is
// false for channels outside the topology; callers treat that as "not a
// translatable channel" and skip the message.
func (t Topology) LanguageOf(channelID string) (string, bool) {
	for _, c := range t.Channels {
		if c.ChannelID == channelID {
			return c.Language, true
		}
	}
	return "", false
}

// TargetsExcluding returns every configured channel except the source
// language's own. A guild with fewer than two configured channels has no
// fan-out targets.
func (t Topology) TargetsExcluding(sourceLanguage string) []LanguageChannel {
	if len(t.Channels) < 2 {
		return nil
	}
	out := make([]LanguageChannel, 0, len(t.Channels)-1)
	for _, c := range t.Channels {
		if c.Language != sourceLanguage {
			out = append(out, c)
		}
	}
	return out
}

// TopologyProvider supplies per-event topology snapshots.
type TopologyProvider interface {
	// CurrentTopology returns the guild's topology as of now. An empty
	// topology (no channels) is valid and means nothing is mirrored.
	CurrentTopology(ctx context.Context, guildID string) (Topology, error)
}
