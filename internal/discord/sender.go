// Package discord adapts the Discord gateway and REST API to the
// synchronizer's platform-agnostic interfaces.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/JonPark0/translate-bot/internal/services"
)

// embedColor is the Discord blurple used for translated mirror embeds.
const embedColor = 0x7289DA

// Sender implements services.ChannelSender on a discordgo session.
// Translated mirrors are posted as embeds carrying the original author's name
// and avatar; verbatim forwards go out as plain messages.
type Sender struct {
	session *discordgo.Session
}

var _ services.ChannelSender = (*Sender)(nil)

// NewSender wraps an open discordgo session.
func NewSender(session *discordgo.Session) *Sender {
	return &Sender{session: session}
}

// Send posts one mirror message and returns its id. A non-empty
// replyToMessageID turns the mirror into a reply to that message.
func (s *Sender) Send(ctx context.Context, channelID string, msg services.Outbound, replyToMessageID string) (string, error) {
	send := &discordgo.MessageSend{}
	if msg.Verbatim {
		send.Content = msg.Text
	} else {
		send.Embeds = []*discordgo.MessageEmbed{embedFor(msg)}
	}
	if replyToMessageID != "" {
		send.Reference = &discordgo.MessageReference{
			MessageID: replyToMessageID,
			ChannelID: channelID,
		}
	}
	m, err := s.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return "", wrapNotFound(fmt.Errorf("send message: %w", err))
	}
	return m.ID, nil
}

// Edit replaces the content of an existing mirror in place.
func (s *Sender) Edit(ctx context.Context, channelID, messageID string, msg services.Outbound) error {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	if msg.Verbatim {
		edit.SetContent(msg.Text)
	} else {
		edit.SetEmbeds([]*discordgo.MessageEmbed{embedFor(msg)})
	}
	if _, err := s.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return wrapNotFound(fmt.Errorf("edit message: %w", err))
	}
	return nil
}

// Delete removes a mirror message.
func (s *Sender) Delete(ctx context.Context, channelID, messageID string) error {
	if err := s.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return wrapNotFound(fmt.Errorf("delete message: %w", err))
	}
	return nil
}

// Fetch reports whether a mirror message still exists. "Unknown message" is
// a definitive false, not an error.
func (s *Sender) Fetch(ctx context.Context, channelID, messageID string) (bool, error) {
	m, err := s.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		if errors.Is(wrapNotFound(fmt.Errorf("fetch message: %w", err)), services.ErrMirrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return m != nil, nil
}

func embedFor(msg services.Outbound) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Description: msg.Text,
		Color:       embedColor,
	}
	if msg.AuthorName != "" {
		e.Author = &discordgo.MessageEmbedAuthor{
			Name:    msg.AuthorName,
			IconURL: msg.AuthorAvatarURL,
		}
	}
	return e
}

// wrapNotFound maps "message/channel no longer exists" REST failures to
// services.ErrMirrorNotFound so the synchronizer can treat them as
// recoverable; everything else passes through unchanged.
func wrapNotFound(err error) error {
	var rerr *discordgo.RESTError
	if !errors.As(err, &rerr) {
		return err
	}
	if rerr.Message != nil {
		switch rerr.Message.Code {
		case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel:
			return fmt.Errorf("%w: %s", services.ErrMirrorNotFound, rerr.Message.Message)
		}
	}
	if rerr.Response != nil && rerr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", services.ErrMirrorNotFound, err)
	}
	return err
}
