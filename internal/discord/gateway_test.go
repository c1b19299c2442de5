package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestShouldProcess(t *testing.T) {
	g := &Gateway{botUserID: "bot-1"}

	cases := []struct {
		name string
		msg  *discordgo.Message
		want bool
	}{
		{"nil message", nil, false},
		{"direct message", &discordgo.Message{GuildID: "", Author: &discordgo.User{ID: "u1"}}, false},
		{"missing author", &discordgo.Message{GuildID: "g1"}, false},
		{"bot author", &discordgo.Message{GuildID: "g1", Author: &discordgo.User{ID: "u1", Bot: true}}, false},
		{"own mirror", &discordgo.Message{GuildID: "g1", Author: &discordgo.User{ID: "bot-1"}}, false},
		{"regular user", &discordgo.Message{GuildID: "g1", Author: &discordgo.User{ID: "u1"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.shouldProcess(tc.msg); got != tc.want {
				t.Fatalf("shouldProcess = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEventFromMessage(t *testing.T) {
	m := &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "hello",
		Author:    &discordgo.User{ID: "u1", Username: "alice"},
		StickerItems: []*discordgo.StickerItem{
			{ID: "s1", Name: "happycat"},
		},
		MessageReference: &discordgo.MessageReference{MessageID: "parent"},
	}

	ev := eventFromMessage(m)
	if ev.GuildID != "g1" || ev.MessageID != "m1" || ev.ChannelID != "c1" {
		t.Fatalf("ids = %+v", ev)
	}
	if ev.AuthorID != "u1" || ev.AuthorName != "alice" {
		t.Fatalf("author = %+v", ev)
	}
	if !ev.HasStickers || len(ev.StickerNames) != 1 || ev.StickerNames[0] != "happycat" {
		t.Fatalf("stickers = %+v", ev)
	}
	if ev.ReplyToMessageID != "parent" {
		t.Fatalf("reply = %q", ev.ReplyToMessageID)
	}

	plain := eventFromMessage(&discordgo.Message{
		ID: "m2", GuildID: "g1", ChannelID: "c1",
		Author: &discordgo.User{ID: "u1", Username: "alice"},
	})
	if plain.HasStickers || plain.ReplyToMessageID != "" {
		t.Fatalf("plain message should carry no stickers or reply: %+v", plain)
	}
}
