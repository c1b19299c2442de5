package discord

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/JonPark0/translate-bot/internal/services"
)

func restError(code int, status int) *discordgo.RESTError {
	e := &discordgo.RESTError{
		Response: &http.Response{StatusCode: status},
	}
	if code != 0 {
		e.Message = &discordgo.APIErrorMessage{Code: code, Message: "gone"}
	}
	return e
}

func TestWrapNotFound(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"unknown message code", fmt.Errorf("edit: %w", restError(discordgo.ErrCodeUnknownMessage, http.StatusNotFound)), true},
		{"unknown channel code", fmt.Errorf("send: %w", restError(discordgo.ErrCodeUnknownChannel, http.StatusNotFound)), true},
		{"plain 404", fmt.Errorf("delete: %w", restError(0, http.StatusNotFound)), true},
		{"rate limited", fmt.Errorf("send: %w", restError(0, http.StatusTooManyRequests)), false},
		{"forbidden code", fmt.Errorf("send: %w", restError(discordgo.ErrCodeMissingAccess, http.StatusForbidden)), false},
		{"not a rest error", errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := wrapNotFound(tc.err)
			if errors.Is(got, services.ErrMirrorNotFound) != tc.notFound {
				t.Fatalf("wrapNotFound(%v) notFound = %v, want %v", tc.err, !tc.notFound, tc.notFound)
			}
		})
	}
}

func TestEmbedFor(t *testing.T) {
	out := services.Outbound{
		Text:            "translated text",
		AuthorName:      "alice",
		AuthorAvatarURL: "https://cdn.example/avatar.png",
	}
	e := embedFor(out)
	if e.Description != "translated text" {
		t.Fatalf("description = %q", e.Description)
	}
	if e.Color != embedColor {
		t.Fatalf("color = %#x", e.Color)
	}
	if e.Author == nil || e.Author.Name != "alice" || e.Author.IconURL != out.AuthorAvatarURL {
		t.Fatalf("author = %+v", e.Author)
	}

	// Anonymous content gets no author block.
	if embedFor(services.Outbound{Text: "x"}).Author != nil {
		t.Fatalf("expected nil author when name is empty")
	}
}
