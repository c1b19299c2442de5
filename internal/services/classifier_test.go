package services

import "testing"

func TestIsEmojiOnly(t *testing.T) {
	cases := []struct {
		content string
		want    bool
	}{
		{"<:wave:1234567890>", true},
		{"<a:party:1234567890> <:wave:42>", true},
		{"  <:wave:42>  ", true},
		{"hello <:wave:42>", false},
		{"hello", false},
		{"", false},
		{"   ", false},
	}
	for _, tc := range cases {
		if got := IsEmojiOnly(tc.content); got != tc.want {
			t.Errorf("IsEmojiOnly(%q) = %v, want %v", tc.content, got, tc.want)
		}
	}
}

func TestIsCommandOrLinkOnly(t *testing.T) {
	c := DefaultClassifier{}
	cases := []struct {
		text string
		want bool
	}{
		{"/setup", true},
		{"!play song", true},
		{"?help", true},
		{".roll", true},
		{",weird prefix", true},
		{"https://example.com", true},
		{"check https://a.com https://b.com", true},
		{"look at https://example.com please folks", false},
		{"plain message", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := c.IsCommandOrLinkOnly(tc.text); got != tc.want {
			t.Errorf("IsCommandOrLinkOnly(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestShouldBypassTranslation(t *testing.T) {
	c := DefaultClassifier{}

	if !c.ShouldBypassTranslation(MessageEvent{HasStickers: true, Content: "look"}) {
		t.Fatalf("sticker messages bypass translation")
	}
	if !c.ShouldBypassTranslation(MessageEvent{Content: "<:wave:42>"}) {
		t.Fatalf("emoji-only messages bypass translation")
	}
	if c.ShouldBypassTranslation(MessageEvent{Content: "hello there"}) {
		t.Fatalf("prose must not bypass translation")
	}
}
