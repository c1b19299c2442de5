// Package services – content classifier
//
// Classification decides the fan-out strategy for a message: translated
// mirror, verbatim mirror (emoji/sticker-only content and command/link-only
// text carry no translatable prose), or nothing. No state is owned here.
package services

import (
	"regexp"
	"strings"
)

// customEmojiRE matches Discord custom emoji tokens: <:name:id> or <a:name:id>.
var customEmojiRE = regexp.MustCompile(`<a?:[A-Za-z0-9_]+:\d+>`)

// commandPrefixes are the leading runes that mark a message as a bot command.
const commandPrefixes = "/!?.,"

// ContentClassifier branches the fan-out strategy for a message.
type ContentClassifier interface {
	// ShouldBypassTranslation reports whether the message should be mirrored
	// verbatim instead of translated (stickers, emoji-only content).
	ShouldBypassTranslation(ev MessageEvent) bool
	// IsCommandOrLinkOnly reports whether text is a bot command or consists
	// mostly of links, neither of which should hit the translation API.
	IsCommandOrLinkOnly(text string) bool
}

// DefaultClassifier implements ContentClassifier with the stock rules.
type DefaultClassifier struct{}

// ShouldBypassTranslation returns true for sticker messages and for content
// that is nothing but custom emoji and whitespace.
func (DefaultClassifier) ShouldBypassTranslation(ev MessageEvent) bool {
	if ev.HasStickers {
		return true
	}
	return IsEmojiOnly(ev.Content)
}

// IsCommandOrLinkOnly reports whether text starts with a command prefix or is
// more than half links by word count.
func (DefaultClassifier) IsCommandOrLinkOnly(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if strings.ContainsRune(commandPrefixes, rune(text[0])) {
		return true
	}

	words := strings.Fields(text)
	links := 0
	for _, w := range words {
		if strings.HasPrefix(w, "http://") || strings.HasPrefix(w, "https://") || strings.HasPrefix(w, "www.") {
			links++
		}
	}
	return len(words) > 0 && float64(links)/float64(len(words)) > 0.5
}

// IsEmojiOnly reports whether content consists solely of Discord custom emoji
// tokens and whitespace. Empty content is not emoji-only.
func IsEmojiOnly(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	return strings.TrimSpace(customEmojiRE.ReplaceAllString(content, "")) == ""
}
