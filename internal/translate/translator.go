// Package translate provides language detection, mention-safe text handling,
// and the Gemini-backed translator used by the fan-out synchronizer.
package translate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// mentionRE matches user (<@123>, <@!123>), role (<@&123>), and channel
// (<#123>) mentions.
var mentionRE = regexp.MustCompile(`<(@[!&]?|#)(\d+)>`)

// DetectLanguage guesses the dominant language of text from its script
// composition. It distinguishes Korean, Japanese, and Chinese by the ratio of
// Hangul, kana, and Han characters among letters; everything else is reported
// as English. Kana is checked before Han so Japanese text with kanji is not
// misread as Chinese.
func DetectLanguage(text string) string {
	var letters, hangul, kana, han int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			kana++
		case unicode.Is(unicode.Han, r):
			han++
		}
	}
	if letters == 0 {
		return "en"
	}
	total := float64(letters)
	switch {
	case float64(hangul)/total > 0.3:
		return "ko"
	case float64(kana)/total > 0.2:
		return "ja"
	case float64(han)/total > 0.3:
		return "zh"
	default:
		return "en"
	}
}

// Mention is one extracted mention placeholder and its original form.
type Mention struct {
	Placeholder string
	Original    string
}

// CleanMentions replaces Discord mentions with neutral bracketed placeholders
// so the translator does not mangle the snowflake syntax. The returned slice
// preserves document order for RestoreMentions.
func CleanMentions(text string) (string, []Mention) {
	var mentions []Mention
	cleaned := mentionRE.ReplaceAllStringFunc(text, func(match string) string {
		var kind string
		switch {
		case strings.HasPrefix(match, "<@&"):
			kind = "role"
		case strings.HasPrefix(match, "<#"):
			kind = "channel"
		default:
			kind = "user"
		}
		placeholder := fmt.Sprintf("[%s]", kind)
		mentions = append(mentions, Mention{Placeholder: placeholder, Original: match})
		return placeholder
	})
	return cleaned, mentions
}

// RestoreMentions substitutes the original mentions back into translated
// text, consuming placeholders left to right. Placeholders the translator
// dropped are simply skipped.
func RestoreMentions(text string, mentions []Mention) string {
	for _, m := range mentions {
		text = strings.Replace(text, m.Placeholder, m.Original, 1)
	}
	return text
}

// LanguageName renders a language code as its English display name for use
// in translation prompts ("ko" -> "Korean"). Unparseable codes fall back to
// the code itself.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// baseCode reduces a language code to its base subtag ("zh-TW" -> "zh").
func baseCode(code string) string {
	if i := strings.IndexByte(code, '-'); i >= 0 {
		return code[:i]
	}
	return code
}
