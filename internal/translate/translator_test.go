package translate

import "testing"

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"english", "hello there, how are you?", "en"},
		{"korean", "안녕하세요 여러분", "ko"},
		{"japanese kana", "こんにちは、元気ですか", "ja"},
		{"japanese with kanji", "今日はいい天気ですね", "ja"},
		{"chinese", "今天天气很好", "zh"},
		{"mixed mostly english", "lol 좋아 that was great honestly", "en"},
		{"no letters", "123 !!! :-)", "en"},
		{"empty", "", "en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectLanguage(tc.text); got != tc.want {
				t.Fatalf("DetectLanguage(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestCleanAndRestoreMentions(t *testing.T) {
	in := "hey <@123> and <@!456>, ask <@&789> in <#555>"
	cleaned, mentions := CleanMentions(in)

	want := "hey [user] and [user], ask [role] in [channel]"
	if cleaned != want {
		t.Fatalf("cleaned = %q, want %q", cleaned, want)
	}
	if len(mentions) != 4 {
		t.Fatalf("expected 4 mentions, got %d", len(mentions))
	}
	if mentions[2].Original != "<@&789>" || mentions[2].Placeholder != "[role]" {
		t.Fatalf("mention order not preserved: %+v", mentions[2])
	}

	if got := RestoreMentions(cleaned, mentions); got != in {
		t.Fatalf("round trip = %q, want %q", got, in)
	}
}

func TestRestoreMentionsSkipsDroppedPlaceholders(t *testing.T) {
	_, mentions := CleanMentions("ping <@111> and <@222>")
	// The translator kept only one placeholder.
	got := RestoreMentions("translated [user] text", mentions)
	if got != "translated <@111> text" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanMentionsNoMentions(t *testing.T) {
	cleaned, mentions := CleanMentions("plain text with <notamention> inside")
	if cleaned != "plain text with <notamention> inside" {
		t.Fatalf("cleaned = %q", cleaned)
	}
	if len(mentions) != 0 {
		t.Fatalf("expected no mentions, got %d", len(mentions))
	}
}

func TestLanguageName(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"ko", "Korean"},
		{"ja", "Japanese"},
		{"en", "English"},
		{"zh", "Chinese"},
		{"not a code!!", "not a code!!"},
	}
	for _, tc := range cases {
		if got := LanguageName(tc.code); got != tc.want {
			t.Fatalf("LanguageName(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestBaseCode(t *testing.T) {
	if got := baseCode("zh-TW"); got != "zh" {
		t.Fatalf("baseCode(zh-TW) = %q", got)
	}
	if got := baseCode("ko"); got != "ko" {
		t.Fatalf("baseCode(ko) = %q", got)
	}
}
