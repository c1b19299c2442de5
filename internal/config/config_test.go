package config

import (
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoadPanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "") // required -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "tok")

	// Overrides
	t.Setenv("PORT", "8088")
	t.Setenv("GIN_MODE", "weird")    // will normalize to "release"
	t.Setenv("LOG_LEVEL", "WARNING") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("TRANSLATE_TIMEOUT", "5s")
	t.Setenv("QUOTA_PER_MINUTE", "7")
	t.Setenv("QUOTA_COST_ALERT_USD", "1.5")
	t.Setenv("MAPPING_RETENTION", "72h")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")

	// Invalid numerics fall back to defaults.
	t.Setenv("QUOTA_PER_DAY", "nope")
	t.Setenv("GEMINI_CALLS_PER_SECOND", "x")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8088" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
	if !cfg.LogPretty {
		t.Fatalf("LOG_PRETTY=yes should parse true")
	}
	if cfg.GeminiModel != "gemini-2.5-pro" {
		t.Fatalf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.GeminiCallsPerS != 2.0 {
		t.Fatalf("invalid GEMINI_CALLS_PER_SECOND should fall back, got %v", cfg.GeminiCallsPerS)
	}
	if cfg.TranslateTimeout != 5*time.Second {
		t.Fatalf("TranslateTimeout = %v", cfg.TranslateTimeout)
	}
	if cfg.Quota.PerMinute != 7 {
		t.Fatalf("Quota.PerMinute = %d", cfg.Quota.PerMinute)
	}
	if cfg.Quota.PerDay != 1000 {
		t.Fatalf("invalid QUOTA_PER_DAY should fall back, got %d", cfg.Quota.PerDay)
	}
	if cfg.Quota.CostAlertUSD != 1.5 {
		t.Fatalf("Quota.CostAlertUSD = %v", cfg.Quota.CostAlertUSD)
	}
	if cfg.MappingRetention != 72*time.Hour {
		t.Fatalf("MappingRetention = %v", cfg.MappingRetention)
	}
	want := []string{"https://a.com", "http://b"}
	if len(cfg.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	for i := range want {
		if cfg.CORS.AllowedOrigins[i] != want[i] {
			t.Fatalf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
		}
	}
}

// --- validation failures ---

func TestLoadValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"missing token", "DISCORD_TOKEN", "   ", "DISCORD_TOKEN"},
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"zero quota per minute", "QUOTA_PER_MINUTE", "0", "QUOTA_PER_MINUTE"},
		{"zero monthly ceiling", "QUOTA_MAX_MONTHLY_COST_USD", "0", "QUOTA_MAX_MONTHLY_COST_USD"},
		{"alert above ceiling", "QUOTA_COST_ALERT_USD", "999", "QUOTA_COST_ALERT_USD"},
		{"negative cost per call", "COST_PER_CALL_USD", "-1", "COST_PER_CALL_USD"},
		{"zero retention", "MAPPING_RETENTION", "0s", "MAPPING_RETENTION"},
		{"sample ratio out of range", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DISCORD_TOKEN", "tok")
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %s", err, tc.wantErr)
			}
		})
	}
}
