// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes bot credentials,
// translation settings, quota defaults, database paths, the health server,
// and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings for the health
// server.
type CORSConfig struct {
	AllowedOrigins []string
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "translate-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// QuotaConfig holds the default admission ceilings applied to guilds without
// a stored configuration.
type QuotaConfig struct {
	PerMinute         int     // accepted translations per trailing minute
	PerDay            int     // accepted translations per trailing day
	MaxMonthlyCostUSD float64 // hard monthly spend ceiling
	CostAlertUSD      float64 // operator warning threshold
	CostPerCallUSD    float64 // estimated spend recorded per translation call
}

// Config holds all configuration values for the application.
type Config struct {
	// Discord
	DiscordToken string // bot token, required

	// Translation
	GeminiAPIKey     string        // process-wide API key; guilds may override
	GeminiModel      string        // model name, e.g. gemini-2.5-flash-lite
	GeminiCallsPerS  float64       // outbound API pacing (calls per second)
	TranslateTimeout time.Duration // per-translation deadline
	DeliverTimeout   time.Duration // per-mirror send/edit/delete deadline

	// Quota defaults
	Quota QuotaConfig

	// App
	DBPath           string        // SQLite path
	MappingRetention time.Duration // how long message mappings are kept
	JanitorInterval  time.Duration // how often expired mappings are pruned

	// Health server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	GinMode           string // debug|release|test
	CORS              CORSConfig

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Discord
		DiscordToken: getenv("DISCORD_TOKEN", ""),

		// Translation
		GeminiAPIKey:     getenv("GEMINI_API_KEY", ""),
		GeminiModel:      getenv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		GeminiCallsPerS:  getfloat("GEMINI_CALLS_PER_SECOND", 2.0),
		TranslateTimeout: getdur("TRANSLATE_TIMEOUT", 30*time.Second),
		DeliverTimeout:   getdur("DELIVER_TIMEOUT", 10*time.Second),

		// Quota defaults
		Quota: QuotaConfig{
			PerMinute:         getint("QUOTA_PER_MINUTE", 30),
			PerDay:            getint("QUOTA_PER_DAY", 1000),
			MaxMonthlyCostUSD: getfloat("QUOTA_MAX_MONTHLY_COST_USD", 10.0),
			CostAlertUSD:      getfloat("QUOTA_COST_ALERT_USD", 8.0),
			CostPerCallUSD:    getfloat("COST_PER_CALL_USD", 0.001),
		},

		// App
		DBPath:           getenv("DB_PATH", "translate-bot.db"),
		MappingRetention: getdur("MAPPING_RETENTION", 30*24*time.Hour),
		JanitorInterval:  getdur("JANITOR_INTERVAL", time.Hour),

		// Health server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "translate-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	if strings.TrimSpace(cfg.DiscordToken) == "" {
		return cfg, errors.New("DISCORD_TOKEN must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.GeminiCallsPerS <= 0 {
		return cfg, errors.New("GEMINI_CALLS_PER_SECOND must be > 0")
	}
	if cfg.TranslateTimeout <= 0 || cfg.DeliverTimeout <= 0 {
		return cfg, errors.New("TRANSLATE_TIMEOUT and DELIVER_TIMEOUT must be > 0")
	}
	if cfg.Quota.PerMinute < 1 || cfg.Quota.PerDay < 1 {
		return cfg, errors.New("QUOTA_PER_MINUTE and QUOTA_PER_DAY must be >= 1")
	}
	if cfg.Quota.MaxMonthlyCostUSD <= 0 {
		return cfg, errors.New("QUOTA_MAX_MONTHLY_COST_USD must be > 0")
	}
	if cfg.Quota.CostAlertUSD < 0 || cfg.Quota.CostAlertUSD > cfg.Quota.MaxMonthlyCostUSD {
		return cfg, errors.New("QUOTA_COST_ALERT_USD must be in [0, QUOTA_MAX_MONTHLY_COST_USD]")
	}
	if cfg.Quota.CostPerCallUSD < 0 {
		return cfg, errors.New("COST_PER_CALL_USD must be >= 0")
	}
	if cfg.MappingRetention <= 0 {
		return cfg, errors.New("MAPPING_RETENTION must be > 0")
	}
	if cfg.JanitorInterval <= 0 {
		return cfg, errors.New("JANITOR_INTERVAL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
