// Package handlers provides the health server's HTTP endpoints: liveness,
// operational status, and per-guild quota/topology summaries.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JonPark0/translate-bot/internal/domain"
	httpmw "github.com/JonPark0/translate-bot/internal/http/middleware"
	"github.com/JonPark0/translate-bot/internal/repo"
	"github.com/JonPark0/translate-bot/internal/services"
)

// Stable machine-readable error codes.
const (
	ErrCodeNotFound = "not_found"
	ErrCodeInternal = "internal_error"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// Fail aborts the request with a structured error and logs server-side errors.
func Fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	if status >= http.StatusInternalServerError {
		httpmw.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{RequestID: reqID, Code: code, Message: msg})
}

// Handler serves the health and status endpoints.
type Handler struct {
	DB        *gorm.DB
	Registry  *services.Registry
	StartedAt time.Time
}

// New constructs a Handler.
func New(db *gorm.DB, registry *services.Registry, startedAt time.Time) *Handler {
	return &Handler{DB: db, Registry: registry, StartedAt: startedAt}
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status reports process-wide operational counters.
func (h *Handler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	var guilds, channels, mappings int64
	if err := h.DB.WithContext(ctx).Model(&domain.GuildConfig{}).Count(&guilds).Error; err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to count guilds")
		return
	}
	if err := h.DB.WithContext(ctx).Model(&domain.ChannelLanguage{}).Count(&channels).Error; err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to count channels")
		return
	}
	if err := h.DB.WithContext(ctx).Model(&domain.MessageMapping{}).Count(&mappings).Error; err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to count mappings")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"uptime_seconds":   int64(time.Since(h.StartedAt).Seconds()),
		"guilds":           guilds,
		"tracked_channels": channels,
		"message_mappings": mappings,
	})
}

// GuildStatus reports one guild's topology, feature flags, quota settings,
// live usage, and mapping count. The per-guild API key is never exposed.
func (h *Handler) GuildStatus(c *gin.Context) {
	ctx := c.Request.Context()
	guildID := c.Param("id")

	cfg, err := repo.GetGuildConfig(ctx, h.DB, guildID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to load guild config")
		return
	}
	if cfg == nil {
		Fail(c, http.StatusNotFound, ErrCodeNotFound, "guild not found")
		return
	}

	topo, err := h.Registry.CurrentTopology(ctx, guildID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to resolve topology")
		return
	}
	mappings, err := repo.CountMappings(ctx, h.DB, guildID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to count mappings")
		return
	}

	body := gin.H{
		"guild_id":            cfg.GuildID,
		"guild_name":          cfg.GuildName,
		"translation_enabled": cfg.TranslationEnabled,
		"initialized":         cfg.Initialized,
		"channels":            topo.Channels,
		"message_mappings":    mappings,
		"quota": gin.H{
			"rate_per_minute":      cfg.RatePerMinute,
			"max_daily_requests":   cfg.MaxDailyRequests,
			"max_monthly_cost_usd": cfg.MaxMonthlyCostUSD,
			"cost_alert_usd":       cfg.CostAlertUSD,
		},
	}
	if snap, ok := h.Registry.Snapshot(guildID); ok {
		body["usage"] = snap
	}
	c.JSON(http.StatusOK, body)
}
