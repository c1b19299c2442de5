// Package services – quota gate
//
// The gate is the admission controller in front of the translation fan-out.
// It enforces three ceilings atomically: accepted requests per trailing
// minute, accepted requests per trailing 24 hours, and accumulated estimated
// cost per calendar month. Crossing a ceiling is backpressure, not an error:
// requests are rejected, never queued.
//
// The sliding windows live in memory and clean expired entries lazily on each
// acquisition attempt; no background timer runs. Cost accumulation is written
// through an optional UsageStore so the monthly ceiling survives restarts.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// monthKeyLayout and dayKeyLayout format the durable accounting periods.
const (
	monthKeyLayout = "2006-01"
	dayKeyLayout   = "2006-01-02"
)

// GateConfig holds the ceilings a gate enforces.
type GateConfig struct {
	PerMinute         int     // accepted requests per trailing 60s
	PerDay            int     // accepted requests per trailing 24h
	MaxMonthlyCostUSD float64 // hard monthly spend ceiling
	CostAlertUSD      float64 // operator warning threshold, below the ceiling
}

// UsageStore persists quota accounting across restarts.
type UsageStore interface {
	// RecordUsage accumulates one request and its cost for the given instant.
	RecordUsage(ctx context.Context, guildID string, at time.Time, costUSD float64) error
	// MonthCost returns the accumulated cost for a month key ("2026-08").
	MonthCost(ctx context.Context, guildID, monthKey string) (float64, error)
}

// AdmissionGate is the surface the synchronizer sees.
type AdmissionGate interface {
	// TryAcquire atomically checks all ceilings and, only if every one is
	// satisfied, records one unit of consumption and returns true. A false
	// return mutates nothing.
	TryAcquire(ctx context.Context) bool
	// RecordCost accumulates the estimated cost of one translation call.
	RecordCost(ctx context.Context, amountUSD float64)
}

// Gate is the per-guild quota gate.
type Gate struct {
	guildID string
	cfg     GateConfig
	store   UsageStore // optional; nil keeps accounting in memory only
	log     zerolog.Logger

	mu        sync.Mutex
	minute    []time.Time
	day       []time.Time
	monthKey  string
	monthCost float64
	alerted   bool

	now func() time.Time // test seam
}

// NewGate builds a gate and primes the cached monthly cost from the store,
// so a restarted process keeps honoring the spend ceiling.
func NewGate(ctx context.Context, guildID string, cfg GateConfig, store UsageStore, log zerolog.Logger) *Gate {
	g := &Gate{
		guildID: guildID,
		cfg:     cfg,
		store:   store,
		log:     log.With().Str("component", "quota").Str("guild_id", guildID).Logger(),
		now:     time.Now,
	}
	g.monthKey = g.now().UTC().Format(monthKeyLayout)
	if store != nil {
		if cost, err := store.MonthCost(ctx, guildID, g.monthKey); err != nil {
			g.log.Warn().Err(err).Msg("failed to load month cost, starting from zero")
		} else {
			g.monthCost = cost
		}
	}
	return g
}

// TryAcquire implements AdmissionGate.
func (g *Gate) TryAcquire(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.trimLocked(now)
	g.rollMonthLocked(ctx, now)

	if g.cfg.PerMinute > 0 && len(g.minute) >= g.cfg.PerMinute {
		g.log.Debug().Int("window", len(g.minute)).Msg("quota denied: per-minute ceiling")
		quotaDeniedTotal.WithLabelValues("minute").Inc()
		return false
	}
	if g.cfg.PerDay > 0 && len(g.day) >= g.cfg.PerDay {
		g.log.Debug().Int("window", len(g.day)).Msg("quota denied: daily ceiling")
		quotaDeniedTotal.WithLabelValues("day").Inc()
		return false
	}
	if g.cfg.MaxMonthlyCostUSD > 0 && g.monthCost >= g.cfg.MaxMonthlyCostUSD {
		g.log.Debug().Float64("month_cost", g.monthCost).Msg("quota denied: monthly cost ceiling")
		quotaDeniedTotal.WithLabelValues("cost").Inc()
		return false
	}

	g.minute = append(g.minute, now)
	g.day = append(g.day, now)
	return true
}

// RecordCost implements AdmissionGate. Persistence failures are logged, not
// propagated: cost accounting must never break a fan-out that already ran.
func (g *Gate) RecordCost(ctx context.Context, amountUSD float64) {
	g.mu.Lock()
	now := g.now()
	g.rollMonthLocked(ctx, now)
	g.monthCost += amountUSD
	crossed := !g.alerted && g.cfg.CostAlertUSD > 0 && g.monthCost >= g.cfg.CostAlertUSD
	if crossed {
		g.alerted = true
	}
	cost := g.monthCost
	g.mu.Unlock()

	translationCostUSD.Add(amountUSD)
	if crossed {
		g.log.Warn().
			Float64("month_cost_usd", cost).
			Float64("ceiling_usd", g.cfg.MaxMonthlyCostUSD).
			Msg("monthly cost approaching ceiling")
	}
	if g.store != nil {
		if err := g.store.RecordUsage(ctx, g.guildID, now, amountUSD); err != nil {
			g.log.Warn().Err(err).Msg("failed to persist quota usage")
		}
	}
}

// Snapshot reports current consumption for the status endpoint. Across a
// month boundary it reports the new month as empty without touching the
// store; the durable reload still happens on the next acquisition, which is
// why the cached key is left alone here.
func (g *Gate) Snapshot() UsageSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	g.trimLocked(now)
	cost, alerted := g.monthCost, g.alerted
	if now.UTC().Format(monthKeyLayout) != g.monthKey {
		cost, alerted = 0, false
	}
	return UsageSnapshot{
		GuildID:          g.guildID,
		RequestsThisMin:  len(g.minute),
		PerMinuteCeiling: g.cfg.PerMinute,
		RequestsToday:    len(g.day),
		DailyCeiling:     g.cfg.PerDay,
		MonthCostUSD:     cost,
		MonthCeilingUSD:  g.cfg.MaxMonthlyCostUSD,
		CostAlertIssued:  alerted,
	}
}

// UsageSnapshot is a point-in-time view of one gate's consumption.
type UsageSnapshot struct {
	GuildID          string  `json:"guild_id"`
	RequestsThisMin  int     `json:"requests_this_minute"`
	PerMinuteCeiling int     `json:"per_minute_ceiling"`
	RequestsToday    int     `json:"requests_today"`
	DailyCeiling     int     `json:"daily_ceiling"`
	MonthCostUSD     float64 `json:"month_cost_usd"`
	MonthCeilingUSD  float64 `json:"month_ceiling_usd"`
	CostAlertIssued  bool    `json:"cost_alert_issued"`
}

// trimLocked drops window entries older than their horizon. Callers hold mu.
func (g *Gate) trimLocked(now time.Time) {
	g.minute = trimBefore(g.minute, now.Add(-time.Minute))
	g.day = trimBefore(g.day, now.Add(-24*time.Hour))
}

// rollMonthLocked resets the cached month cost when the calendar month
// changes, reloading any persisted remainder. Callers hold mu.
func (g *Gate) rollMonthLocked(ctx context.Context, now time.Time) {
	key := now.UTC().Format(monthKeyLayout)
	if key == g.monthKey {
		return
	}
	g.monthKey = key
	g.monthCost = 0
	g.alerted = false
	if g.store != nil {
		if cost, err := g.store.MonthCost(ctx, g.guildID, key); err == nil {
			g.monthCost = cost
		}
	}
}

// trimBefore returns ts without entries strictly older than cutoff. Entries
// are appended in order, so the first retained index closes the window.
func trimBefore(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && ts[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append(ts[:0], ts[i:]...)
}
