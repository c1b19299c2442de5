// Package services – Prometheus instrumentation
//
// This file exposes the bot-domain collectors. Label cardinality is kept
// bounded: outcomes and operations are closed sets, and no per-guild or
// per-message labels are used. All collectors are safe for concurrent use.
package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// fanoutsTotal counts handled source-message lifecycle events by outcome.
	fanoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_fanouts_total",
			Help: "Total number of handled source-message events by outcome.",
		},
		[]string{"event", "outcome"},
	)

	// translationsTotal counts individual translation calls by result.
	translationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_translations_total",
			Help: "Total number of translation calls by result.",
		},
		[]string{"result"},
	)

	// mirrorOpsTotal counts send/edit/delete operations against mirrors.
	mirrorOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_mirror_operations_total",
			Help: "Total number of mirror message operations by result.",
		},
		[]string{"op", "result"},
	)

	// quotaDeniedTotal counts admissions rejected by the quota gate, by the
	// ceiling that rejected them.
	quotaDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_quota_denied_total",
			Help: "Total number of fan-outs denied by the quota gate.",
		},
		[]string{"ceiling"},
	)

	// translationCostUSD accumulates the estimated API spend.
	translationCostUSD = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_translation_cost_usd_total",
			Help: "Accumulated estimated translation API cost in USD.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		fanoutsTotal,
		translationsTotal,
		mirrorOpsTotal,
		quotaDeniedTotal,
		translationCostUSD,
	)
}
