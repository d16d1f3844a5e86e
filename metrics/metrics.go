// Package metrics defines the Prometheus collectors for Wordweeper.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordweeper_sessions_created_total",
			Help: "Game sessions created",
		},
		[]string{"difficulty", "mode"},
	)
	SessionsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordweeper_sessions_finished_total",
			Help: "Game sessions that reached a terminal state",
		},
		[]string{"outcome"},
	)
	Reveals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordweeper_reveals_total",
			Help: "Reveal requests by outcome",
		},
		[]string{"outcome"},
	)
	WordsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wordweeper_words_completed_total",
			Help: "Words completed across all sessions",
		},
	)
	CascadeSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wordweeper_cascade_cells",
			Help:    "Cells uncovered by a single reveal",
			Buckets: prometheus.ExponentialBuckets(1, 2, 9),
		},
	)
	FinalScores = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wordweeper_final_score",
			Help:    "Final scores of finished sessions",
			Buckets: prometheus.LinearBuckets(0, 50, 12),
		},
		[]string{"mode"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wordweeper_active_sessions",
			Help: "Sessions currently held in memory",
		},
	)
	StatsErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordweeper_stats_errors_total",
			Help: "Failed statistics store operations",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(SessionsCreated)
	prometheus.MustRegister(SessionsFinished)
	prometheus.MustRegister(Reveals)
	prometheus.MustRegister(WordsCompleted)
	prometheus.MustRegister(CascadeSize)
	prometheus.MustRegister(FinalScores)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(StatsErrors)
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
