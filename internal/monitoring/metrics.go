package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	signalsValidated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentry_signals_validated_total",
			Help: "Candidate signals accepted by the validator",
		},
		[]string{"symbol", "strength"},
	)

	signalsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentry_signals_rejected_total",
			Help: "Candidate signals rejected, by first failing layer",
		},
		[]string{"symbol", "reason"},
	)

	signalScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentry_signal_score",
			Help:    "Distribution of composite validation scores",
			Buckets: prometheus.LinearBuckets(0.0, 0.1, 11),
		},
		[]string{"symbol"},
	)

	openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentry_open_positions",
			Help: "Positions currently holding a concurrency slot",
		},
	)

	tradesClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentry_trades_closed_total",
			Help: "Closed trades by exit reason",
		},
		[]string{"symbol", "reason"},
	)

	// A gauge, not a counter: losing trades move this down.
	realizedPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentry_realized_pnl",
			Help: "Cumulative realized profit and loss",
		},
	)

	dailyLoss = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentry_daily_loss",
			Help: "Realized loss accumulated against the daily budget",
		},
	)

	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentry_current_price",
			Help: "Latest observed price per symbol",
		},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(signalsValidated)
	prometheus.MustRegister(signalsRejected)
	prometheus.MustRegister(signalScore)
	prometheus.MustRegister(openPositions)
	prometheus.MustRegister(tradesClosed)
	prometheus.MustRegister(realizedPnL)
	prometheus.MustRegister(dailyLoss)
	prometheus.MustRegister(currentPrice)
}

// RecordSignalAccepted records an accepted signal and its score.
func RecordSignalAccepted(symbol, strength string, score float64) {
	signalsValidated.WithLabelValues(symbol, strength).Inc()
	signalScore.WithLabelValues(symbol).Observe(score)
}

// RecordSignalRejected records a rejection with its first failing layer.
func RecordSignalRejected(symbol, reason string) {
	signalsRejected.WithLabelValues(symbol, reason).Inc()
}

// SetOpenPositions updates the open-position gauge.
func SetOpenPositions(count int) {
	openPositions.Set(float64(count))
}

// RecordTradeClosed records a closed trade and its realized P&L.
func RecordTradeClosed(symbol, reason string, pnl float64) {
	tradesClosed.WithLabelValues(symbol, reason).Inc()
	realizedPnL.Add(pnl)
}

// SetDailyLoss updates the daily loss gauge.
func SetDailyLoss(loss float64) {
	dailyLoss.Set(loss)
}

// UpdatePrice updates the latest price gauge for a symbol.
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// Handler returns the Prometheus metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
