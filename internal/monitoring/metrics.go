package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	barsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_bars_processed_total",
		Help: "Number of base-timeframe bars fed through the engine",
	})

	equityGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_equity",
		Help: "Total account value at the latest bar close",
	})

	poolGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_pool_cash",
		Help: "Free cash per capital pool",
	}, []string{"pool"})

	priceGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_last_price",
		Help: "Close of the latest processed bar",
	})

	regimeGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_regime",
		Help: "Active market regime (1 for the active label, 0 otherwise)",
	}, []string{"regime"})

	channelGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_channel_bound",
		Help: "Current trading channel bounds",
	}, []string{"edge"})

	tradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_trades_total",
		Help: "Closed trades by category and side",
	}, []string{"category", "side"})

	tradePnL = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_trade_pnl_total",
		Help: "Cumulative realized PnL by category",
	}, []string{"category"})

	rejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_signal_rejections_total",
		Help: "Rejected signals by reason",
	}, []string{"reason"})
)

var regimeLabels = []string{"UNCERTAIN", "RANGE_BOUND", "TRENDING_UP", "TRENDING_DOWN"}

// RecordBar updates the per-bar gauges after one processed bar.
func RecordBar(close, equity, trendCash, gridCash, boxHigh, boxLow float64, regime string) {
	barsProcessed.Inc()
	priceGauge.Set(close)
	equityGauge.Set(equity)
	poolGauge.WithLabelValues("trend").Set(trendCash)
	poolGauge.WithLabelValues("grid").Set(gridCash)
	channelGauge.WithLabelValues("high").Set(boxHigh)
	channelGauge.WithLabelValues("low").Set(boxLow)

	for _, label := range regimeLabels {
		v := 0.0
		if label == regime {
			v = 1.0
		}
		regimeGauge.WithLabelValues(label).Set(v)
	}
}

// RecordTrade counts one closed trade.
func RecordTrade(category, side string, pnl float64) {
	tradesTotal.WithLabelValues(category, side).Inc()
	tradePnL.WithLabelValues(category).Add(pnl)
}

// RecordRejection counts one rejected signal.
func RecordRejection(reason string) {
	rejectionsTotal.WithLabelValues(reason).Inc()
}
