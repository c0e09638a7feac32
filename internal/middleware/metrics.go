package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency by method, path and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "path", "status"},
	)

	// OrdersTotal counts orders by action and outcome.
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "limitbook_orders_total",
			Help: "Total number of orders processed, by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// RejectsTotal counts rejected orders by reason.
	RejectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "limitbook_rejects_total",
			Help: "Total number of rejected orders by reason",
		},
		[]string{"reason"},
	)

	// TradesTotal counts executed trades.
	TradesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "limitbook_trades_total",
			Help: "Total number of trades executed",
		},
	)

	// SelfTradePreventionsTotal counts STP interventions by action taken.
	SelfTradePreventionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "limitbook_stp_total",
			Help: "Total number of self-trade prevention interventions by resulting action",
		},
		[]string{"action"},
	)

	// OrderBookDepth tracks order book depth as a count of price levels.
	OrderBookDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "limitbook_orderbook_depth",
			Help: "Current order book depth in distinct price levels",
		},
		[]string{"side"},
	)

	// SequencerOutboundSeq tracks the current outbound sequence number.
	SequencerOutboundSeq = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "limitbook_sequencer_outbound_seq",
			Help: "Current outbound sequence number",
		},
	)
)

// PrometheusMiddleware records request latency metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Observe(duration)
	}
}
