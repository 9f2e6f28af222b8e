package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiTokensIn,
		aiTokensOut,
		aiCallsLatencyMs,
		aiCallsInFlight,
	)
}

var (
	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Sum of completion (output) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "Tutoring oracle call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 20000, 40000, 90000},
		},
		[]string{"provider", "operation", "success"},
	)

	aiCallsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ai_calls_in_flight",
			Help: "Tutoring oracle calls currently holding a concurrency slot.",
		},
	)
)

func ObserveOracleCall(provider, operation string, latencyMs int64, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(operation), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func ObserveTokenUsage(provider, model string, tokensIn, tokensOut int) {
	lbl := []string{norm(provider), norm(model)}
	aiTokensIn.WithLabelValues(lbl...).Add(float64(tokensIn))
	aiTokensOut.WithLabelValues(lbl...).Add(float64(tokensOut))
}

func IncOracleInFlight() { aiCallsInFlight.Inc() }
func DecOracleInFlight() { aiCallsInFlight.Dec() }
