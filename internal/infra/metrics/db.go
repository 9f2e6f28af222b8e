package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(dbPoolConnections, dbPoolMaxConnections, dbPoolAcquireWaitSeconds) }

var (
	dbPoolConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tutor_db_pool_connections",
			Help: "Connections held by the Postgres pool shared by handlers and roadmap runs.",
		},
		[]string{"state"}, // 'idle', 'acquired'
	)

	dbPoolMaxConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tutor_db_pool_max_connections",
			Help: "Configured upper bound of the Postgres pool.",
		},
	)

	dbPoolAcquireWaitSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tutor_db_pool_acquire_wait_seconds",
			Help: "Cumulative time spent waiting for a pooled connection.",
		},
	)
)

// DBPoolSnapshot is one reading of the connection pool.
type DBPoolSnapshot struct {
	Idle        int32
	Acquired    int32
	Max         int32
	AcquireWait time.Duration
}

func ObserveDBPool(s DBPoolSnapshot) {
	dbPoolConnections.WithLabelValues("idle").Set(float64(s.Idle))
	dbPoolConnections.WithLabelValues("acquired").Set(float64(s.Acquired))
	dbPoolMaxConnections.Set(float64(s.Max))
	dbPoolAcquireWaitSeconds.Set(s.AcquireWait.Seconds())
}
