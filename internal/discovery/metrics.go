package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus instruments. Keeping them in one
// struct lets callers choose the registry they land in.
type Metrics struct {
	Scans             *prometheus.CounterVec
	ScanFailures      *prometheus.CounterVec
	DecodeRejects     *prometheus.CounterVec
	PoolsDiscovered   *prometheus.CounterVec
	BestPoolRequests  *prometheus.CounterVec
	RefreshPasses     prometheus.Counter
	DiscoveryDuration prometheus.Histogram
	IndexPools        prometheus.Gauge
}

// NewMetrics creates the engine metrics and registers them with reg. A nil
// reg leaves them unregistered, which suits tests and embedded use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Scans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poolscout",
			Name:      "scans_total",
			Help:      "Filtered program-account scans issued, per protocol.",
		}, []string{"protocol"}),

		ScanFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poolscout",
			Name:      "scan_failures_total",
			Help:      "Protocol scans abandoned after exhausting retries.",
		}, []string{"protocol"}),

		DecodeRejects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poolscout",
			Name:      "decode_rejects_total",
			Help:      "Account hits rejected by a protocol decoder, by reason.",
		}, []string{"protocol", "reason"}),

		PoolsDiscovered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poolscout",
			Name:      "pools_discovered_total",
			Help:      "Successfully decoded pool records per protocol.",
		}, []string{"protocol"}),

		BestPoolRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poolscout",
			Name:      "best_pool_requests_total",
			Help:      "Best-pool selections by outcome.",
		}, []string{"outcome"}),

		RefreshPasses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "poolscout",
			Name:      "refresh_passes_total",
			Help:      "Background refresh passes run against the index.",
		}),

		DiscoveryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "poolscout",
			Name:      "discovery_duration_seconds",
			Help:      "Wall time of a full per-token discovery across protocols.",
			Buckets:   prometheus.DefBuckets,
		}),

		IndexPools: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "poolscout",
			Name:      "index_pools",
			Help:      "Pool records currently held by the index.",
		}),
	}
}
