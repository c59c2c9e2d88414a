package encsrv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	encodesTotal   *prometheus.CounterVec
	encodeErrors   prometheus.Counter
	encodedBits    prometheus.Counter
	encodeSeconds  prometheus.Histogram
	rmAdjustments  prometheus.Counter
	activeEncoders prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		encodesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "nrldpc_encodes_total",
			Help: "Completed encode jobs.",
		}, []string{"base_graph"}),
		encodeErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nrldpc_encode_errors_total",
			Help: "Encode jobs rejected or failed.",
		}),
		encodedBits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nrldpc_encoded_bits_total",
			Help: "Codeword bits produced.",
		}),
		encodeSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "nrldpc_encode_seconds",
			Help:    "Wall time of one encode call.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		rmAdjustments: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nrldpc_rate_match_adjustments_total",
			Help: "Jobs whose requested rate-matched length was normalized.",
		}),
		activeEncoders: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "nrldpc_active_encoders",
			Help: "Encoder instances currently cached.",
		}),
	}
}
