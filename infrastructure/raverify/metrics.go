package raverify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for verification outcomes,
// scoped to this package's own concern instead of generic HTTP/DB metrics.
type Metrics struct {
	VerificationsTotal *prometheus.CounterVec
	VerifyDuration     prometheus.Histogram
}

// NewMetrics registers the collectors against registerer (typically
// prometheus.DefaultRegisterer).
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		VerificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raverify_verifications_total",
			Help: "Attested certificate verifications by result.",
		}, []string{"result"}),
		VerifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "raverify_verify_duration_seconds",
			Help:    "Wall-clock duration of VerifyCert calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	registerer.MustRegister(m.VerificationsTotal, m.VerifyDuration)
	return m
}

// Hook returns a Hooks.OnResult function that records outcome counts. The
// duration is not measurable from the hook alone (it fires after
// VerifyCert returns); VerifyCertTimed below measures it end to end instead.
func (m *Metrics) Hook() func(now time.Time, result *CertVerifyResult, err error) {
	return func(_ time.Time, _ *CertVerifyResult, err error) {
		result := "accepted"
		if err != nil {
			result = "rejected"
			if se, ok := asServiceError(err); ok {
				result = string(se.Code)
			}
		}
		m.VerificationsTotal.WithLabelValues(result).Inc()
	}
}

// VerifyCertTimed wraps v.VerifyCert with a duration observation,
// independent of Hooks (which only see the result, not the call span).
func (m *Metrics) VerifyCertTimed(v *Verifier, certificateDER []byte, now time.Time) (*CertVerifyResult, error) {
	start := time.Now()
	result, err := v.VerifyCert(certificateDER, now)
	m.VerifyDuration.Observe(time.Since(start).Seconds())
	return result, err
}
