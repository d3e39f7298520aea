// Package metrics holds the Prometheus instruments for platform calls, key
// redemptions and session health.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes application-level instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	platformRequests *prometheus.CounterVec
	platformLatency  *prometheus.HistogramVec
	csrfRetries      *prometheus.CounterVec
	redemptions      *prometheus.CounterVec
	codesGenerated   prometheus.Counter
	rankChanges      *prometheus.CounterVec
	sessionValid     prometheus.Gauge
	activeCodes      prometheus.Gauge
}

// New creates the instruments and registers them on registerer. A nil
// registerer falls back to prometheus.DefaultRegisterer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		platformRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "groupkeeper_platform_requests_total",
			Help: "Platform requests by operation and final HTTP status.",
		}, []string{"operation", "status"}),
		platformLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "groupkeeper_platform_request_duration_seconds",
			Help:    "Platform request latency including any CSRF retry.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		csrfRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "groupkeeper_platform_csrf_retries_total",
			Help: "CSRF challenges answered with a single retry, by outcome.",
		}, []string{"operation", "outcome"}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "groupkeeper_redemptions_total",
			Help: "Invite code redemptions by result.",
		}, []string{"result"}),
		codesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "groupkeeper_codes_generated_total",
			Help: "Invite codes minted.",
		}),
		rankChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "groupkeeper_rank_changes_total",
			Help: "Rank change requests by kind and result.",
		}, []string{"kind", "result"}),
		sessionValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "groupkeeper_platform_session_valid",
			Help: "1 when the last session check accepted the credential, 0 otherwise.",
		}),
		activeCodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "groupkeeper_active_codes",
			Help: "Unused invite codes at the last report.",
		}),
	}

	registerer.MustRegister(
		m.platformRequests,
		m.platformLatency,
		m.csrfRetries,
		m.redemptions,
		m.codesGenerated,
		m.rankChanges,
		m.sessionValid,
		m.activeCodes,
	)
	return m
}

// ObservePlatformRequest records the final status of one logical platform call.
// status 0 means the request never produced a response.
func (m *Metrics) ObservePlatformRequest(operation string, status int, seconds float64) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.platformRequests.WithLabelValues(operation, label).Inc()
	m.platformLatency.WithLabelValues(operation).Observe(seconds)
}

// ObserveCSRFRetry records whether a retried request cleared the challenge.
func (m *Metrics) ObserveCSRFRetry(operation string, cleared bool) {
	if m == nil {
		return
	}
	outcome := "cleared"
	if !cleared {
		outcome = "rechallenged"
	}
	m.csrfRetries.WithLabelValues(operation, outcome).Inc()
}

// ObserveRedemption records a redemption result ("redeemed", "unknown_code", ...).
func (m *Metrics) ObserveRedemption(result string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(result).Inc()
}

// AddGenerated records n newly minted codes.
func (m *Metrics) AddGenerated(n int) {
	if m == nil {
		return
	}
	m.codesGenerated.Add(float64(n))
}

// ObserveRankChange records a promote, demote, set or kick result.
func (m *Metrics) ObserveRankChange(kind, result string) {
	if m == nil {
		return
	}
	m.rankChanges.WithLabelValues(kind, result).Inc()
}

// SetSessionValid records the outcome of the latest session check.
func (m *Metrics) SetSessionValid(valid bool) {
	if m == nil {
		return
	}
	if valid {
		m.sessionValid.Set(1)
	} else {
		m.sessionValid.Set(0)
	}
}

// SetActiveCodes records how many codes remain unused.
func (m *Metrics) SetActiveCodes(n int) {
	if m == nil {
		return
	}
	m.activeCodes.Set(float64(n))
}
