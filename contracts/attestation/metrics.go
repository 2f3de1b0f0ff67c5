package attestation

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "revenue_attestation"

// Metrics counts successfully executed contract operations.
type Metrics struct {
	submissions prometheus.Counter
	revocations prometheus.Counter
	migrations  prometheus.Counter
	fees        prometheus.Counter
	disputes    *prometheus.CounterVec
	proposals   *prometheus.CounterVec
	rotations   *prometheus.CounterVec
}

// NewMetrics creates contract metrics and registers them in reg. Nil reg
// leaves the metrics unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "submissions_total",
			Help:      "Number of stored attestations",
		}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "revocations_total",
			Help:      "Number of revoked attestations",
		}),
		migrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "migrations_total",
			Help:      "Number of migrated attestations",
		}),
		fees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fees_collected_total",
			Help:      "Amount of collected fees in the smallest token units",
		}),
		disputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "disputes_total",
			Help:      "Number of dispute state transitions",
		}, []string{"status"}),
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "executed_proposals_total",
			Help:      "Number of executed governance proposals",
		}, []string{"action"}),
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "key_rotations_total",
			Help:      "Number of completed admin key rotations",
		}, []string{"kind"}),
	}

	if reg != nil {
		reg.MustRegister(m.submissions, m.revocations, m.migrations, m.fees,
			m.disputes, m.proposals, m.rotations)
	}

	return m
}

func (m *Metrics) submitted(n int) {
	m.submissions.Add(float64(n))
}

func (m *Metrics) revoked() {
	m.revocations.Inc()
}

func (m *Metrics) migrated() {
	m.migrations.Inc()
}

func (m *Metrics) feeCollected(amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	f, _ := new(big.Float).SetInt(amount).Float64()
	m.fees.Add(f)
}

func (m *Metrics) dispute(status string) {
	m.disputes.WithLabelValues(status).Inc()
}

func (m *Metrics) proposalExecuted(action string) {
	m.proposals.WithLabelValues(action).Inc()
}

func (m *Metrics) keyRotated(emergency bool) {
	kind := "regular"
	if emergency {
		kind = "emergency"
	}
	m.rotations.WithLabelValues(kind).Inc()
}
