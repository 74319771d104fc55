package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics counts business events: history rows written, registration
// decisions and login attempts. A nil *DomainMetrics is a no-op.
type DomainMetrics struct {
	history       *prometheus.CounterVec
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
}

// NewDomainMetrics registers the domain counters on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	history := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "site_equipment_history_events_total",
		Help: "History rows written, by action.",
	}, []string{"action"})
	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registration_requests_total",
		Help: "Registration requests by outcome.",
	}, []string{"outcome"})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(history, registrations, logins)
	return &DomainMetrics{
		history:       history,
		registrations: registrations,
		logins:        logins,
	}
}

// IncHistory adds n history rows for action.
func (m *DomainMetrics) IncHistory(action string, n int) {
	if m == nil || m.history == nil || n <= 0 {
		return
	}
	m.history.WithLabelValues(normalizeLabel(action)).Add(float64(n))
}

// IncRegistration counts a registration outcome (requested, approved, denied).
func (m *DomainMetrics) IncRegistration(outcome string) {
	if m == nil || m.registrations == nil {
		return
	}
	m.registrations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncLogin counts a login outcome (success, failure).
func (m *DomainMetrics) IncLogin(outcome string) {
	if m == nil || m.logins == nil {
		return
	}
	m.logins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
