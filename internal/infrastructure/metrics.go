package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts allow-list changes and chatbot access decisions.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	contactsAdded   prometheus.Counter
	contactsRemoved prometheus.Counter
	accessDecisions *prometheus.CounterVec
}

// NewMetrics registers the console metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		contactsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "easy_admin_contacts_added_total",
			Help: "Total number of allow-list users created",
		}),
		contactsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "easy_admin_contacts_removed_total",
			Help: "Total number of phone-bearing users removed",
		}),
		accessDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "easy_admin_access_decisions_total",
			Help: "Chatbot access decisions by platform and outcome",
		}, []string{"platform", "outcome"}),
	}
}

func (m *Metrics) ContactsAdded(n int) {
	if m == nil {
		return
	}
	m.contactsAdded.Add(float64(n))
}

func (m *Metrics) ContactsRemoved(n int) {
	if m == nil {
		return
	}
	m.contactsRemoved.Add(float64(n))
}

func (m *Metrics) AccessDecision(platform string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.accessDecisions.WithLabelValues(platform, outcome).Inc()
}
