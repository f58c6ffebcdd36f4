package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/instreg/registration-admin/internal/core/port"
)

// DecisionRecorder counts authorization decisions by outcome and reason.
type DecisionRecorder struct {
	decisions *prometheus.CounterVec
}

// NewDecisionRecorder registers the decision counter on the default registerer.
func NewDecisionRecorder(namespace string) *DecisionRecorder {
	return &DecisionRecorder{
		decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_decisions_total",
			Help:      "Authorization decisions by outcome and reason.",
		}, []string{"outcome", "reason"}),
	}
}

// Record increments the counter for one decision.
func (r *DecisionRecorder) Record(outcome, reason string) {
	r.decisions.WithLabelValues(outcome, reason).Inc()
}

var _ port.DecisionRecorder = (*DecisionRecorder)(nil)
