// Package metrics defines the console's Prometheus metrics. Standalone
// package so transport and core packages can record without import cycles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "frontdoor_callback_total",
		Help: "Callback passes by response mode and result",
	}, []string{"mode", "result"})

	PersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frontdoor_user_persist_failures_total",
		Help: "Fire-and-forget user persists that failed and were absorbed",
	})

	GateEvaluations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frontdoor_gate_evaluations_total",
		Help: "Completion-gate evaluations",
	})

	BackendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "frontdoor_backend_requests_total",
		Help: "Requests to the identity provider backend by operation and result",
	}, []string{"op", "result"})
)

// Register registers all console metrics on the given registry (default
// registry if nil). Re-registration is tolerated.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{CallbackTotal, PersistFailures, GateEvaluations, BackendRequests} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
