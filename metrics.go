package inertia

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of responses that never reach the transformer.
const (
	OutcomeBadRequest      = "bad_request"
	OutcomeVersionConflict = "version_conflict"
	OutcomeError           = "error"
	OutcomeAborted         = "aborted"
)

// Metrics counts requests by protocol class and responses by outcome.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	responses *prometheus.CounterVec
}

// NewMetrics creates the middleware metrics and registers them with reg.
//
// Collectors already registered with reg are reused, so several middleware
// instances may share a registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inertia_requests_total",
			Help: "Requests seen by the Inertia middleware, by protocol class",
		},
		[]string{"class"},
	))
	if err != nil {
		return nil, err
	}

	responses, err := registerCounterVec(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inertia_responses_total",
			Help: "Responses produced by the Inertia middleware, by outcome",
		},
		[]string{"outcome"},
	))
	if err != nil {
		return nil, err
	}

	return &Metrics{requests: requests, responses: responses}, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}

		return nil, fmt.Errorf("inertia: failed to register metrics: %w", err)
	}

	return c, nil
}

func (m *Metrics) observeRequest(class Class) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(class.String()).Inc()
}

func (m *Metrics) observeResponse(outcome string) {
	if m == nil || outcome == "" {
		return
	}

	m.responses.WithLabelValues(outcome).Inc()
}
