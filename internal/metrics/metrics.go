// Package metrics exposes prometheus counters for account and reservation outcomes.
package metrics

import (
	"apartmani/internal/common"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// accountOperations counts account lifecycle calls by operation and error kind.
	accountOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apartmani_account_operations_total",
		Help: "Total number of account lifecycle operations by outcome",
	}, []string{"operation", "outcome"})

	// reservationAttempts counts reservation create calls by error kind.
	reservationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apartmani_reservation_attempts_total",
		Help: "Total number of reservation create attempts by outcome",
	}, []string{"outcome"})

	// gateRejections counts bearer tokens rejected by the authorization gate.
	gateRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apartmani_auth_gate_rejections_total",
		Help: "Total number of requests rejected by the authorization gate",
	}, []string{"reason"})

	// resetTokensSwept counts expired password reset tokens cleared by the sweeper.
	resetTokensSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apartmani_password_reset_tokens_swept_total",
		Help: "Total number of expired password reset tokens cleared",
	})
)

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return common.KindOf(err).String()
}

func ObserveAccountOperation(operation string, err error) {
	accountOperations.WithLabelValues(operation, outcome(err)).Inc()
}

func ObserveReservationAttempt(err error) {
	reservationAttempts.WithLabelValues(outcome(err)).Inc()
}

func ObserveGateRejection(reason string) {
	gateRejections.WithLabelValues(reason).Inc()
}

func ObserveResetTokensSwept(n int64) {
	if n > 0 {
		resetTokensSwept.Add(float64(n))
	}
}
