package profile

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opGet    = "get"

	outcomeOK          = "ok"
	outcomeNotFound    = "not_found"
	outcomeUnavailable = "unavailable"
	outcomeError       = "error"
)

var storeOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "yeartiles",
		Subsystem: "profile_store",
		Name:      "operations_total",
		Help:      "Profile store calls by backend, operation and outcome.",
	},
	[]string{"backend", "op", "outcome"},
)

func observe(backend, op string, err error) {
	storeOperations.WithLabelValues(backend, op, outcomeOf(err)).Inc()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, ErrNotConfigured):
		return outcomeUnavailable
	default:
		return outcomeError
	}
}
