package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CodeCollisions counts candidate codes rejected by the store as already issued.
	// A rising rate means the code space is saturating.
	CodeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortener_code_collisions_total",
			Help: "Total number of generated short codes that collided with an issued code",
		},
	)

	Creations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_creations_total",
			Help: "Total number of create attempts by result",
		},
		[]string{"result"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_cache_lookups_total",
			Help: "Total number of cache lookups by result",
		},
		[]string{"result"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_cache_errors_total",
			Help: "Total number of swallowed cache failures by operation",
		},
		[]string{"op"},
	)
)

// Creation results.
const (
	ResultCreated   = "created"
	ResultExhausted = "exhausted"
	ResultFailed    = "failed"
	ResultInvalid   = "invalid"
)

// Cache lookup results.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)
