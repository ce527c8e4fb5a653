package autotune

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weld_autotune_cache_hits_total",
		Help: "Total number of autotune winner-cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weld_autotune_cache_misses_total",
		Help: "Total number of autotune winner-cache misses (benchmark runs)",
	})
)
