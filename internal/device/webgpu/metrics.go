package webgpu

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	poolHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weld_webgpu_pool_hits_total",
		Help: "Total number of successful buffer pool retrievals",
	})

	poolMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weld_webgpu_pool_misses_total",
		Help: "Total number of buffer pool misses (allocations)",
	})

	poolBuffers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "weld_webgpu_pool_buffers_count",
		Help: "Current total number of buffers in the pool",
	})
)
