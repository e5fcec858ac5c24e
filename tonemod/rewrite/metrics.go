package rewrite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rewritesServed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "loofah_rewrites_served",
	Help: "Number of rewritten items, by serving path and style",
}, []string{"source", "style"})
