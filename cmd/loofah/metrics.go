package main

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("loofah")

// registered once; NewServer may run more than once in-process (tests)
var requestMetrics = echoprometheus.NewMiddleware("loofah")

var classifyBatches = promauto.NewCounter(prometheus.CounterOpts{
	Name: "loofah_classify_batches",
	Help: "Number of classification batches processed",
})

var rewriteBatches = promauto.NewCounter(prometheus.CounterOpts{
	Name: "loofah_rewrite_batches",
	Help: "Number of rewrite batches processed",
})

var tokensLearned = promauto.NewCounter(prometheus.CounterOpts{
	Name: "loofah_tokens_learned",
	Help: "Number of preference tokens submitted via learn requests",
})
