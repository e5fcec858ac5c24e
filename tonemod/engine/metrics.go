package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var itemsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "loofah_engine_items_classified",
	Help: "Number of items classified, by suggestion",
}, []string{"suggestion"})

var heuristicHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "loofah_engine_heuristic_hits",
	Help: "Number of heuristic category hits during classification",
}, []string{"category"})
