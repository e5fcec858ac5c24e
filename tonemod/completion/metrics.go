package completion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var completionAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "loofah_completion_api_duration_sec",
	Help: "Duration of completion service API calls",
})

var completionAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "loofah_completion_api_count",
	Help: "Number of completion service API calls, by HTTP status code",
}, []string{"status"})
