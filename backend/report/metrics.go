package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usage_report_builds_total",
		Help: "Usage reports built, partitioned by mode and outcome",
	}, []string{"mode", "outcome"})

	reportQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "usage_report_query_duration_seconds",
		Help:    "Time spent querying the usage log for one report",
		Buckets: prometheus.DefBuckets,
	})

	reportCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usage_report_cache_lookups_total",
		Help: "Report cache lookups, partitioned by result",
	}, []string{"result"})

	reportRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usage_report_renders_total",
		Help: "Rendered usage reports, partitioned by output format",
	}, []string{"format"})
)

// RecordRender counts a report delivered in the given format.
func RecordRender(format string) {
	reportRenders.WithLabelValues(format).Inc()
}

func modeLabel(perUser bool) string {
	if perUser {
		return "per_user"
	}
	return "aggregate"
}
