package querytpl

import (
	"github.com/prometheus/client_golang/prometheus"
)

// engineMetrics holds the engine's Prometheus collectors. A nil
// *engineMetrics records nothing.
type engineMetrics struct {
	builds       *prometheus.CounterVec
	buildErrors  *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

func newEngineMetrics(reg prometheus.Registerer) (*engineMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &engineMetrics{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      MetricBuildsTotal,
			Help:      "Number of query builds, by result.",
		}, []string{MetricLabelResult}),
		buildErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      MetricBuildErrorsTotal,
			Help:      "Number of failed query builds, by error code.",
		}, []string{MetricLabelCode}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      MetricCacheLookupsTotal,
			Help:      "Number of compiled template cache lookups, by result.",
		}, []string{MetricLabelResult}),
	}

	for _, c := range []prometheus.Collector{m.builds, m.buildErrors, m.cacheLookups} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *engineMetrics) observeBuild(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.builds.WithLabelValues(MetricResultError).Inc()
		m.buildErrors.WithLabelValues(ErrorCode(err)).Inc()
		return
	}
	m.builds.WithLabelValues(MetricResultSuccess).Inc()
}

func (m *engineMetrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues(MetricResultHit).Inc()
		return
	}
	m.cacheLookups.WithLabelValues(MetricResultMiss).Inc()
}
