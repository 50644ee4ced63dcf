package session

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once

	loginsTotal   *prometheus.CounterVec
	renewalsTotal *prometheus.CounterVec
	resolvesTotal *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photoshare",
			Subsystem: "identity",
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"})

		renewalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photoshare",
			Subsystem: "identity",
			Name:      "renewals_total",
			Help:      "Credential renewals by outcome",
		}, []string{"outcome"})

		resolvesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photoshare",
			Subsystem: "identity",
			Name:      "resolves_total",
			Help:      "Access-token resolutions by cache outcome",
		}, []string{"outcome"})

		for _, collector := range []*prometheus.CounterVec{loginsTotal, renewalsTotal, resolvesTotal} {
			if err := prometheus.Register(collector); err != nil {
				if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
					if v, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
						switch collector {
						case loginsTotal:
							loginsTotal = v
						case renewalsTotal:
							renewalsTotal = v
						case resolvesTotal:
							resolvesTotal = v
						}
					}
				}
			}
		}
	})
}

func record(vec *prometheus.CounterVec, outcome string) {
	if vec == nil {
		return
	}
	vec.With(prometheus.Labels{"outcome": outcome}).Inc()
}
