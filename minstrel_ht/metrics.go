package minstrel_ht

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports rate control activity. A single instance may be shared by
// every station; a nil *Metrics disables collection.
type Metrics struct {
	windows   prometheus.Counter
	probes    *prometheus.CounterVec
	attempts  prometheus.Counter
	successes prometheus.Counter
	poolSize  *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		windows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minstrel",
			Name:      "windows_total",
			Help:      "Statistics windows closed.",
		}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minstrel",
			Name:      "probes_total",
			Help:      "Sampling probes handed to the transmit path.",
		}, []string{"category"}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minstrel",
			Name:      "attempts_total",
			Help:      "Transmission attempts reported as feedback.",
		}),
		successes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "minstrel",
			Name:      "successes_total",
			Help:      "Successful transmission attempts reported as feedback.",
		}),
		poolSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "minstrel",
			Name:      "sample_pool_size",
			Help:      "Candidates per sample category after a refill.",
			Buckets:   prometheus.LinearBuckets(0, 1, SampleRates+1),
		}, []string{"category"}),
	}
	if registerer != nil {
		for _, collector := range []prometheus.Collector{m.windows, m.probes, m.attempts, m.successes, m.poolSize} {
			err := registerer.Register(collector)
			if err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) probe(sampleType SampleType) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(sampleType.String()).Inc()
}

func (m *Metrics) feedback(attempts, successes uint32) {
	if m == nil {
		return
	}
	m.attempts.Add(float64(attempts))
	m.successes.Add(float64(successes))
}

func (m *Metrics) window(s *Station) {
	if m == nil {
		return
	}
	m.windows.Inc()
	for sampleType := SampleIncremental; sampleType < sampleTypeCount; sampleType++ {
		m.poolSize.WithLabelValues(sampleType.String()).Observe(float64(s.sample[sampleType].size()))
	}
}
