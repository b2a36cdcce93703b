package minstrel_ht

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sagernet/sing-minstrel/rate"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry)
	require.NoError(t, err)

	s, err := NewStation(StationOptions{
		Capabilities: threeGroupCaps(),
		Params:       testParams(),
		Clock:        clock.NewMock(),
		Metrics:      metrics,
	})
	require.NoError(t, err)
	s.Feedback(report(rate.NewID(0, 0), 3, 2))
	s.UpdateStats()
	require.True(t, s.Select(FrameData).Probe.IsValid())

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.windows))
	require.Equal(t, float64(3), testutil.ToFloat64(metrics.attempts))
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.successes))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.probes.WithLabelValues("incremental")))

	_, err = NewMetrics(registry)
	require.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	var metrics *Metrics
	metrics.probe(SampleJump)
	metrics.feedback(1, 1)
	metrics.window(nil)
}
