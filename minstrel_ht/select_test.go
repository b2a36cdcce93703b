package minstrel_ht

import (
	"testing"

	"github.com/sagernet/sing-minstrel/rate"
	"github.com/stretchr/testify/require"
)

func TestSelectDefaultChain(t *testing.T) {
	s, _ := scenarioStation(t)
	decision := s.Select(FrameData)
	require.Equal(t, []rate.ID{rate.NewID(2, 1), rate.NewID(1, 1), rate.NewID(2, 0)}, decision.Chain())
	require.Equal(t, rate.NewID(2, 1), decision.Primary())
	require.False(t, decision.Probe.IsValid())
}

func TestSelectStagesProbe(t *testing.T) {
	s, _ := scenarioStation(t)
	s.refillSamples()

	decision := s.Select(FrameData)
	require.Equal(t, rate.NewID(1, 3), decision.Probe)
	require.Equal(t, SampleIncremental, decision.ProbeType)
	require.Equal(t, []rate.ID{rate.NewID(1, 3), rate.NewID(2, 1), rate.NewID(1, 1), rate.NewID(2, 0)}, decision.Chain())
	require.Equal(t, ProbeActive, s.ProbeState())

	s.Feedback(Report{
		Attempts: []Attempt{{Rate: decision.Probe, Attempts: 1, Successes: 1}},
		Probe:    true,
	})
	require.Equal(t, ProbeIdle, s.ProbeState())
	stats, _ := s.RateStats(rate.NewID(1, 3))
	require.Equal(t, uint64(1), stats.Probes)
	require.Equal(t, uint32(1), stats.Successes)
	maxStats, _ := s.RateStats(rate.NewID(2, 1))
	require.Zero(t, maxStats.Attempts)
}

func TestSelectRateLimit(t *testing.T) {
	s, mockClock := scenarioStation(t)
	s.refillSamples()

	first := s.Select(FrameData)
	require.True(t, first.Probe.IsValid())
	s.Feedback(Report{Attempts: []Attempt{{Rate: first.Probe, Attempts: 1}}, Probe: true})

	second := s.Select(FrameData)
	require.False(t, second.Probe.IsValid())

	mockClock.Add(s.params.SampleInterval / 2)
	require.False(t, s.Select(FrameData).Probe.IsValid())

	mockClock.Add(s.params.SampleInterval / 2)
	third := s.Select(FrameData)
	require.Equal(t, rate.NewID(2, 2), third.Probe)
	require.Equal(t, SampleJump, third.ProbeType)
}

func TestSelectWaitsForProbeFeedback(t *testing.T) {
	s, mockClock := scenarioStation(t)
	s.refillSamples()

	require.True(t, s.Select(FrameData).Probe.IsValid())
	mockClock.Add(s.params.SampleInterval)
	require.False(t, s.Select(FrameData).Probe.IsValid())

	// a window boundary abandons the outstanding probe
	s.UpdateStats()
	require.Equal(t, ProbeIdle, s.ProbeState())
	require.True(t, s.Select(FrameData).Probe.IsValid())
}

func TestSelectSingleRateHardware(t *testing.T) {
	params := SingleRateParams()
	params.Overhead = 0
	s, mockClock := newTestStation(t, threeGroupCaps(), params)
	s.maxTP = [2]rate.ID{rate.NewID(2, 1), rate.NewID(1, 1)}
	s.maxProb = rate.NewID(2, 0)
	s.refillSamples()

	control := s.Select(FrameControl)
	require.False(t, control.Probe.IsValid())
	require.Equal(t, []rate.ID{rate.NewID(2, 1)}, control.Chain())

	// the sequence position is ignored, two probes in a row are incremental
	decision := s.Select(FrameData)
	require.Equal(t, []rate.ID{rate.NewID(1, 3)}, decision.Chain())
	require.Equal(t, SampleIncremental, decision.ProbeType)
	s.Feedback(Report{Attempts: []Attempt{{Rate: decision.Probe, Attempts: 1, Successes: 1}}, Probe: true})
	mockClock.Add(params.SampleInterval)

	decision = s.Select(FrameData)
	require.Equal(t, rate.NewID(2, 2), decision.Probe)
	require.Equal(t, SampleIncremental, decision.ProbeType)
	require.Zero(t, s.sampleSeq)
}

func TestSelectControlFramesWithMultiRateRetry(t *testing.T) {
	s, _ := scenarioStation(t)
	s.refillSamples()
	require.True(t, s.Select(FrameControl).Probe.IsValid())
}

func TestImplicitForcedPromotesOncePerWindow(t *testing.T) {
	params := testParams()
	params.ImplicitMode = ImplicitForced
	s, mockClock := newTestStation(t, threeGroupCaps(), params)

	s.UpdateStats()
	require.Equal(t, []rate.ID{rate.NewID(1, 0), rate.NewID(2, 0), rate.NewID(0, 1)}, s.SampleRates(SampleIncremental))

	decision := s.Select(FrameData)
	require.Equal(t, rate.NewID(1, 0), decision.Probe)
	require.Equal(t, rate.NewID(1, 0), decision.Primary())

	mockClock.Add(params.SampleInterval)
	require.False(t, s.Select(FrameData).Probe.IsValid())
}

func TestImplicitAutoFollowsTraffic(t *testing.T) {
	params := SingleRateParams()
	params.Overhead = 0
	params.ImplicitPacketThreshold = 2
	s, mockClock := newTestStation(t, threeGroupCaps(), params)

	s.Feedback(report(rate.NewID(0, 0), 1, 1))
	s.UpdateStats()
	require.False(t, s.implicitSwitching())
	decision := s.Select(FrameData)
	require.Equal(t, SampleIncremental, decision.ProbeType)
	require.True(t, decision.Probe.IsValid())

	for i := 0; i < 3; i++ {
		s.Feedback(report(rate.NewID(0, 0), 1, 1))
	}
	s.UpdateStats()
	require.True(t, s.implicitSwitching())
	promoted := s.promoted
	require.True(t, promoted.IsValid())

	require.False(t, s.Select(FrameControl).Probe.IsValid())
	require.Equal(t, promoted, s.promoted)
	decision = s.Select(FrameData)
	require.Equal(t, promoted, decision.Probe)
	mockClock.Add(params.SampleInterval)
	require.False(t, s.Select(FrameData).Probe.IsValid())
}
