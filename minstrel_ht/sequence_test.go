package minstrel_ht

import (
	"testing"

	"github.com/sagernet/sing-minstrel/rate"
	"github.com/stretchr/testify/require"
)

func TestSequencerDrainsInRatio(t *testing.T) {
	s, _ := newTestStation(t, threeGroupCaps(), testParams())
	r1, r2, r3 := rate.NewID(1, 3), rate.NewID(2, 2), rate.NewID(0, 3)
	s.sample[SampleIncremental].current[0] = r1
	s.sample[SampleJump].current[0] = r2
	s.sample[SampleSlow].current[0] = r3

	var (
		got   []rate.ID
		types []SampleType
	)
	for i := 0; i < len(sampleSequence); i++ {
		id, sampleType := s.nextSampleRate()
		got = append(got, id)
		types = append(types, sampleType)
	}
	require.Equal(t, []rate.ID{r1, r2, rate.None, rate.None, rate.None, r3}, got)
	require.Equal(t, []SampleType{
		SampleIncremental, SampleJump, SampleIncremental, SampleJump, SampleIncremental, SampleSlow,
	}, types)
	require.Zero(t, s.sampleSeq)
}

func TestDrawSampleSkipsConsumedSlots(t *testing.T) {
	s, _ := newTestStation(t, threeGroupCaps(), testParams())
	category := &s.sample[SampleJump]
	category.rates[0] = rate.NewID(1, 3)
	category.current = [SampleRates]rate.ID{rate.None, rate.NewID(2, 3), rate.None, rate.NewID(1, 3)}

	require.Equal(t, rate.NewID(2, 3), s.drawSample(SampleJump))
	require.Equal(t, rate.NewID(1, 3), s.drawSample(SampleJump))
	require.False(t, s.drawSample(SampleJump).IsValid())
	// draining never touches the refill pool
	require.Equal(t, rate.NewID(1, 3), category.rates[0])
}
