package minstrel_ht

import (
	"testing"

	"github.com/sagernet/sing-minstrel/rate"
	"github.com/stretchr/testify/require"
)

func TestPeakFilterTracksMaximum(t *testing.T) {
	f := NewPeakFilter(4)
	require.Zero(t, f.GetBest())

	f.Update(10*rate.MBitsPerSecond, 1)
	f.Update(30*rate.MBitsPerSecond, 2)
	f.Update(20*rate.MBitsPerSecond, 3)
	require.Equal(t, 30*rate.MBitsPerSecond, f.GetBest())
}

func TestPeakFilterExpires(t *testing.T) {
	f := NewPeakFilter(4)
	f.Update(30*rate.MBitsPerSecond, 1)
	for window := WindowCount(2); window <= 6; window++ {
		f.Update(10*rate.MBitsPerSecond, window)
	}
	require.Equal(t, 10*rate.MBitsPerSecond, f.GetBest())
}
