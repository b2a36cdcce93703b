package minstrel_ht

import "github.com/sagernet/sing-minstrel/rate"

// WindowCount numbers statistics windows.
type WindowCount uint64

type peakSample struct {
	value  rate.Bandwidth
	window WindowCount
}

// WindowedFilter tracks the maximum throughput estimate over the last
// windowLength statistics windows, keeping the best, second best and third
// best samples (Kathleen Nichols' algorithm).
type WindowedFilter struct {
	windowLength WindowCount
	estimates    [3]peakSample
	initialized  bool
}

func NewPeakFilter(windowLength WindowCount) *WindowedFilter {
	return &WindowedFilter{windowLength: windowLength}
}

func (f *WindowedFilter) Reset(value rate.Bandwidth, window WindowCount) {
	sample := peakSample{value: value, window: window}
	f.estimates = [3]peakSample{sample, sample, sample}
	f.initialized = true
}

// GetBest returns the best estimate, or zero if not set.
func (f *WindowedFilter) GetBest() rate.Bandwidth {
	return f.estimates[0].value
}

func (f *WindowedFilter) Update(value rate.Bandwidth, window WindowCount) {
	if !f.initialized || value >= f.estimates[0].value ||
		window-f.estimates[2].window > f.windowLength {
		f.Reset(value, window)
		return
	}
	sample := peakSample{value: value, window: window}
	if value >= f.estimates[1].value {
		f.estimates[1] = sample
		f.estimates[2] = sample
	} else if value >= f.estimates[2].value {
		f.estimates[2] = sample
	}

	// the best sample left the window: promote the runners-up
	if window-f.estimates[0].window > f.windowLength {
		f.estimates[0] = f.estimates[1]
		f.estimates[1] = f.estimates[2]
		f.estimates[2] = sample
		if window-f.estimates[0].window > f.windowLength {
			f.estimates[0] = f.estimates[1]
			f.estimates[1] = f.estimates[2]
		}
		return
	}

	if f.estimates[1].value == f.estimates[0].value &&
		window-f.estimates[1].window > f.windowLength/4 {
		f.estimates[1] = sample
		f.estimates[2] = sample
		return
	}
	if f.estimates[2].value == f.estimates[1].value &&
		window-f.estimates[2].window > f.windowLength/2 {
		f.estimates[2] = sample
	}
}
