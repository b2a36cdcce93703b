package minstrel_ht

import (
	"github.com/sagernet/sing-minstrel/rate"
)

// RateStats holds the counters and estimates of one rate.
type RateStats struct {
	// Counters of the current statistics window.
	Attempts  uint32
	Successes uint32
	// Counters of the previous statistics window.
	LastAttempts  uint32
	LastSuccesses uint32
	// Lifetime counters.
	TotalAttempts  uint64
	TotalSuccesses uint64
	// Number of frames sent at this rate as a sampling probe.
	Probes uint64

	ProbAvg    Probability
	Throughput rate.Bandwidth

	observed bool
}

// Observed reports whether the rate has ever completed a window with attempts.
func (s *RateStats) Observed() bool {
	return s.observed
}

// closeWindow folds the window counters into the average and resets them.
// The first window with attempts sets the average directly.
func (s *RateStats) closeWindow(level int) {
	if s.Attempts > 0 {
		cur := FracProbability(s.Successes, s.Attempts)
		if s.observed {
			s.ProbAvg = ewma(s.ProbAvg, cur, level)
		} else {
			s.ProbAvg = cur
			s.observed = true
		}
	}
	s.LastAttempts = s.Attempts
	s.LastSuccesses = s.Successes
	s.TotalAttempts += uint64(s.Attempts)
	s.TotalSuccesses += uint64(s.Successes)
	s.Attempts = 0
	s.Successes = 0
}

// statsStore owns the RateStats of every group, allocated once per station.
type statsStore struct {
	groups [][rate.MaxGroupRates]RateStats
}

func newStatsStore(groups int) statsStore {
	return statsStore{groups: make([][rate.MaxGroupRates]RateStats, groups)}
}

func (s *statsStore) get(id rate.ID) *RateStats {
	return &s.groups[id.Group()][id.Index()]
}

func (s *statsStore) record(id rate.ID, attempts, successes uint32) {
	stats := s.get(id)
	if successes > attempts {
		successes = attempts
	}
	stats.Attempts += attempts
	stats.Successes += successes
}
