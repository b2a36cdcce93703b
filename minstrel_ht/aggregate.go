package minstrel_ht

import (
	"github.com/sagernet/sing-minstrel/rate"
)

var (
	minUsefulProbability = FracProbability(10, 100)
	maxUsefulProbability = FracProbability(90, 100)
)

// throughput estimates the goodput of id at success probability prob.
// Rates below 10% are considered useless, and probabilities above 90% are
// capped since retransmissions hide the remaining loss anyway.
func (s *Station) throughput(id rate.ID, prob Probability) rate.Bandwidth {
	if prob < minUsefulProbability {
		return 0
	}
	if prob > maxUsefulProbability {
		prob = maxUsefulProbability
	}
	airtime := s.caps.Duration(id) + s.params.Overhead
	return rate.BandwidthFromDelta(s.params.FrameLength, airtime) * rate.Bandwidth(prob) >> probabilityShift
}

// betterThroughput orders rates by throughput, then by duration. Duration
// only decides between rates with a non-zero estimate so that untested fast
// rates never win on airtime alone.
func (s *Station) betterThroughput(a, b rate.ID) bool {
	tpA := s.stats.get(a).Throughput
	tpB := s.stats.get(b).Throughput
	if tpA != tpB {
		return tpA > tpB
	}
	return tpA > 0 && s.caps.Duration(a) < s.caps.Duration(b)
}

func (s *Station) betterProbability(a, b rate.ID) bool {
	probA := s.stats.get(a).ProbAvg
	probB := s.stats.get(b).ProbAvg
	if probA != probB {
		return probA > probB
	}
	return s.betterThroughput(a, b)
}

// sortThroughput inserts id into the top-2 list best. A second slot still
// holding the seed of the first is free for any rate with a non-zero estimate.
func (s *Station) sortThroughput(best *[2]rate.ID, id rate.ID) {
	switch {
	case id == best[0]:
	case s.betterThroughput(id, best[0]):
		best[1] = best[0]
		best[0] = id
	case best[1] == best[0]:
		if s.stats.get(id).Throughput > 0 {
			best[1] = id
		}
	case id != best[1] && s.betterThroughput(id, best[1]):
		best[1] = id
	}
}

// aggregateGroups derives the group and station wide best rates, closing the
// statistics window of every supported rate first when closeWindow is set.
func (s *Station) aggregateGroups(closeWindow bool) {
	level := s.params.EWMALevel
	var (
		maxTP   [2]rate.ID
		maxProb rate.ID
	)
	for group := range s.groups {
		state := &s.groups[group]
		if state.supported == 0 {
			continue
		}
		var (
			groupTP   [2]rate.ID
			groupProb rate.ID
		)
		for index := 0; index < rate.MaxGroupRates; index++ {
			if state.supported&(1<<uint(index)) == 0 {
				continue
			}
			id := rate.NewID(group, index)
			stats := s.stats.get(id)
			if closeWindow {
				stats.closeWindow(level)
			}
			stats.Throughput = s.throughput(id, stats.ProbAvg)
			if !groupTP[0].IsValid() {
				groupTP = [2]rate.ID{id, id}
				groupProb = id
				continue
			}
			s.sortThroughput(&groupTP, id)
			if s.betterProbability(id, groupProb) {
				groupProb = id
			}
		}
		state.maxTP = groupTP
		state.maxProb = groupProb

		// the first supported group seeds the station
		if !maxTP[0].IsValid() {
			maxTP = groupTP
			maxProb = groupProb
			continue
		}
		s.sortThroughput(&maxTP, groupTP[0])
		s.sortThroughput(&maxTP, groupTP[1])
		if s.betterProbability(groupProb, maxProb) {
			maxProb = groupProb
		}
	}
	s.maxTP = maxTP
	s.maxProb = s.reduceStreams(maxProb)
}

// reduceStreams replaces maxProb with the best throughput group probability
// rate using fewer streams whose probability is within the robustness margin.
func (s *Station) reduceStreams(maxProb rate.ID) rate.ID {
	if !maxProb.IsValid() {
		return maxProb
	}
	info := s.groups[maxProb.Group()].info
	if info.Kind.Legacy() {
		return maxProb
	}
	floor := s.stats.get(maxProb).ProbAvg
	if floor > s.params.RobustProbabilityMargin {
		floor -= s.params.RobustProbabilityMargin
	} else {
		floor = 0
	}
	var (
		result = maxProb
		bestTP rate.Bandwidth
	)
	for group := range s.groups {
		state := &s.groups[group]
		if state.supported == 0 || state.info.Kind.Legacy() || state.info.Streams >= info.Streams {
			continue
		}
		stats := s.stats.get(state.maxProb)
		if stats.ProbAvg < floor {
			continue
		}
		if stats.Throughput > bestTP {
			bestTP = stats.Throughput
			result = state.maxProb
		}
	}
	return result
}
