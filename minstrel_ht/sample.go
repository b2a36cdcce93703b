package minstrel_ht

import (
	"time"

	"github.com/sagernet/sing-minstrel/rate"
)

// SampleRates is the capacity of every sample category.
const SampleRates = 5

// SampleType is the category a sampling candidate was drawn from.
type SampleType int

const (
	// SampleIncremental holds the slowest rate of each group that is still
	// faster than the current best rates.
	SampleIncremental SampleType = iota
	// SampleJump holds arbitrary faster rates picked through the shuffle table.
	SampleJump
	// SampleSlow holds rates between the fastest and slowest best rates.
	SampleSlow

	sampleTypeCount
)

func (t SampleType) String() string {
	switch t {
	case SampleIncremental:
		return "incremental"
	case SampleJump:
		return "jump"
	case SampleSlow:
		return "slow"
	default:
		return "unknown"
	}
}

type sampleCategory struct {
	// last group visited by the refill
	group int
	rates [SampleRates]rate.ID
	// snapshot drained by the sequencer until the next refill
	current [SampleRates]rate.ID
}

func (c *sampleCategory) contains(id rate.ID) bool {
	for _, r := range c.rates {
		if r == id {
			return true
		}
		if !r.IsValid() {
			break
		}
	}
	return false
}

func (c *sampleCategory) size() int {
	for i, r := range c.rates {
		if !r.IsValid() {
			return i
		}
	}
	return SampleRates
}

// sampleTable is a fixed set of permutations of the rate indices within a
// group. Every station walks it with its own per-group cursor.
var sampleTable = [...][rate.MaxGroupRates]uint8{
	{2, 0, 5, 8, 4, 1, 7, 3, 9, 6},
	{6, 5, 4, 2, 1, 9, 8, 7, 0, 3},
	{7, 3, 9, 2, 4, 0, 6, 5, 8, 1},
	{0, 5, 1, 9, 3, 7, 6, 2, 8, 4},
	{5, 6, 2, 4, 7, 9, 3, 8, 1, 0},
	{1, 0, 6, 3, 8, 4, 5, 2, 9, 7},
	{8, 7, 2, 1, 3, 0, 6, 9, 4, 5},
	{1, 9, 4, 2, 7, 6, 8, 0, 5, 3},
	{2, 7, 0, 6, 4, 8, 9, 3, 5, 1},
	{8, 9, 7, 1, 6, 0, 5, 2, 3, 4},
}

// reserved reports whether id is one of the rates the station already
// transmits at and therefore never needs to sample.
func (s *Station) reserved(id rate.ID) bool {
	return id == s.maxTP[0] || id == s.maxProb
}

func (s *Station) sampleValid(sampleType SampleType, id rate.ID, fastDuration, slowDuration time.Duration) bool {
	if s.reserved(id) || !s.supported(id) {
		return false
	}
	duration := s.caps.Duration(id)
	if sampleType == SampleSlow {
		return duration > fastDuration && duration < slowDuration
	}
	return duration < fastDuration
}

// pruneSamples drops entries of sampleType that no longer qualify and moves
// the survivors to the front, returning their number.
func (s *Station) pruneSamples(sampleType SampleType, fastDuration, slowDuration time.Duration) int {
	rates := &s.sample[sampleType].rates
	var n int
	for i, id := range rates {
		if !id.IsValid() {
			continue
		}
		rates[i] = rate.None
		if s.sampleValid(sampleType, id, fastDuration, slowDuration) {
			rates[n] = id
			n++
		}
	}
	return n
}

// groupMinRateOffset returns the lowest supported index of group faster than
// maxDuration, or -1.
func (s *Station) groupMinRateOffset(group int, maxDuration time.Duration) int {
	supported := s.groups[group].supported
	for index := 0; index < rate.MaxGroupRates; index++ {
		if supported&(1<<uint(index)) == 0 {
			continue
		}
		if s.caps.Duration(rate.NewID(group, index)) >= maxDuration {
			continue
		}
		return index
	}
	return -1
}

func (s *Station) nextIncrementalRate(fastDuration time.Duration) rate.ID {
	category := &s.sample[SampleIncremental]
	for i := 0; i < len(s.groups); i++ {
		category.group = (category.group + 1) % len(s.groups)
		index := s.groupMinRateOffset(category.group, fastDuration)
		if index < 0 {
			continue
		}
		id := rate.NewID(category.group, index)
		if s.reserved(id) || category.contains(id) {
			continue
		}
		return id
	}
	return rate.None
}

// nextGroupSampleRate advances the shuffle cursor of group until it yields a
// supported index at or above offset.
func (s *Station) nextGroupSampleRate(group int, offset int) rate.ID {
	state := &s.groups[group]
	for i := 0; i < rate.MaxGroupRates; i++ {
		index := int(sampleTable[state.column][state.position])
		state.position++
		if int(state.position) >= rate.MaxGroupRates {
			state.position = 0
			state.column++
			if int(state.column) >= len(sampleTable) {
				state.column = 0
			}
		}
		if index < offset || state.supported&(1<<uint(index)) == 0 {
			continue
		}
		return rate.NewID(group, index)
	}
	return rate.None
}

// nextJumpRate returns the next jump candidate. Slow candidates met on the
// way are stored directly, slowCount tracking how many slow slots are used.
func (s *Station) nextJumpRate(fastDuration, slowDuration time.Duration, slowCount *int) rate.ID {
	maxDuration := slowDuration
	if *slowCount >= SampleRates {
		maxDuration = fastDuration
	}
	jump := &s.sample[SampleJump]
	slow := &s.sample[SampleSlow]
	for i := 0; i < len(s.groups); i++ {
		jump.group = (jump.group + 1) % len(s.groups)
		group := jump.group
		if s.groups[group].supported == 0 {
			continue
		}
		offset := s.groupMinRateOffset(group, maxDuration)
		if offset < 0 {
			continue
		}
		id := s.nextGroupSampleRate(group, offset)
		if !id.IsValid() || s.reserved(id) {
			continue
		}
		duration := s.caps.Duration(id)
		if duration < fastDuration {
			if jump.contains(id) {
				continue
			}
			return id
		}
		if *slowCount >= SampleRates || duration <= fastDuration || duration >= slowDuration || slow.contains(id) {
			continue
		}
		stats := s.stats.get(id)
		// near certain rates waste airtime when re-verified, and rates used
		// in the last window already have fresh statistics
		if stats.ProbAvg > s.params.SlowSkipProbability || stats.LastAttempts > 0 {
			continue
		}
		slow.rates[*slowCount] = id
		*slowCount++
		if *slowCount >= SampleRates {
			maxDuration = fastDuration
		}
	}
	return rate.None
}

// refillSamples rebuilds the sample categories around the best rates of the
// window that was just aggregated.
func (s *Station) refillSamples() {
	tpDuration := s.caps.Duration(s.maxTP[0])
	tp2Duration := s.caps.Duration(s.maxTP[1])
	probDuration := s.caps.Duration(s.maxProb)
	fastDuration := rate.Min(rate.Min(tpDuration, tp2Duration), probDuration)
	slowDuration := rate.Max(rate.Max(tpDuration, tp2Duration), probDuration)

	incremental := &s.sample[SampleIncremental]
	n := s.pruneSamples(SampleIncremental, fastDuration, slowDuration)
	for n < SampleRates {
		id := s.nextIncrementalRate(fastDuration)
		if !id.IsValid() {
			break
		}
		incremental.rates[n] = id
		n++
	}

	jump := &s.sample[SampleJump]
	n = s.pruneSamples(SampleJump, fastDuration, slowDuration)
	slowCount := s.pruneSamples(SampleSlow, fastDuration, slowDuration)
	for n < SampleRates {
		id := s.nextJumpRate(fastDuration, slowDuration, &slowCount)
		if !id.IsValid() {
			break
		}
		jump.rates[n] = id
		n++
	}

	for i := range s.sample {
		s.sample[i].current = s.sample[i].rates
	}
}
