package minstrel_ht

import (
	"time"

	"github.com/sagernet/sing-minstrel/rate"
	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sagernet/sing/common/logger"
)

// peakWindowLength is the number of statistics windows the peak throughput
// filter remembers.
const peakWindowLength = 10

type groupState struct {
	info      rate.GroupInfo
	supported uint16

	maxTP   [2]rate.ID
	maxProb rate.ID

	// shuffle table cursor
	column   uint8
	position uint8
}

// Attempt is the outcome of the tries made at one rate for one frame.
type Attempt struct {
	Rate      rate.ID
	Attempts  uint32
	Successes uint32
}

// Report is the completion feedback of one frame or aggregate.
type Report struct {
	Attempts []Attempt
	// Probe is set when the frame was sent with a Decision carrying a probe.
	Probe bool
}

type StationOptions struct {
	Capabilities rate.Capabilities
	Params       *Params
	Clock        Clock
	Logger       logger.Logger
	Metrics      *Metrics
}

// Station is the rate control state of one peer. It is not safe for
// concurrent use; callers serialize Select, Feedback and UpdateStats.
type Station struct {
	caps    rate.Capabilities
	params  *Params
	clock   Clock
	logger  logger.Logger
	metrics *Metrics

	groups []groupState
	stats  statsStore

	maxTP   [2]rate.ID
	maxProb rate.ID

	sample         [sampleTypeCount]sampleCategory
	sampleSeq      int
	sampleDeadline time.Time

	probe     ProbeState
	probeRate rate.ID
	// incremental candidate adopted by the next frame in implicit mode
	promoted rate.ID

	lastUpdate       time.Time
	windowFrames     int
	lastWindowFrames int
	window           WindowCount
	peak             *WindowedFilter
}

func NewStation(options StationOptions) (*Station, error) {
	if options.Capabilities == nil {
		return nil, E.New("missing capabilities")
	}
	if options.Capabilities.GroupCount() == 0 {
		return nil, E.New("empty rate table")
	}
	if options.Capabilities.GroupCount() > rate.MaxGroups {
		return nil, E.New("too many rate groups: ", options.Capabilities.GroupCount())
	}
	params := options.Params
	if params == nil {
		params = DefaultParams()
	}
	err := params.Validate()
	if err != nil {
		return nil, E.Cause(err, "invalid params")
	}
	clock := options.Clock
	if clock == nil {
		clock = DefaultClock{}
	}
	log := options.Logger
	if log == nil {
		log = logger.NOP()
	}
	groupCount := options.Capabilities.GroupCount()
	s := &Station{
		caps:    options.Capabilities,
		params:  params,
		clock:   clock,
		logger:  log,
		metrics: options.Metrics,
		groups:  make([]groupState, groupCount),
		stats:   newStatsStore(groupCount),
		peak:    NewPeakFilter(peakWindowLength),
	}
	s.RefreshCapabilities()
	now := clock.Now()
	s.lastUpdate = now
	s.sampleDeadline = now
	return s, nil
}

// RefreshCapabilities re-reads the supported masks, e.g. after the peer
// changed its operating mode. Best rates are recomputed; history is kept.
func (s *Station) RefreshCapabilities() {
	var usable bool
	for group := range s.groups {
		state := &s.groups[group]
		state.info = s.caps.GroupInfo(group)
		state.supported = s.caps.SupportedMask(group)
		if state.supported != 0 {
			usable = true
		}
	}
	if !usable {
		s.logger.Warn("peer supports no rate, falling back to the basic group")
		basic := &s.groups[rate.BasicGroup]
		for index := 0; index < rate.MaxGroupRates; index++ {
			if s.caps.Duration(rate.NewID(rate.BasicGroup, index)) > 0 {
				basic.supported |= 1 << uint(index)
			}
		}
	}
	for i := range s.sample {
		s.sample[i].rates = [SampleRates]rate.ID{}
		s.sample[i].current = [SampleRates]rate.ID{}
	}
	s.bestRates()
}

// bestRates recomputes the best rates from the averages without closing the window.
func (s *Station) bestRates() {
	maxTP, maxProb := s.maxTP, s.maxProb
	s.aggregateGroups(false)
	s.logBestRates(maxTP, maxProb)
}

func (s *Station) supported(id rate.ID) bool {
	if !id.IsValid() || id.Group() >= len(s.groups) || id.Index() >= rate.MaxGroupRates {
		return false
	}
	return s.groups[id.Group()].supported&(1<<uint(id.Index())) != 0
}

// Feedback records the outcome of a completed transmission. The statistics
// window is closed once UpdateInterval has elapsed since the previous one.
func (s *Station) Feedback(report Report) {
	for _, attempt := range report.Attempts {
		if !s.supported(attempt.Rate) || attempt.Attempts == 0 {
			continue
		}
		s.stats.record(attempt.Rate, attempt.Attempts, attempt.Successes)
		if report.Probe && attempt.Rate == s.probeRate {
			s.stats.get(attempt.Rate).Probes++
		}
		s.metrics.feedback(attempt.Attempts, rate.Min(attempt.Successes, attempt.Attempts))
	}
	s.windowFrames++
	if report.Probe && s.probe == ProbeActive {
		s.probe = ProbeIdle
		s.probeRate = rate.None
	}
	now := s.clock.Now()
	if now.Sub(s.lastUpdate) >= s.params.UpdateInterval {
		s.updateStats(now)
	}
}

// UpdateStats closes the current statistics window immediately.
func (s *Station) UpdateStats() {
	s.updateStats(s.clock.Now())
}

func (s *Station) updateStats(now time.Time) {
	maxTP, maxProb := s.maxTP, s.maxProb
	s.aggregateGroups(true)
	s.refillSamples()
	s.logBestRates(maxTP, maxProb)

	s.lastWindowFrames = s.windowFrames
	s.windowFrames = 0
	s.promoted = rate.None
	if s.implicitSwitching() {
		s.promoted = s.drawSample(SampleIncremental)
	}
	s.probe = ProbeIdle
	s.probeRate = rate.None
	s.sampleDeadline = now
	s.lastUpdate = now

	s.window++
	s.peak.Update(s.stats.get(s.maxTP[0]).Throughput, s.window)
	s.metrics.window(s)
}

func (s *Station) logBestRates(maxTP [2]rate.ID, maxProb rate.ID) {
	if maxTP != s.maxTP {
		s.logger.Debug("max throughput rates ", maxTP[0], ",", maxTP[1], " -> ", s.maxTP[0], ",", s.maxTP[1],
			" (", s.stats.get(s.maxTP[0]).Throughput, ")")
	}
	if maxProb != s.maxProb {
		s.logger.Debug("max probability rate ", maxProb, " -> ", s.maxProb,
			" (", s.stats.get(s.maxProb).ProbAvg, ")")
	}
}

// MaxThroughput returns the best and second best throughput rates.
func (s *Station) MaxThroughput() [2]rate.ID {
	return s.maxTP
}

func (s *Station) MaxProbability() rate.ID {
	return s.maxProb
}

// RateStats returns a copy of the statistics of id.
func (s *Station) RateStats(id rate.ID) (RateStats, bool) {
	if !s.supported(id) {
		return RateStats{}, false
	}
	return *s.stats.get(id), true
}

// SampleRates returns the candidates of sampleType selected at the last refill.
func (s *Station) SampleRates(sampleType SampleType) []rate.ID {
	category := &s.sample[sampleType]
	return append([]rate.ID(nil), category.rates[:category.size()]...)
}

func (s *Station) ProbeState() ProbeState {
	return s.probe
}

// PeakThroughput returns the best max_tp estimate seen over the last windows.
func (s *Station) PeakThroughput() rate.Bandwidth {
	return s.peak.GetBest()
}
