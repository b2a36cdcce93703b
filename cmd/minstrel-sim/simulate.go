package main

import (
	"time"

	"github.com/sagernet/quic-go/congestion"
	"github.com/sagernet/sing-minstrel/minstrel_ht"
	"github.com/sagernet/sing-minstrel/rate"
	"github.com/sagernet/sing/common/logger"

	"github.com/benbjohnson/clock"
)

// retries per rate of a regular chain entry; probes get a single attempt
const chainRetries = 2

// PhaseResult summarizes one simulated phase.
type PhaseResult struct {
	Phase     Phase
	Delivered int
	Elapsed   time.Duration
	Probes    int
	MaxTP     [2]rate.ID
	MaxProb   rate.ID
}

// Goodput is the delivered payload rate over the phase's airtime.
func (r PhaseResult) Goodput() rate.Bandwidth {
	if r.Elapsed <= 0 {
		return 0
	}
	return rate.BandwidthFromDelta(rate.ReferenceFrameLength*congestion.ByteCount(r.Delivered), r.Elapsed)
}

type simulator struct {
	scenario *Scenario
	peer     *rate.Peer
	station  *minstrel_ht.Station
	clock    *clock.Mock
	channel  *channel
	overhead time.Duration
	// attempt buffer reused for every report
	attempts []minstrel_ht.Attempt
}

func newSimulator(scenario *Scenario, logger logger.Logger, metrics *minstrel_ht.Metrics) (*simulator, error) {
	table := rate.DefaultTable()
	peer, err := rate.NewPeer(table, scenario.Peer)
	if err != nil {
		return nil, err
	}
	params, err := scenario.Params.Build()
	if err != nil {
		return nil, err
	}
	mockClock := clock.NewMock()
	station, err := minstrel_ht.NewStation(minstrel_ht.StationOptions{
		Capabilities: peer,
		Params:       params,
		Clock:        mockClock,
		Logger:       logger,
		Metrics:      metrics,
	})
	if err != nil {
		return nil, err
	}
	return &simulator{
		scenario: scenario,
		peer:     peer,
		station:  station,
		clock:    mockClock,
		channel:  newChannel(table, scenario.Seed),
		overhead: params.Overhead,
		attempts: make([]minstrel_ht.Attempt, 0, minstrel_ht.MaxRetryRates),
	}, nil
}

func (s *simulator) run() []PhaseResult {
	results := make([]PhaseResult, 0, len(s.scenario.Phases))
	for _, phase := range s.scenario.Phases {
		results = append(results, s.runPhase(phase))
	}
	return results
}

func (s *simulator) runPhase(phase Phase) PhaseResult {
	s.channel.capacity = rate.Bandwidth(phase.CapacityMbps * float64(rate.MBitsPerSecond))
	result := PhaseResult{Phase: phase}
	for i := 0; i < phase.Frames; i++ {
		decision := s.station.Select(minstrel_ht.FrameData)
		delivered, airtime := s.transmit(&decision)
		if delivered {
			result.Delivered++
		}
		if decision.Probe.IsValid() {
			result.Probes++
		}
		result.Elapsed += airtime
		s.clock.Add(airtime)
		s.station.Feedback(minstrel_ht.Report{
			Attempts: s.attempts,
			Probe:    decision.Probe.IsValid(),
		})
	}
	result.MaxTP = s.station.MaxThroughput()
	result.MaxProb = s.station.MaxProbability()
	return result
}

// transmit walks the retry chain until an attempt succeeds, filling s.attempts.
func (s *simulator) transmit(decision *minstrel_ht.Decision) (bool, time.Duration) {
	s.attempts = s.attempts[:0]
	var airtime time.Duration
	for _, id := range decision.Chain() {
		retries := chainRetries
		if id == decision.Probe {
			retries = 1
		}
		attempt := minstrel_ht.Attempt{Rate: id}
		for try := 0; try < retries; try++ {
			attempt.Attempts++
			airtime += s.peer.Duration(id) + s.overhead
			if s.channel.attempt(id) {
				attempt.Successes++
				s.attempts = append(s.attempts, attempt)
				return true, airtime
			}
		}
		s.attempts = append(s.attempts, attempt)
	}
	return false, airtime
}
