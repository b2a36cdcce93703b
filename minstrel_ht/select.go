package minstrel_ht

import "github.com/sagernet/sing-minstrel/rate"

// MaxRetryRates is the maximum length of a retry chain.
const MaxRetryRates = 4

// FrameKind distinguishes frames that may carry a sampling probe.
type FrameKind int

const (
	FrameData FrameKind = iota
	// FrameControl covers control, management and authentication frames.
	FrameControl
)

// ProbeState tracks the sampling marker of a station.
type ProbeState int

const (
	ProbeIdle ProbeState = iota
	ProbeActive
)

func (p ProbeState) String() string {
	switch p {
	case ProbeIdle:
		return "IDLE"
	case ProbeActive:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// Decision is the ordered rate list for one transmission opportunity.
type Decision struct {
	Rates [MaxRetryRates]rate.ID
	Count int
	// Probe is the sampled rate carried in Rates, or rate.None. Completion
	// feedback for this frame must be reported with Report.Probe set.
	Probe     rate.ID
	ProbeType SampleType
}

// Chain returns the rates to try in order.
func (d *Decision) Chain() []rate.ID {
	return d.Rates[:d.Count]
}

func (d *Decision) Primary() rate.ID {
	return d.Rates[0]
}

func (d *Decision) push(id rate.ID, limit int) {
	if d.Count >= limit || !id.IsValid() {
		return
	}
	for _, r := range d.Rates[:d.Count] {
		if r == id {
			return
		}
	}
	d.Rates[d.Count] = id
	d.Count++
}

// Select returns the rates for the next outgoing frame, substituting a
// sampling probe when the station is eligible for one.
func (s *Station) Select(kind FrameKind) Decision {
	var decision Decision
	limit := s.params.MaxRetryRates
	decision.push(s.maxTP[0], limit)
	decision.push(s.maxTP[1], limit)
	decision.push(s.maxProb, limit)

	if kind == FrameControl && !s.params.MultiRateRetry {
		return decision
	}
	if s.implicitSwitching() {
		if s.promoted.IsValid() {
			s.stageProbe(&decision, s.promoted, SampleIncremental)
			s.promoted = rate.None
		}
		return decision
	}
	if s.probe == ProbeActive {
		return decision
	}
	now := s.clock.Now()
	if now.Before(s.sampleDeadline) {
		return decision
	}
	s.sampleDeadline = now.Add(s.params.SampleInterval)

	var (
		probe      rate.ID
		sampleType SampleType
	)
	if s.params.MultiRateRetry {
		probe, sampleType = s.nextSampleRate()
	} else {
		probe, sampleType = s.drawSample(SampleIncremental), SampleIncremental
	}
	if !probe.IsValid() {
		return decision
	}
	s.stageProbe(&decision, probe, sampleType)
	return decision
}

// stageProbe puts probe in front of the chain, or replaces the chain on
// hardware that can only send one rate per frame.
func (s *Station) stageProbe(decision *Decision, probe rate.ID, sampleType SampleType) {
	chain := *decision
	*decision = Decision{Probe: probe, ProbeType: sampleType}
	limit := s.params.MaxRetryRates
	decision.push(probe, limit)
	if s.params.MultiRateRetry {
		for _, id := range chain.Chain() {
			decision.push(id, limit)
		}
	}
	s.probe = ProbeActive
	s.probeRate = probe
	s.metrics.probe(sampleType)
}

// implicitSwitching reports whether per-frame probing is replaced by
// promotions made at window boundaries.
func (s *Station) implicitSwitching() bool {
	switch s.params.ImplicitMode {
	case ImplicitForced:
		return true
	case ImplicitAuto:
		return !s.params.MultiRateRetry && s.lastWindowFrames > s.params.ImplicitPacketThreshold
	default:
		return false
	}
}
