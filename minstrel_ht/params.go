package minstrel_ht

import (
	"time"

	"github.com/sagernet/quic-go/congestion"
	"github.com/sagernet/sing-minstrel/rate"
	E "github.com/sagernet/sing/common/exceptions"
)

// ImplicitMode selects when per-frame probing is replaced by promoting an
// incremental candidate once per statistics window.
type ImplicitMode int

const (
	ImplicitDisabled ImplicitMode = iota
	ImplicitAuto
	ImplicitForced
)

func (m ImplicitMode) String() string {
	switch m {
	case ImplicitDisabled:
		return "disabled"
	case ImplicitAuto:
		return "auto"
	case ImplicitForced:
		return "forced"
	default:
		return "unknown"
	}
}

// Params contains the rate control tunables.
type Params struct {
	// Length of one statistics window.
	UpdateInterval time.Duration
	// Minimum spacing between two per-frame sampling attempts.
	SampleInterval time.Duration

	// Weight in percent given to the previous average on each EWMA update.
	EWMALevel int
	// Slow candidates above this success probability are not worth re-verifying.
	SlowSkipProbability Probability
	// How far below max_prob a rate with fewer streams may be and still replace it.
	RobustProbabilityMargin Probability

	// Hardware can attach several rates with their own retry counts to a frame.
	MultiRateRetry bool
	ImplicitMode   ImplicitMode
	// Frames per window above which ImplicitAuto engages on single rate hardware.
	ImplicitPacketThreshold int

	// Maximum length of the returned retry chain, probe included.
	MaxRetryRates int

	// Frame size and per-frame medium access overhead used for throughput estimates.
	FrameLength congestion.ByteCount
	Overhead    time.Duration
}

// DefaultParams returns the default rate control parameters.
func DefaultParams() *Params {
	return &Params{
		UpdateInterval: 50 * time.Millisecond,
		SampleInterval: 20 * time.Millisecond,

		EWMALevel:               75,
		SlowSkipProbability:     FracProbability(95, 100),
		RobustProbabilityMargin: FracProbability(10, 100),

		MultiRateRetry:          true,
		ImplicitMode:            ImplicitDisabled,
		ImplicitPacketThreshold: 64,

		MaxRetryRates: MaxRetryRates,

		FrameLength: rate.ReferenceFrameLength,
		// SIFS + ACK at 24 Mbit/s + DIFS + average backoff
		Overhead: 80 * time.Microsecond,
	}
}

// SingleRateParams returns parameters for hardware without multi-rate retry.
func SingleRateParams() *Params {
	params := DefaultParams()
	params.MultiRateRetry = false
	params.ImplicitMode = ImplicitAuto
	params.MaxRetryRates = 1
	return params
}

func (p *Params) Validate() error {
	if p.UpdateInterval <= 0 {
		return E.New("update interval must be positive")
	}
	if p.SampleInterval < 0 {
		return E.New("negative sample interval")
	}
	if p.EWMALevel < 0 || p.EWMALevel >= 100 {
		return E.New("EWMA level out of range: ", p.EWMALevel)
	}
	if p.SlowSkipProbability > ProbabilityOne || p.RobustProbabilityMargin > ProbabilityOne {
		return E.New("probability out of range")
	}
	if p.MaxRetryRates < 1 || p.MaxRetryRates > MaxRetryRates {
		return E.New("max retry rates out of range: ", p.MaxRetryRates)
	}
	if p.ImplicitMode < ImplicitDisabled || p.ImplicitMode > ImplicitForced {
		return E.New("unknown implicit mode: ", int(p.ImplicitMode))
	}
	if p.FrameLength <= 0 {
		return E.New("frame length must be positive")
	}
	return nil
}
