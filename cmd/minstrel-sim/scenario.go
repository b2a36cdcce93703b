package main

import (
	"os"
	"time"

	"github.com/sagernet/sing-minstrel/minstrel_ht"
	"github.com/sagernet/sing-minstrel/rate"
	E "github.com/sagernet/sing/common/exceptions"

	"gopkg.in/yaml.v3"
)

// Scenario describes one simulated peer and the channel it goes through.
type Scenario struct {
	Peer   rate.PeerConfig `yaml:"peer"`
	Params ParamsOptions   `yaml:"params"`
	Phases []Phase         `yaml:"phases"`
	Seed   uint64          `yaml:"seed"`
}

// Phase is a stretch of frames sent over a channel of fixed capacity.
type Phase struct {
	Frames       int     `yaml:"frames"`
	CapacityMbps float64 `yaml:"capacity_mbps"`
}

// ParamsOptions overrides minstrel_ht.DefaultParams. Zero values keep the default.
type ParamsOptions struct {
	MultiRateRetry          *bool         `yaml:"multi_rate_retry"`
	UpdateInterval          time.Duration `yaml:"update_interval"`
	SampleInterval          time.Duration `yaml:"sample_interval"`
	EWMALevel               int           `yaml:"ewma_level"`
	ImplicitMode            string        `yaml:"implicit_mode"`
	ImplicitPacketThreshold int           `yaml:"implicit_packet_threshold"`
	MaxRetryRates           int           `yaml:"max_retry_rates"`
}

func (o ParamsOptions) Build() (*minstrel_ht.Params, error) {
	params := minstrel_ht.DefaultParams()
	if o.MultiRateRetry != nil && !*o.MultiRateRetry {
		params = minstrel_ht.SingleRateParams()
	}
	if o.UpdateInterval > 0 {
		params.UpdateInterval = o.UpdateInterval
	}
	if o.SampleInterval > 0 {
		params.SampleInterval = o.SampleInterval
	}
	if o.EWMALevel > 0 {
		params.EWMALevel = o.EWMALevel
	}
	switch o.ImplicitMode {
	case "":
	case "disabled":
		params.ImplicitMode = minstrel_ht.ImplicitDisabled
	case "auto":
		params.ImplicitMode = minstrel_ht.ImplicitAuto
	case "forced":
		params.ImplicitMode = minstrel_ht.ImplicitForced
	default:
		return nil, E.New("unknown implicit mode: ", o.ImplicitMode)
	}
	if o.ImplicitPacketThreshold > 0 {
		params.ImplicitPacketThreshold = o.ImplicitPacketThreshold
	}
	if o.MaxRetryRates > 0 {
		params.MaxRetryRates = o.MaxRetryRates
	}
	return params, params.Validate()
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Peer: rate.PeerConfig{HT: true, Streams: 2, Width: rate.Width40, ShortGI: true},
		Phases: []Phase{
			{Frames: 20000, CapacityMbps: 200},
			{Frames: 20000, CapacityMbps: 60},
			{Frames: 20000, CapacityMbps: 150},
		},
		Seed: 1,
	}
}

func ParseScenario(content []byte) (*Scenario, error) {
	scenario := DefaultScenario()
	scenario.Phases = nil
	err := yaml.Unmarshal(content, scenario)
	if err != nil {
		return nil, E.Cause(err, "decode scenario")
	}
	if len(scenario.Phases) == 0 {
		return nil, E.New("scenario has no phases")
	}
	for i, phase := range scenario.Phases {
		if phase.Frames <= 0 || phase.CapacityMbps <= 0 {
			return nil, E.New("phase ", i, ": frames and capacity must be positive")
		}
	}
	return scenario, scenario.Peer.Validate()
}

func LoadScenario(path string) (*Scenario, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(content)
}
