package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sagernet/sing-minstrel/minstrel_ht"
	"github.com/sagernet/sing-minstrel/rate"

	"github.com/stretchr/testify/require"
)

const testScenario = `
peer:
  vht: true
  streams: 2
  width: 80
  short_gi: true
params:
  multi_rate_retry: false
  update_interval: 100ms
  sample_interval: 10ms
  implicit_mode: forced
phases:
  - frames: 1000
    capacity_mbps: 300
  - frames: 500
    capacity_mbps: 50
seed: 7
`

func TestParseScenario(t *testing.T) {
	scenario, err := ParseScenario([]byte(testScenario))
	require.NoError(t, err)
	require.True(t, scenario.Peer.VHT)
	require.Equal(t, 2, scenario.Peer.Streams)
	require.Equal(t, rate.Width80, scenario.Peer.Width)
	require.Equal(t, []Phase{{Frames: 1000, CapacityMbps: 300}, {Frames: 500, CapacityMbps: 50}}, scenario.Phases)
	require.Equal(t, uint64(7), scenario.Seed)

	params, err := scenario.Params.Build()
	require.NoError(t, err)
	require.False(t, params.MultiRateRetry)
	require.Equal(t, 100*time.Millisecond, params.UpdateInterval)
	require.Equal(t, 10*time.Millisecond, params.SampleInterval)
	require.Equal(t, minstrel_ht.ImplicitForced, params.ImplicitMode)
	require.Equal(t, 1, params.MaxRetryRates)
}

func TestParseScenarioErrors(t *testing.T) {
	_, err := ParseScenario([]byte("peer: {ht: true, streams: 1}\n"))
	require.Error(t, err)

	_, err = ParseScenario([]byte("phases: [{frames: 0, capacity_mbps: 10}]\n"))
	require.Error(t, err)

	_, err = ParseScenario([]byte("peer: {ht: true, streams: 9}\nphases: [{frames: 1, capacity_mbps: 10}]\n"))
	require.Error(t, err)

	_, err = ParseScenario([]byte("phases: [\n"))
	require.Error(t, err)

	scenario, err := ParseScenario([]byte("params: {implicit_mode: sometimes}\nphases: [{frames: 1, capacity_mbps: 10}]\n"))
	require.NoError(t, err)
	_, err = scenario.Params.Build()
	require.Error(t, err)
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScenario), 0o644))
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	require.Len(t, scenario.Phases, 2)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
