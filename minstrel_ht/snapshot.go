package minstrel_ht

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/sagernet/sing-minstrel/rate"
)

// RateSnapshot is one row of a station statistics dump.
type RateSnapshot struct {
	Rate     rate.ID
	Group    rate.GroupInfo
	Duration time.Duration
	// Best marks max_tp[0], max_tp[1] and max_prob as "A", "B" and "P".
	Best  string
	Stats RateStats
}

// Snapshot is a point in time copy of a station's rate table.
type Snapshot struct {
	Window  WindowCount
	Rates   []RateSnapshot
	Samples [sampleTypeCount][]rate.ID
	Peak    rate.Bandwidth
}

// Snapshot copies the statistics of every supported rate. It allocates and is
// meant for diagnostics only.
func (s *Station) Snapshot() Snapshot {
	snapshot := Snapshot{Window: s.window, Peak: s.peak.GetBest()}
	for group := range s.groups {
		state := &s.groups[group]
		for index := 0; index < rate.MaxGroupRates; index++ {
			if state.supported&(1<<uint(index)) == 0 {
				continue
			}
			id := rate.NewID(group, index)
			var best string
			if id == s.maxTP[0] {
				best += "A"
			}
			if id == s.maxTP[1] {
				best += "B"
			}
			if id == s.maxProb {
				best += "P"
			}
			snapshot.Rates = append(snapshot.Rates, RateSnapshot{
				Rate:     id,
				Group:    state.info,
				Duration: s.caps.Duration(id),
				Best:     best,
				Stats:    *s.stats.get(id),
			})
		}
	}
	for sampleType := range snapshot.Samples {
		snapshot.Samples[sampleType] = s.SampleRates(SampleType(sampleType))
	}
	return snapshot
}

func (s Snapshot) String() string {
	var buffer bytes.Buffer
	writer := tabwriter.NewWriter(&buffer, 0, 8, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintln(writer, "best\trate\tgroup\tairtime\tthroughput\tprob\tlast\ttotal\tprobes\t")
	for _, row := range s.Rates {
		stats := row.Stats
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\t%d/%d\t%d/%d\t%d\t\n",
			row.Best, row.Rate, row.Group, row.Duration, stats.Throughput, stats.ProbAvg,
			stats.LastSuccesses, stats.LastAttempts, stats.TotalSuccesses, stats.TotalAttempts, stats.Probes)
	}
	writer.Flush()
	fmt.Fprintf(&buffer, "window %d, peak %s, samples inc=%v jump=%v slow=%v\n",
		s.Window, s.Peak, s.Samples[SampleIncremental], s.Samples[SampleJump], s.Samples[SampleSlow])
	return buffer.String()
}
