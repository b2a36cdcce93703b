package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sagernet/sing-minstrel/minstrel_ht"
	E "github.com/sagernet/sing/common/exceptions"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type runOptions struct {
	scenarioPath string
	frames       int
	seed         uint64
	logLevel     string
	metrics      bool
	stats        bool
}

func main() {
	err := newRootCommand().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minstrel-sim",
		Short: "Drive the minstrel_ht rate sampler over a synthetic channel",
	}
	rootCmd.AddCommand(newRunCommand())
	return rootCmd
}

func newRunCommand() *cobra.Command {
	var options runOptions
	command := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario and print the selected rates per phase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), options)
		},
	}
	flags := command.Flags()
	flags.StringVarP(&options.scenarioPath, "scenario", "s", "", "scenario file (YAML), built-in scenario if empty")
	flags.IntVar(&options.frames, "frames", 0, "override the frame count of every phase")
	flags.Uint64Var(&options.seed, "seed", 0, "override the channel seed")
	flags.StringVar(&options.logLevel, "log-level", "info", "trace, debug, info, warn, error, fatal or panic")
	flags.BoolVar(&options.metrics, "metrics", false, "print collected metrics")
	flags.BoolVar(&options.stats, "stats", true, "print the final rate table")
	return command
}

func run(output io.Writer, options runOptions) error {
	scenario := DefaultScenario()
	if options.scenarioPath != "" {
		var err error
		scenario, err = LoadScenario(options.scenarioPath)
		if err != nil {
			return E.Cause(err, "load scenario")
		}
	}
	if options.frames > 0 {
		for i := range scenario.Phases {
			scenario.Phases[i].Frames = options.frames
		}
	}
	if options.seed != 0 {
		scenario.Seed = options.seed
	}
	log, err := newLogger(output, options.logLevel)
	if err != nil {
		return err
	}

	var (
		registry *prometheus.Registry
		metrics  *minstrel_ht.Metrics
	)
	if options.metrics {
		registry = prometheus.NewRegistry()
		metrics, err = minstrel_ht.NewMetrics(registry)
		if err != nil {
			return err
		}
	}
	sim, err := newSimulator(scenario, log, metrics)
	if err != nil {
		return err
	}

	table := sim.peer.Table()
	for i, result := range sim.run() {
		fmt.Fprintf(output, "phase %d: capacity %.0fMbps, goodput %s, probes %d/%d\n",
			i, result.Phase.CapacityMbps, result.Goodput(), result.Probes, result.Phase.Frames)
		fmt.Fprintf(output, "  max_tp %s, %s; max_prob %s\n",
			table.Name(result.MaxTP[0]), table.Name(result.MaxTP[1]), table.Name(result.MaxProb))
	}
	if options.stats {
		fmt.Fprint(output, sim.station.Snapshot())
	}
	if registry != nil {
		return printMetrics(output, registry)
	}
	return nil
}

func printMetrics(output io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			name := family.GetName()
			for _, label := range metric.GetLabel() {
				name += " " + label.GetName() + "=" + label.GetValue()
			}
			switch {
			case metric.GetCounter() != nil:
				fmt.Fprintf(output, "%s %.0f\n", name, metric.GetCounter().GetValue())
			case metric.GetHistogram() != nil:
				histogram := metric.GetHistogram()
				fmt.Fprintf(output, "%s count=%d sum=%.0f\n", name, histogram.GetSampleCount(), histogram.GetSampleSum())
			}
		}
	}
	return nil
}
