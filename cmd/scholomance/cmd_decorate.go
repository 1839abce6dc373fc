package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cognicore/scholomance/internal/logging"
	"github.com/cognicore/scholomance/pkg/scholomance"
	"github.com/cognicore/scholomance/pkg/scholomance/config"
	"github.com/cognicore/scholomance/pkg/scholomance/metrics"
)

var decorateFlags struct {
	wait    bool
	timeout time.Duration
	stats   bool
}

var decorateCmd = &cobra.Command{
	Use:   "decorate [file]",
	Short: "Print the color decoration of every word in a text",
	Long: `Decorate tokenizes the input (a file, or stdin when omitted) and prints
one decoration per word as JSON, together with the rhyme groups of each line.

With --wait, enrichment is requested for every word and the text is
decorated a second time once the dictionary lookups have settled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecorate,
}

func init() {
	f := decorateCmd.Flags()
	f.BoolVar(&decorateFlags.wait, "wait", false, "Wait for enrichment and decorate again")
	f.DurationVar(&decorateFlags.timeout, "timeout", 30*time.Second, "Upper bound on --wait")
	f.BoolVar(&decorateFlags.stats, "stats", false, "Include cache and enrichment counters in the output")
}

type decorateOutput struct {
	Version     string                   `json:"version"`
	Decorations scholomance.Decorations  `json:"decorations"`
	RhymeGroups []scholomance.RhymeGroup `json:"rhymeGroups,omitempty"`
	Stats       *scholomance.Stats       `json:"stats,omitempty"`
	Counters    map[string]float64       `json:"counters,omitempty"`
}

func runDecorate(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	loader := config.Loader{Config: appConfig, Logger: logging.New("decorate"), Metrics: metrics.New(reg)}
	comp, err := loader.Load(cmd.Context())
	if err != nil {
		return err
	}
	defer comp.Close()

	engine := comp.NewEngine()
	defer engine.Dispose()

	decorations := engine.Decorate(text)
	if decorateFlags.wait {
		ctx, cancel := context.WithTimeout(cmd.Context(), decorateFlags.timeout)
		defer cancel()
		if err := engine.Wait(ctx); err != nil {
			return fmt.Errorf("wait for enrichment: %w", err)
		}
		decorations = engine.Decorate(text)
	}

	out := decorateOutput{
		Version:     engine.Version(),
		Decorations: decorations,
		RhymeGroups: decorations.RhymeGroups(),
	}
	if decorateFlags.stats {
		st := engine.Stats()
		out.Stats = &st
		out.Counters, err = gatherCounters(reg)
		if err != nil {
			return err
		}
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

// gatherCounters flattens every counter and gauge in reg into
// "name{label=value,...}" keys.
func gatherCounters(reg prometheus.Gatherer) (map[string]float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			if pairs := m.GetLabel(); len(pairs) > 0 {
				key += "{"
				for i, lp := range pairs {
					if i > 0 {
						key += ","
					}
					key += lp.GetName() + "=" + lp.GetValue()
				}
				key += "}"
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[key+"_count"] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out, nil
}
