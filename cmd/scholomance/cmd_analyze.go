package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/scholomance/internal/logging"
	"github.com/cognicore/scholomance/pkg/scholomance/config"
	"github.com/cognicore/scholomance/pkg/scholomance/result"
	"github.com/cognicore/scholomance/pkg/scholomance/token"
)

var analyzeFlags struct {
	enrich bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <word>...",
	Short: "Classify individual words",
	Long: `Analyze prints the fast classification of each word as JSON: vowel
family, school, rune, feel, the evidence behind them and a confidence.

With --enrich, a dictionary lookup is made for each word and merged in.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeFlags.enrich, "enrich", false, "Merge dictionary definitions into each result")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	loader := config.Loader{Config: appConfig, Logger: logging.New("analyze")}
	comp, err := loader.Load(cmd.Context())
	if err != nil {
		return err
	}
	defer comp.Close()

	engine := comp.NewEngine()
	defer engine.Dispose()

	results := make([]result.Result, 0, len(args))
	for _, word := range args {
		if !token.IsWord(token.Normalize(word)) {
			return fmt.Errorf("%q contains no letters", word)
		}
		r := engine.Result(word)
		if analyzeFlags.enrich {
			if enriched, err := engine.RefreshEnrichment(word).Wait(cmd.Context()); err == nil && enriched != nil {
				r = *enriched
			}
		}
		results = append(results, r)
	}
	return writeJSON(cmd.OutOrStdout(), results)
}
