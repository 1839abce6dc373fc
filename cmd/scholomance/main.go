// scholomance annotates text with school, rune and feel colors and builds
// scroll worlds from it.
//
// Usage:
//
//	scholomance decorate [file] [--wait] [--stats]
//	scholomance analyze <word>...
//	scholomance world [file] [--title=<t>] [--id=<id>]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/scholomance/internal/logging"
	"github.com/cognicore/scholomance/pkg/scholomance/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// appConfig is loaded once per invocation before any subcommand runs.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "scholomance",
	Short: "Color words by their sound and build worlds from scrolls",
	Long: "Scholomance classifies every word of a text into a school, rune and feel\n" +
		"from its phonetics, optionally enriches them from a dictionary service,\n" +
		"and can grow a deterministic dungeon from the same text.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg
		logging.Init(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Path to YAML config (default: built-in defaults)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json (overrides config)")

	rootCmd.AddCommand(decorateCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(worldCmd)
	rootCmd.Version = version
}

// loadConfig reads --config and applies the logging flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return nil, err
	}
	if rootFlags.logLevel != "" {
		cfg.Logging.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		cfg.Logging.Format = rootFlags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
