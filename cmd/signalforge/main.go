// signalforge - OHLC decision engine CLI: evaluate windows, replay
// backtests, and query the trade gate.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tidemark/signalforge/Internal/config"
	"github.com/tidemark/signalforge/Internal/engine"
	"github.com/tidemark/signalforge/Internal/utils/logging"
)

var (
	version = "0.1.0"

	cfgPath   string
	styleFlag string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "signalforge",
		Short: "Market-structure decision engine over OHLC bars",
		Long: `signalforge scores OHLC bar windows with a market-structure
confluence model, prices risk levels for the winning direction, and
replays the whole decision loop over historical series.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config (defaults apply when omitted)")
	rootCmd.PersistentFlags().StringVarP(&styleFlag, "style", "s", "medium", "Trading style: fast, medium, slow")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(backtestCmd())
	rootCmd.AddCommand(gateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("signalforge version %s\n", version)
		},
	}
}

func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default()
	}
	return config.Load(cfgPath)
}

// buildEngine assembles config, logger, and engine for a subcommand.
func buildEngine() (*engine.Engine, zerolog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	eng, err := engine.New(cfg, log)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return eng, log, nil
}
