package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidemark/signalforge/Internal/backtest"
	"github.com/tidemark/signalforge/Internal/sanitize"
	"github.com/tidemark/signalforge/Internal/types"
	"github.com/tidemark/signalforge/Internal/utils/formatting"
)

func parseStyle() (types.Style, error) {
	style := types.Style(styleFlag)
	if !style.Valid() {
		return "", fmt.Errorf("unknown style %q (want fast, medium, or slow)", styleFlag)
	}
	return style, nil
}

func evaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <bars.csv>",
		Short: "Score one bar window and print the signal decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style, err := parseStyle()
			if err != nil {
				return err
			}
			eng, log, err := buildEngine()
			if err != nil {
				return err
			}

			raw, err := loadBars(args[0])
			if err != nil {
				return err
			}
			cleaned := sanitize.Clean(raw, style)
			for _, a := range cleaned.Anomalies {
				log.Warn().Str("bucket", a.Bucket).Int("index", a.Index).Str("detail", a.Detail).Msg("bar anomaly")
			}
			if cleaned.Insufficient {
				return fmt.Errorf("insufficient bars after sanitizing: have %d, style %s needs %d",
					len(cleaned.Bars), style, style.MinBars())
			}

			decision, err := eng.Evaluate(cleaned.Bars, style)
			if err != nil {
				return err
			}

			fmt.Println(formatting.Separator(60))
			fmt.Printf("Decision:   %s\n", decision.Direction)
			fmt.Printf("Confidence: %.0f\n", decision.Confidence)
			fmt.Printf("Reason:     %s\n", decision.Reason)
			if decision.Risk != nil {
				fmt.Printf("Stop:       %.4f\n", decision.Risk.Stop)
				fmt.Printf("Target:     %.4f\n", decision.Risk.Target)
				fmt.Printf("R:R:        %.2f\n", decision.Risk.RewardToRisk)
			}
			fmt.Println(formatting.Separator(60))
			return nil
		},
	}
}

func backtestCmd() *cobra.Command {
	var (
		equity float64
		risk   float64
		outCSV string
	)

	cmd := &cobra.Command{
		Use:   "backtest <bars.csv>",
		Short: "Replay the decision loop over a bar series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style, err := parseStyle()
			if err != nil {
				return err
			}
			eng, log, err := buildEngine()
			if err != nil {
				return err
			}

			raw, err := loadBars(args[0])
			if err != nil {
				return err
			}
			cleaned := sanitize.Clean(raw, style)
			if n := len(cleaned.Anomalies); n > 0 {
				log.Warn().Int("anomalies", n).Msg("dropped or flagged bars during sanitizing")
			}
			if cleaned.Insufficient {
				return fmt.Errorf("insufficient bars after sanitizing: have %d, style %s needs %d",
					len(cleaned.Bars), style, style.MinBars())
			}

			if equity <= 0 {
				equity = envFloat("STARTING_EQUITY", 10000)
			}
			res, err := eng.Simulate(cleaned.Bars, style, equity, risk)
			if err != nil {
				return err
			}

			printStats(res.Stats, equity, res.Equity[len(res.Equity)-1].Balance.InexactFloat64())

			if outCSV != "" {
				if err := writeTrades(outCSV, res.Trades); err != nil {
					return err
				}
				log.Info().Str("path", outCSV).Int("trades", len(res.Trades)).Msg("trade ledger exported")
			}
			return nil
		},
	}

	cmd.Flags().Float64VarP(&equity, "equity", "e", 0, "Starting equity (defaults to STARTING_EQUITY env, then 10000)")
	cmd.Flags().Float64VarP(&risk, "risk", "r", 0, "Risk fraction per trade (defaults to config)")
	cmd.Flags().StringVarP(&outCSV, "out", "o", "", "Write the trade ledger to this CSV path")
	return cmd
}

func gateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gate [timestamp]",
		Short: "Check whether a trade may be opened at a timestamp (RFC3339, default now)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := buildEngine()
			if err != nil {
				return err
			}

			ts := time.Now()
			if len(args) == 1 {
				ts, err = time.Parse(time.RFC3339, args[0])
				if err != nil {
					return fmt.Errorf("parse timestamp: %w", err)
				}
			}

			res := eng.Gate(ts)
			fmt.Printf("Allowed: %v\n", res.Allowed)
			fmt.Printf("Reason:  %s\n", res.Reason)
			if res.Holiday != "" {
				fmt.Printf("Holiday: %s\n", res.Holiday)
			}
			fmt.Printf("Window:  %s - %s\n",
				res.WindowOpen.Format("15:04 MST"), res.WindowClose.Format("15:04 MST"))
			return nil
		},
	}
}

func printStats(st backtest.Stats, starting, final float64) {
	fmt.Println(formatting.Separator(60))
	fmt.Printf("Trades:        %d (%d wins / %d losses)\n", st.Trades, st.Wins, st.Losses)
	fmt.Printf("Win rate:      %.1f%%\n", st.WinRate*100)
	fmt.Printf("Avg R:         %.2f (best %.2f / worst %.2f)\n", st.AvgR, st.BestR, st.WorstR)
	fmt.Printf("Profit factor: %.2f\n", st.ProfitFactor)
	fmt.Printf("Expectancy:    %.2f\n", st.Expectancy)
	fmt.Printf("Max drawdown:  %.2f%%\n", st.MaxDrawdown)
	fmt.Printf("Total return:  %.2f%%\n", st.TotalReturn)
	fmt.Printf("CAGR:          %.2f%%\n", st.CAGR)
	fmt.Printf("Sharpe:        %.2f\n", st.Sharpe)
	fmt.Printf("Equity:        %.2f -> %.2f\n", starting, final)
	fmt.Println(formatting.Separator(60))
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
