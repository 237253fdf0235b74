package backtest

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/tidemark/signalforge/Internal/types"
)

const (
	daysPerYear          = 365.25
	annualizationPeriods = 252
)

// Stats is the pure reduction over a run's trades and equity curve.
type Stats struct {
	Trades       int     `json:"trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	AvgR         float64 `json:"avg_r"`
	BestR        float64 `json:"best_r"`
	WorstR       float64 `json:"worst_r"`
	MaxDrawdown  float64 `json:"max_drawdown_pct"`
	TotalReturn  float64 `json:"total_return_pct"`
	ProfitFactor float64 `json:"profit_factor"`
	CAGR         float64 `json:"cagr_pct"`
	Sharpe       float64 `json:"sharpe"`
	Expectancy   float64 `json:"expectancy"`
}

// Compute reduces the ledger. The style's assumed horizon stands in
// for the wall-clock span when the equity series cannot provide one.
func Compute(trades []types.TradeRecord, equity []types.EquityPoint, style types.Style) Stats {
	st := Stats{Trades: len(trades)}

	if len(trades) > 0 {
		gross := decimal.Zero
		grossProfit := decimal.Zero
		grossLoss := decimal.Zero
		sumR := 0.0
		st.BestR = math.Inf(-1)
		st.WorstR = math.Inf(1)

		for _, tr := range trades {
			gross = gross.Add(tr.PnL)
			if tr.PnL.IsPositive() {
				st.Wins++
				grossProfit = grossProfit.Add(tr.PnL)
			} else {
				st.Losses++
				grossLoss = grossLoss.Add(tr.PnL.Neg())
			}
			sumR += tr.RMultiple
			if tr.RMultiple > st.BestR {
				st.BestR = tr.RMultiple
			}
			if tr.RMultiple < st.WorstR {
				st.WorstR = tr.RMultiple
			}
		}

		st.WinRate = float64(st.Wins) / float64(st.Trades)
		st.AvgR = sumR / float64(st.Trades)
		st.Expectancy = gross.InexactFloat64() / float64(st.Trades)

		switch {
		case grossLoss.IsZero() && grossProfit.IsPositive():
			st.ProfitFactor = math.Inf(1)
		case grossLoss.IsZero():
			st.ProfitFactor = 0
		default:
			st.ProfitFactor = grossProfit.InexactFloat64() / grossLoss.InexactFloat64()
		}
	}

	st.MaxDrawdown = maxDrawdown(equity)

	if len(equity) > 0 {
		first := equity[0].Balance.InexactFloat64()
		final := equity[len(equity)-1].Balance.InexactFloat64()
		if first > 0 {
			st.TotalReturn = (final - first) / first * 100
			st.CAGR = cagr(first, final, yearsSpanned(equity, style))
		}
	}

	st.Sharpe = sharpe(equity)
	return st
}

// maxDrawdown walks the equity series tracking the running peak. The
// result is a percentage, never negative.
func maxDrawdown(equity []types.EquityPoint) float64 {
	if len(equity) == 0 {
		return 0
	}

	peak := equity[0].Balance.InexactFloat64()
	maxDD := 0.0
	for _, p := range equity {
		bal := p.Balance.InexactFloat64()
		if bal > peak {
			peak = bal
		}
		if peak > 0 {
			dd := (peak - bal) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// yearsSpanned prefers the wall-clock span of the equity series and
// falls back to the style's assumed horizon when the span is
// unavailable (fewer than two points, or zero elapsed time).
func yearsSpanned(equity []types.EquityPoint, style types.Style) float64 {
	if len(equity) >= 2 {
		span := equity[len(equity)-1].Time.Sub(equity[0].Time)
		if span > 0 {
			return span.Hours() / 24 / daysPerYear
		}
	}
	return float64(style.HorizonDays()) / daysPerYear
}

func cagr(first, final, years float64) float64 {
	if first <= 0 || final <= 0 || years <= 0 {
		return 0
	}
	return (math.Pow(final/first, 1/years) - 1) * 100
}

// sharpe annualizes the mean/stddev ratio of per-point equity returns.
func sharpe(equity []types.EquityPoint) float64 {
	if len(equity) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Balance.InexactFloat64()
		if prev <= 0 {
			continue
		}
		cur := equity[i].Balance.InexactFloat64()
		returns = append(returns, (cur-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	if variance == 0 {
		return 0
	}

	return mean / math.Sqrt(variance) * math.Sqrt(annualizationPeriods)
}
