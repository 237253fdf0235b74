package detect

import (
	"github.com/tidemark/signalforge/Internal/strategy/indicators"
	"github.com/tidemark/signalforge/Internal/types"
)

// Volatility regime labels.
const (
	RegimeLow    = "low"
	RegimeNormal = "normal"
	RegimeHigh   = "high"
)

const (
	regimeLowRatio  = 0.75
	regimeHighRatio = 1.25
	atrMedianWindow = 50
)

// VolatilityResult scores regime stability. ATR carries the latest
// average true range for downstream risk sizing.
type VolatilityResult struct {
	types.DetectorScore
	ATR    float64
	Regime string
}

// Volatility normalizes ATR against its own rolling median. The score
// is stability: highest when the current regime sits near its median,
// falling as it stretches toward either extreme.
func Volatility(bars []types.Bar, period int) VolatilityResult {
	res := VolatilityResult{Regime: RegimeNormal}
	if period < 2 {
		period = 14
	}

	series := indicators.ATRSeries(bars, period)
	nonzero := make([]float64, 0, len(series))
	for _, v := range series {
		if v > 0 {
			nonzero = append(nonzero, v)
		}
	}
	if len(nonzero) == 0 {
		res.Score = 0
		res.Flags = append(res.Flags, "insufficient-window")
		return res
	}

	res.ATR = nonzero[len(nonzero)-1]

	window := nonzero
	if len(window) > atrMedianWindow {
		window = window[len(window)-atrMedianWindow:]
	}
	median := indicators.Median(window)
	if median == 0 {
		res.Score = 0
		return res
	}

	ratio := res.ATR / median
	switch {
	case ratio < regimeLowRatio:
		res.Regime = RegimeLow
	case ratio > regimeHighRatio:
		res.Regime = RegimeHigh
	}
	res.Flags = append(res.Flags, res.Regime)

	extremity := ratio - 1
	if extremity < 0 {
		extremity = -extremity
	}
	res.Score = indicators.Clamp(100-extremity*80, 0, 100)
	return res
}
