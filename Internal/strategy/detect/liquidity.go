package detect

import (
	"github.com/tidemark/signalforge/Internal/strategy/indicators"
	"github.com/tidemark/signalforge/Internal/types"
)

// Fixed point values summed into the liquidity score.
const (
	equalHighsPoints = 25
	equalLowsPoints  = 25
	sweepPoints      = 35

	liquidityScanWindow = 20
)

// LiquidityResult scores resting-liquidity features of the window.
type LiquidityResult struct {
	types.DetectorScore
	EqualHighs bool
	EqualLows  bool
	SweepHigh  bool
	SweepLow   bool
}

// Liquidity flags near-equal highs/lows (tolerance is a fraction of
// price, ~0.001) and sweeps, where the last bar pierces the prior
// bar's extreme then closes back inside it. The score is the sum of
// fixed points per flag, clamped to [0, 100].
func Liquidity(bars []types.Bar, tolerance float64) LiquidityResult {
	res := LiquidityResult{}
	if len(bars) < 3 {
		return res
	}
	if tolerance <= 0 {
		tolerance = 0.001
	}

	window := bars
	if len(window) > liquidityScanWindow {
		window = window[len(window)-liquidityScanWindow:]
	}

	price := bars[len(bars)-1].Close
	tol := price * tolerance

	for i := 0; i < len(window) && (!res.EqualHighs || !res.EqualLows); i++ {
		for j := i + 2; j < len(window); j++ {
			if !res.EqualHighs && diff(window[i].High, window[j].High) <= tol {
				res.EqualHighs = true
			}
			if !res.EqualLows && diff(window[i].Low, window[j].Low) <= tol {
				res.EqualLows = true
			}
		}
	}

	last := bars[len(bars)-1]
	prev := bars[len(bars)-2]
	if last.High > prev.High && last.Close < prev.High {
		res.SweepHigh = true
	}
	if last.Low < prev.Low && last.Close > prev.Low {
		res.SweepLow = true
	}

	score := 0.0
	if res.EqualHighs {
		score += equalHighsPoints
		res.Flags = append(res.Flags, "equal-highs")
	}
	if res.EqualLows {
		score += equalLowsPoints
		res.Flags = append(res.Flags, "equal-lows")
	}
	if res.SweepHigh {
		score += sweepPoints
		res.Flags = append(res.Flags, "sweep-high")
	}
	if res.SweepLow {
		score += sweepPoints
		res.Flags = append(res.Flags, "sweep-low")
	}

	res.Score = indicators.Clamp(score, 0, 100)
	return res
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
