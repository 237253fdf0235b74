package detect

import (
	"github.com/tidemark/signalforge/Internal/strategy/indicators"
	"github.com/tidemark/signalforge/Internal/strategy/structure"
	"github.com/tidemark/signalforge/Internal/types"
)

const (
	trendFastPeriod = 10
	trendSlowPeriod = 30

	// A directional score is attenuated when no aligned break of
	// structure exists among the last alignedBreakWindow events.
	alignedBreakWindow = 5
)

// TrendResult scores directional persistence of the window.
type TrendResult struct {
	types.DetectorScore
	Direction types.Direction
	Exhausted bool
}

// Trend classifies the window as up, down, or sideways and scores the
// strength of the move. Strength is cut when structure disagrees, and
// an exhaustion flag fires when momentum decelerates at an extreme.
func Trend(bars []types.Bar, st structure.Analysis) TrendResult {
	res := TrendResult{Direction: types.None}
	if len(bars) < trendSlowPeriod {
		res.Score = 0
		res.Flags = append(res.Flags, "insufficient-window")
		return res
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	fast := indicators.SMA(closes, trendFastPeriod)
	slow := indicators.SMA(closes, trendSlowPeriod)

	f := fast[len(fast)-1]
	s := slow[len(slow)-1]
	spreadPct := (f - s) / s * 100

	switch {
	case spreadPct > 0.1:
		res.Direction = types.Long
		res.Flags = append(res.Flags, "up")
	case spreadPct < -0.1:
		res.Direction = types.Short
		res.Flags = append(res.Flags, "down")
	default:
		res.Direction = types.None
		res.Flags = append(res.Flags, "sideways")
		res.Score = 25
		return res
	}

	mag := spreadPct
	if mag < 0 {
		mag = -mag
	}
	res.Score = indicators.Clamp(50+mag*15, 0, 100)

	if !hasAlignedBreak(st, res.Direction) {
		res.Score *= 0.6
		res.Flags = append(res.Flags, "no-aligned-break")
	}

	if isExhausted(bars, closes, res.Direction) {
		res.Exhausted = true
		res.Score = indicators.Clamp(res.Score-15, 0, 100)
		res.Flags = append(res.Flags, "exhaustion")
	}

	return res
}

func hasAlignedBreak(st structure.Analysis, dir types.Direction) bool {
	events := st.Events
	if len(events) > alignedBreakWindow {
		events = events[len(events)-alignedBreakWindow:]
	}
	for _, ev := range events {
		if ev.Direction == dir {
			return true
		}
	}
	return false
}

// isExhausted fires when price trades at the window extreme while the
// latest momentum leg is less than half the size of the prior one.
func isExhausted(bars []types.Bar, closes []float64, dir types.Direction) bool {
	n := len(closes)
	if n < 11 {
		return false
	}

	recent := closes[n-1] - closes[n-6]
	prior := closes[n-6] - closes[n-11]

	last := bars[n-1].Close
	switch dir {
	case types.Long:
		high := bars[0].High
		for _, b := range bars {
			if b.High > high {
				high = b.High
			}
		}
		atExtreme := last >= high*0.99
		return atExtreme && prior > 0 && recent < prior*0.5
	case types.Short:
		low := bars[0].Low
		for _, b := range bars {
			if b.Low < low {
				low = b.Low
			}
		}
		atExtreme := last <= low*1.01
		return atExtreme && prior < 0 && recent > prior*0.5
	}
	return false
}
