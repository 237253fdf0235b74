package structure

import (
	"time"

	"github.com/tidemark/signalforge/Internal/config"
	"github.com/tidemark/signalforge/Internal/strategy/indicators"
	"github.com/tidemark/signalforge/Internal/types"
)

// BreakKind distinguishes continuation breaks from reversal breaks.
type BreakKind string

const (
	BOS   BreakKind = "BOS"   // break of structure, with the trend
	CHoCH BreakKind = "CHOCH" // change of character, against the trend
)

// Event is one structural break: a close beyond the most recent
// confirmed swing level.
type Event struct {
	Kind      BreakKind
	Direction types.Direction
	Index     int
	Level     float64
	Strength  float64
	Time      time.Time
}

// Gap is a three-bar displacement gap: the wicks of the outer bars do
// not overlap. Bullish gaps sit below price and act as support.
type Gap struct {
	Direction types.Direction
	Top       float64
	Bottom    float64
	Index     int
	Filled    bool
}

// Analysis is everything the structure detector derives from one bar
// window. It carries no state between calls.
type Analysis struct {
	Events    []Event
	Zones     []types.StructureZone
	Gaps      []Gap
	Trend     types.Direction
	RangeHigh float64
	RangeLow  float64
	Premium   bool
}

// LastEvent returns the most recent break, or nil when none exists.
func (a Analysis) LastEvent() *Event {
	if len(a.Events) == 0 {
		return nil
	}
	return &a.Events[len(a.Events)-1]
}

// UnfilledGaps returns gaps price has not yet traded back through.
func (a Analysis) UnfilledGaps() []Gap {
	var out []Gap
	for _, g := range a.Gaps {
		if !g.Filled {
			out = append(out, g)
		}
	}
	return out
}

type swing struct {
	price float64
	index int
}

// Detector finds breaks of structure, supply/demand zones, and gaps.
type Detector struct {
	lookback int
}

// NewDetector builds a detector from profile tuning.
func NewDetector(profile config.ProfileConfig) Detector {
	lb := profile.SwingLookback
	if lb < 1 {
		lb = 3
	}
	return Detector{lookback: lb}
}

// Analyze scans the window for structural breaks and their zones.
// Purely derived from the input; safe to call concurrently.
func (d Detector) Analyze(bars []types.Bar) Analysis {
	a := Analysis{Trend: types.None}
	if len(bars) < d.lookback*2+2 {
		return a
	}

	highs, lows := d.swingPoints(bars)

	// Walk the window bar by bar. A swing becomes tradable structure
	// only once its right-hand lookback is complete; a close beyond
	// the most recent confirmed swing is a break.
	var lastHigh, lastLow *swing
	highIdx, lowIdx := 0, 0

	for i := 0; i < len(bars); i++ {
		for highIdx < len(highs) && highs[highIdx].index+d.lookback <= i {
			h := highs[highIdx]
			lastHigh = &h
			highIdx++
		}
		for lowIdx < len(lows) && lows[lowIdx].index+d.lookback <= i {
			l := lows[lowIdx]
			lastLow = &l
			lowIdx++
		}

		if lastHigh != nil && bars[i].Close > lastHigh.price {
			a.Events = append(a.Events, d.breakEvent(bars, i, lastHigh.price, types.Long, a.Trend))
			a.Zones = append(a.Zones, d.originZone(bars, i, types.Long))
			a.Trend = types.Long
			lastHigh = nil
		}
		if lastLow != nil && bars[i].Close < lastLow.price {
			a.Events = append(a.Events, d.breakEvent(bars, i, lastLow.price, types.Short, a.Trend))
			a.Zones = append(a.Zones, d.originZone(bars, i, types.Short))
			a.Trend = types.Short
			lastLow = nil
		}
	}

	d.markMitigated(bars, a.Zones)
	a.Gaps = d.findGaps(bars)

	a.RangeHigh, a.RangeLow = d.tradingRange(bars, highs, lows)
	mid := (a.RangeHigh + a.RangeLow) / 2
	a.Premium = bars[len(bars)-1].Close > mid

	return a
}

// swingPoints finds local extremes with lookback bars on both sides.
func (d Detector) swingPoints(bars []types.Bar) (highs, lows []swing) {
	for i := d.lookback; i < len(bars)-d.lookback; i++ {
		isHigh, isLow := true, true
		for j := i - d.lookback; j <= i+d.lookback; j++ {
			if j == i {
				continue
			}
			if bars[j].High >= bars[i].High {
				isHigh = false
			}
			if bars[j].Low <= bars[i].Low {
				isLow = false
			}
		}
		if isHigh {
			highs = append(highs, swing{price: bars[i].High, index: i})
		}
		if isLow {
			lows = append(lows, swing{price: bars[i].Low, index: i})
		}
	}
	return highs, lows
}

func (d Detector) breakEvent(bars []types.Bar, i int, level float64, dir, trend types.Direction) Event {
	kind := BOS
	if trend != types.None && trend != dir {
		kind = CHoCH
	}

	// Strength scales with how far the close punched through the
	// level, normalized by recent true range.
	atr := indicators.ATR(bars[:i+1], 14)
	strength := 50.0
	if atr > 0 {
		depth := bars[i].Close - level
		if dir == types.Short {
			depth = level - bars[i].Close
		}
		strength = indicators.Clamp(depth/atr*50, 5, 100)
	}

	return Event{
		Kind:      kind,
		Direction: dir,
		Index:     i,
		Level:     level,
		Strength:  strength,
		Time:      bars[i].Time,
	}
}

// originZone builds the supply/demand zone from the last opposing
// candle immediately preceding the break.
func (d Detector) originZone(bars []types.Bar, breakIdx int, dir types.Direction) types.StructureZone {
	origin := breakIdx - 1
	for j := breakIdx - 1; j >= 0 && j >= breakIdx-10; j-- {
		if dir == types.Long && bars[j].Close < bars[j].Open {
			origin = j
			break
		}
		if dir == types.Short && bars[j].Close > bars[j].Open {
			origin = j
			break
		}
	}
	if origin < 0 {
		origin = 0
	}

	return types.StructureZone{
		Direction: dir,
		Top:       bars[origin].High,
		Bottom:    bars[origin].Low,
		OpenTime:  bars[origin].Time,
		CloseTime: bars[breakIdx].Time,
		Origin:    "orderblock",
	}
}

// markMitigated flips zones that price later traded back through:
// a close beyond the far boundary invalidates the zone.
func (d Detector) markMitigated(bars []types.Bar, zones []types.StructureZone) {
	for zi := range zones {
		z := &zones[zi]
		for _, bar := range bars {
			if !bar.Time.After(z.CloseTime) {
				continue
			}
			if z.Direction == types.Long && bar.Close < z.Bottom {
				z.Mitigated = true
				break
			}
			if z.Direction == types.Short && bar.Close > z.Top {
				z.Mitigated = true
				break
			}
		}
	}
}

// findGaps detects three-bar displacement gaps and whether later
// price filled them.
func (d Detector) findGaps(bars []types.Bar) []Gap {
	var gaps []Gap
	for i := 2; i < len(bars); i++ {
		first, third := bars[i-2], bars[i]

		if third.Low > first.High {
			g := Gap{Direction: types.Long, Top: third.Low, Bottom: first.High, Index: i}
			for j := i + 1; j < len(bars); j++ {
				if bars[j].Low <= g.Bottom {
					g.Filled = true
					break
				}
			}
			gaps = append(gaps, g)
		}
		if third.High < first.Low {
			g := Gap{Direction: types.Short, Top: first.Low, Bottom: third.High, Index: i}
			for j := i + 1; j < len(bars); j++ {
				if bars[j].High >= g.Top {
					g.Filled = true
					break
				}
			}
			gaps = append(gaps, g)
		}
	}
	return gaps
}

// tradingRange picks the most recent meaningful range: the last
// confirmed swing extremes, else the window extremes.
func (d Detector) tradingRange(bars []types.Bar, highs, lows []swing) (high, low float64) {
	if len(highs) > 0 && len(lows) > 0 {
		h := highs[len(highs)-1].price
		l := lows[len(lows)-1].price
		if h > l {
			return h, l
		}
	}

	high, low = bars[0].High, bars[0].Low
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low
}
