package confluence

import (
	"math"

	"github.com/tidemark/signalforge/Internal/strategy/detect"
	"github.com/tidemark/signalforge/Internal/strategy/indicators"
	"github.com/tidemark/signalforge/Internal/strategy/structure"
	"github.com/tidemark/signalforge/Internal/types"
)

// Fixed factor weights. Not configurable per call: two runs over the
// same window must produce the same confidence.
const (
	WeightStructure  = 0.35
	WeightTrend      = 0.25
	WeightVolume     = 0.15
	WeightLiquidity  = 0.15
	WeightVolatility = 0.10
)

// Structure factor point values.
const (
	alignedBOSPoints   = 35
	alignedCHoCHPoints = 30
	alignedZonePoints  = 25
	insideZonePoints   = 15
	alignedGapPoints   = 15
	goodSidePoints     = 10
)

// Direction penalty multipliers, applied to per-factor scores before
// the weighted sum.
const (
	opposingBreakPenalty = 0.6
	wrongSidePenalty     = 0.8
	opposingTrendPenalty = 0.5
	opposingSweepPenalty = 0.7
)

// Inputs carries the five factor scores, each already in [0, 100].
type Inputs struct {
	Structure  float64
	Trend      float64
	Volume     float64
	Liquidity  float64
	Volatility float64
}

// Score folds the five factors into one confidence number. It is
// direction-agnostic arithmetic: any directional judgement has already
// been baked into the inputs by DirectionalInputs.
func Score(in Inputs) float64 {
	sum := in.Structure*WeightStructure +
		in.Trend*WeightTrend +
		in.Volume*WeightVolume +
		in.Liquidity*WeightLiquidity +
		in.Volatility*WeightVolatility
	return indicators.Clamp(math.Round(sum), 0, 100)
}

// DirectionalInputs assembles the factor scores for one candidate
// direction: the structure factor is scored for that direction, and
// the penalties for opposing breaks, wrong-side pricing, opposing
// trend, and opposing sweeps are applied before the weighted sum ever
// sees the numbers.
func DirectionalInputs(
	dir types.Direction,
	price float64,
	st structure.Analysis,
	tr detect.TrendResult,
	vol detect.VolumeResult,
	liq detect.LiquidityResult,
	vla detect.VolatilityResult,
) Inputs {
	in := Inputs{
		Structure:  StructureScore(st, dir, price),
		Trend:      tr.Score,
		Volume:     vol.Score,
		Liquidity:  liq.Score,
		Volatility: vla.Score,
	}

	if last := st.LastEvent(); last != nil && last.Direction == dir.Opposite() {
		in.Structure *= opposingBreakPenalty
	}
	if wrongSide(st, dir) {
		in.Structure *= wrongSidePenalty
	}
	if tr.Direction == dir.Opposite() {
		in.Trend *= opposingTrendPenalty
	}
	if opposingSweep(liq, dir) {
		in.Liquidity *= opposingSweepPenalty
	}

	return in
}

// StructureScore rates how well market structure supports a candidate
// direction at the given price. Components are additive: aligned last
// break, an unmitigated aligned zone, price trading inside one, an
// unfilled aligned gap, and being on the cheap side of the range.
func StructureScore(st structure.Analysis, dir types.Direction, price float64) float64 {
	if dir == types.None {
		return 0
	}

	score := 0.0

	if last := st.LastEvent(); last != nil && last.Direction == dir {
		if last.Kind == structure.BOS {
			score += alignedBOSPoints
		} else {
			score += alignedCHoCHPoints
		}
	}

	inZone := false
	hasZone := false
	for _, z := range st.Zones {
		if z.Mitigated || z.Direction != dir {
			continue
		}
		hasZone = true
		if z.Contains(price) {
			inZone = true
		}
	}
	if hasZone {
		score += alignedZonePoints
	}
	if inZone {
		score += insideZonePoints
	}

	for _, g := range st.UnfilledGaps() {
		if g.Direction == dir {
			score += alignedGapPoints
			break
		}
	}

	if !wrongSide(st, dir) {
		score += goodSidePoints
	}

	return indicators.Clamp(score, 0, 100)
}

// wrongSide reports a long priced in premium or a short priced in
// discount.
func wrongSide(st structure.Analysis, dir types.Direction) bool {
	switch dir {
	case types.Long:
		return st.Premium
	case types.Short:
		return !st.Premium
	}
	return false
}

// opposingSweep reports a sweep on the side that argues against the
// candidate: a swept high weakens longs, a swept low weakens shorts.
func opposingSweep(liq detect.LiquidityResult, dir types.Direction) bool {
	switch dir {
	case types.Long:
		return liq.SweepHigh && !liq.SweepLow
	case types.Short:
		return liq.SweepLow && !liq.SweepHigh
	}
	return false
}
