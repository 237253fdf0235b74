// Package risklevels prices a stop and target for a directional
// candidate from structure zones, with ATR fallbacks when no zone
// qualifies. The policy is two-step: try the structural
// target, extend it once to the farthest qualifying zone if the
// reward:risk floor is missed, and otherwise reject. There is no
// further search.
package risklevels

import (
	"math"

	"github.com/tidemark/signalforge/Internal/config"
	"github.com/tidemark/signalforge/Internal/types"
)

// Generator prices risk levels under one RiskConfig.
type Generator struct {
	cfg config.RiskConfig
}

func NewGenerator(cfg config.RiskConfig) Generator {
	return Generator{cfg: cfg}
}

// Generate returns stop, target, and reward:risk for the candidate,
// or nil when no acceptable levels exist. Only unmitigated zones
// qualify; a spent zone prices nothing.
func (g Generator) Generate(dir types.Direction, entry float64, zones []types.StructureZone, atr float64) *types.RiskLevels {
	if dir != types.Long && dir != types.Short {
		return nil
	}
	if !finite(entry) || entry <= 0 || !finite(atr) || atr < 0 {
		return nil
	}

	stop, ok := g.stopFor(dir, entry, zones, atr)
	if !ok {
		return nil
	}
	target, ok := g.targetFor(dir, entry, zones, atr)
	if !ok {
		return nil
	}

	rr := rewardToRisk(entry, stop, target)
	if rr < g.cfg.MinRewardToRisk {
		extended, ok := farthestOpposing(dir, entry, zones)
		if !ok {
			return nil
		}
		target = extended
		rr = rewardToRisk(entry, stop, target)
		if rr < g.cfg.MinRewardToRisk {
			return nil
		}
	}

	return &types.RiskLevels{Stop: stop, Target: target, RewardToRisk: rr}
}

// stopFor takes the far boundary of the nearest same-direction zone on
// the risk side of entry, falling back to entry -/+ stopMult*ATR. The
// result must land strictly on the risk side.
func (g Generator) stopFor(dir types.Direction, entry float64, zones []types.StructureZone, atr float64) (float64, bool) {
	stop := math.NaN()
	for _, z := range zones {
		if z.Mitigated || z.Direction != dir {
			continue
		}
		switch dir {
		case types.Long:
			if z.Bottom < entry && (math.IsNaN(stop) || z.Bottom > stop) {
				stop = z.Bottom
			}
		case types.Short:
			if z.Top > entry && (math.IsNaN(stop) || z.Top < stop) {
				stop = z.Top
			}
		}
	}

	if math.IsNaN(stop) {
		if atr == 0 {
			return 0, false
		}
		if dir == types.Long {
			stop = entry - g.cfg.StopATRMult*atr
		} else {
			stop = entry + g.cfg.StopATRMult*atr
		}
	}

	if dir == types.Long && stop >= entry {
		return 0, false
	}
	if dir == types.Short && stop <= entry {
		return 0, false
	}
	return stop, true
}

// targetFor takes the near boundary of the nearest opposing zone on
// the reward side of entry, falling back to entry +/- targetMult*ATR.
func (g Generator) targetFor(dir types.Direction, entry float64, zones []types.StructureZone, atr float64) (float64, bool) {
	target := math.NaN()
	opp := dir.Opposite()
	for _, z := range zones {
		if z.Mitigated || z.Direction != opp {
			continue
		}
		switch dir {
		case types.Long:
			if z.Bottom > entry && (math.IsNaN(target) || z.Bottom < target) {
				target = z.Bottom
			}
		case types.Short:
			if z.Top < entry && (math.IsNaN(target) || z.Top > target) {
				target = z.Top
			}
		}
	}

	if math.IsNaN(target) {
		if atr == 0 {
			return 0, false
		}
		if dir == types.Long {
			target = entry + g.cfg.TargetATRMult*atr
		} else {
			target = entry - g.cfg.TargetATRMult*atr
		}
	}

	if dir == types.Long && target <= entry {
		return 0, false
	}
	if dir == types.Short && target >= entry {
		return 0, false
	}
	return target, true
}

// farthestOpposing is the one-time extension: the far boundary of the
// farthest qualifying opposing zone on the reward side.
func farthestOpposing(dir types.Direction, entry float64, zones []types.StructureZone) (float64, bool) {
	ext := math.NaN()
	opp := dir.Opposite()
	for _, z := range zones {
		if z.Mitigated || z.Direction != opp {
			continue
		}
		switch dir {
		case types.Long:
			if z.Top > entry && (math.IsNaN(ext) || z.Top > ext) {
				ext = z.Top
			}
		case types.Short:
			if z.Bottom < entry && (math.IsNaN(ext) || z.Bottom < ext) {
				ext = z.Bottom
			}
		}
	}
	if math.IsNaN(ext) {
		return 0, false
	}
	return ext, true
}

func rewardToRisk(entry, stop, target float64) float64 {
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return 0
	}
	return math.Abs(target-entry) / risk
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
