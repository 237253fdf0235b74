// Package selector evaluates a long and a short candidate over the
// same window and picks at most one of them through a fixed decision
// table. A candidate that cannot be priced is forced to confidence 0
// before the table runs, so an un-priceable setup never wins.
package selector

import (
	"github.com/tidemark/signalforge/Internal/config"
	"github.com/tidemark/signalforge/Internal/strategy/confluence"
	"github.com/tidemark/signalforge/Internal/strategy/detect"
	"github.com/tidemark/signalforge/Internal/strategy/structure"
	"github.com/tidemark/signalforge/Internal/types"
)

// Reasons attached to a no-trade outcome.
const (
	ReasonBelowThreshold = "both below threshold"
	ReasonConflict       = "conflict, insufficient separation"
	ReasonSelected       = "selected"
)

// Candidate is one side's fully scored setup.
type Candidate struct {
	Direction  types.Direction
	Confidence float64
	Inputs     confluence.Inputs
	Risk       *types.RiskLevels
}

// Outcome is the table's verdict plus both candidates for audit.
type Outcome struct {
	Direction  types.Direction
	Confidence float64
	Risk       *types.RiskLevels
	Reason     string
	Long       Candidate
	Short      Candidate
}

// RiskPolicy prices stop and target for a candidate. The default is
// the two-step structural generator.
type RiskPolicy interface {
	Generate(dir types.Direction, entry float64, zones []types.StructureZone, atr float64) *types.RiskLevels
}

// Selector wires the structure detector, the scalar detectors, the
// confluence scorer, and the risk policy into one evaluation.
type Selector struct {
	detector   structure.Detector
	risk       RiskPolicy
	profile    config.ProfileConfig
	floor      float64
	separation float64
}

func New(engine config.EngineConfig, profile config.ProfileConfig, risk RiskPolicy) Selector {
	return Selector{
		detector:   structure.NewDetector(profile),
		risk:       risk,
		profile:    profile,
		floor:      engine.ConfidenceFloor,
		separation: engine.MinSeparation,
	}
}

// Decide scores both directions over the window and applies the
// decision table. The window is assumed sanitized.
func (s Selector) Decide(bars []types.Bar) Outcome {
	if len(bars) == 0 {
		return Outcome{Direction: types.None, Reason: ReasonBelowThreshold}
	}

	st := s.detector.Analyze(bars)
	tr := detect.Trend(bars, st)
	vol := detect.Volume(bars, s.profile.VolumeLookback)
	liq := detect.Liquidity(bars, s.profile.EqualLevelTolerance)
	vla := detect.Volatility(bars, s.profile.ATRPeriod)

	price := bars[len(bars)-1].Close
	long := s.candidate(types.Long, price, st, tr, vol, liq, vla)
	short := s.candidate(types.Short, price, st, tr, vol, liq, vla)

	return pick(long, short, s.floor, s.separation)
}

func (s Selector) candidate(
	dir types.Direction,
	price float64,
	st structure.Analysis,
	tr detect.TrendResult,
	vol detect.VolumeResult,
	liq detect.LiquidityResult,
	vla detect.VolatilityResult,
) Candidate {
	in := confluence.DirectionalInputs(dir, price, st, tr, vol, liq, vla)
	c := Candidate{
		Direction:  dir,
		Confidence: confluence.Score(in),
		Inputs:     in,
		Risk:       s.risk.Generate(dir, price, st.Zones, vla.ATR),
	}
	if c.Risk == nil {
		c.Confidence = 0
	}
	return c
}

// pick applies the decision table in priority order: both below the
// floor, both above but too close, both above with clear separation,
// then exactly one above.
func pick(long, short Candidate, floor, separation float64) Outcome {
	out := Outcome{Direction: types.None, Long: long, Short: short}

	longOK := long.Confidence >= floor
	shortOK := short.Confidence >= floor

	switch {
	case !longOK && !shortOK:
		out.Reason = ReasonBelowThreshold
		return out
	case longOK && shortOK:
		gap := long.Confidence - short.Confidence
		if gap < 0 {
			gap = -gap
		}
		if gap < separation {
			out.Reason = ReasonConflict
			return out
		}
		if long.Confidence > short.Confidence {
			return winner(out, long)
		}
		return winner(out, short)
	case longOK:
		return winner(out, long)
	default:
		return winner(out, short)
	}
}

func winner(out Outcome, c Candidate) Outcome {
	out.Direction = c.Direction
	out.Confidence = c.Confidence
	out.Risk = c.Risk
	out.Reason = ReasonSelected
	return out
}
