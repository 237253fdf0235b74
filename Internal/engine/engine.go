// Package engine orchestrates sanitized bar windows through the
// selector, the simulator, and the trade gate. Construction wires the
// closed set of strategy implementations once; nothing is dispatched
// by name at evaluation time.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tidemark/signalforge/Internal/backtest"
	"github.com/tidemark/signalforge/Internal/config"
	"github.com/tidemark/signalforge/Internal/gate"
	"github.com/tidemark/signalforge/Internal/strategy/risklevels"
	"github.com/tidemark/signalforge/Internal/strategy/selector"
	"github.com/tidemark/signalforge/Internal/types"
)

var (
	ErrInsufficientBars = errors.New("insufficient bars for style")
	ErrInvalidStyle     = errors.New("invalid style")
)

// Detector turns a sanitized window into a scored outcome. The
// default is the confluence selector; tests substitute fixed ones.
type Detector interface {
	Decide(bars []types.Bar) selector.Outcome
}

// RiskPolicy prices stop and target for a directional candidate.
type RiskPolicy = selector.RiskPolicy

// ExecutionPolicy replays a decision stream over a bar series.
type ExecutionPolicy interface {
	Run(bars []types.Bar, style types.Style, startingEquity, riskPerTrade float64) (*backtest.Result, error)
}

// ExecutionFactory builds a fresh ExecutionPolicy per simulation run,
// since simulator state must never be shared across runs.
type ExecutionFactory func(cfg config.BacktestConfig, decide backtest.DecisionFunc) ExecutionPolicy

// Engine is safe for concurrent use: every call works on its own
// window and its own simulator instance.
type Engine struct {
	cfg       *config.Config
	log       zerolog.Logger
	risk      RiskPolicy
	detectors map[types.Style]Detector
	execNew   ExecutionFactory
	gate      *gate.Gate
}

// Option overrides a default strategy implementation at construction.
type Option func(*Engine)

// WithDetector substitutes the decision policy for one style.
func WithDetector(style types.Style, d Detector) Option {
	return func(e *Engine) { e.detectors[style] = d }
}

// WithRiskPolicy substitutes the risk generator behind every default
// detector.
func WithRiskPolicy(rp RiskPolicy) Option {
	return func(e *Engine) { e.risk = rp }
}

// WithExecutionFactory substitutes the simulator construction.
func WithExecutionFactory(f ExecutionFactory) Option {
	return func(e *Engine) { e.execNew = f }
}

func New(cfg *config.Config, log zerolog.Logger, opts ...Option) (*Engine, error) {
	g, err := gate.New(cfg.Gate)
	if err != nil {
		return nil, fmt.Errorf("build gate: %w", err)
	}

	e := &Engine{
		cfg:       cfg,
		log:       log,
		risk:      risklevels.NewGenerator(cfg.Risk),
		detectors: make(map[types.Style]Detector, 3),
		execNew: func(bc config.BacktestConfig, decide backtest.DecisionFunc) ExecutionPolicy {
			return backtest.NewSimulator(bc, decide)
		},
		gate: g,
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, style := range []types.Style{types.StyleFast, types.StyleMedium, types.StyleSlow} {
		if _, ok := e.detectors[style]; ok {
			continue
		}
		e.detectors[style] = selector.New(cfg.Engine, cfg.Profile(string(style)), e.risk)
	}
	return e, nil
}

// Evaluate scores one sanitized window and stamps the decision. Too
// few bars is a refusal, not a crash: the caller gets an error and no
// decision.
func (e *Engine) Evaluate(bars []types.Bar, style types.Style) (types.SignalDecision, error) {
	det, ok := e.detectors[style]
	if !ok {
		return types.SignalDecision{}, fmt.Errorf("%w: %q", ErrInvalidStyle, style)
	}
	if len(bars) < style.MinBars() {
		return types.SignalDecision{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientBars, len(bars), style.MinBars())
	}

	out := det.Decide(bars)
	decision := types.SignalDecision{
		ID:         uuid.NewString(),
		Direction:  out.Direction,
		Confidence: out.Confidence,
		Risk:       out.Risk,
		Reason:     out.Reason,
		Evaluated:  time.Now().UTC(),
	}

	e.log.Debug().
		Str("decision_id", decision.ID).
		Str("style", string(style)).
		Str("direction", string(decision.Direction)).
		Float64("confidence", decision.Confidence).
		Str("reason", decision.Reason).
		Msg("evaluated window")

	return decision, nil
}

// Simulate replays the selector over the series. The selector is only
// consulted once the growing window satisfies the style's minimum.
func (e *Engine) Simulate(bars []types.Bar, style types.Style, startingEquity, riskPerTrade float64) (*backtest.Result, error) {
	det, ok := e.detectors[style]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStyle, style)
	}
	if len(bars) < style.MinBars() {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientBars, len(bars), style.MinBars())
	}
	if riskPerTrade <= 0 {
		riskPerTrade = e.cfg.Backtest.RiskPerTrade
	}

	minBars := style.MinBars()
	decide := func(window []types.Bar, i int) selector.Outcome {
		if len(window) < minBars {
			return selector.Outcome{Direction: types.None}
		}
		return det.Decide(window)
	}

	res, err := e.execNew(e.cfg.Backtest, decide).Run(bars, style, startingEquity, riskPerTrade)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("style", string(style)).
		Int("bars", len(bars)).
		Int("trades", len(res.Trades)).
		Float64("total_return_pct", res.Stats.TotalReturn).
		Float64("max_drawdown_pct", res.Stats.MaxDrawdown).
		Msg("simulation complete")

	return res, nil
}

// Gate reports whether a new trade may be opened at the instant.
func (e *Engine) Gate(ts time.Time) gate.Result {
	return e.gate.Allows(ts)
}
