// Package backtest replays a decision policy over a bar series with a
// two-state execution model and reduces the resulting ledger into
// summary statistics. All state is local to one run; two concurrent
// simulations must use separate Simulator values.
package backtest

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tidemark/signalforge/Internal/config"
	"github.com/tidemark/signalforge/Internal/strategy/selector"
	"github.com/tidemark/signalforge/Internal/types"
)

var (
	ErrNoBars          = errors.New("no bars to simulate")
	ErrBadEquity       = errors.New("starting equity must be positive")
	ErrCorruptPosition = errors.New("corrupt position state")
)

// Exit reasons recorded on trades.
const (
	ExitStop   = "stop"
	ExitTarget = "target"
	ExitForced = "forced-close"
)

// DecisionFunc supplies the decision for the current bar while flat.
// It sees the window up to and including the current bar.
type DecisionFunc func(bars []types.Bar, i int) selector.Outcome

// Result is one completed simulation run.
type Result struct {
	Trades []types.TradeRecord
	Equity []types.EquityPoint
	Stats  Stats
}

// Simulator drives the Flat/InPosition state machine. Entry fills at
// the signal bar's close; exits are evaluated from the next bar on,
// stop before target on every bar.
type Simulator struct {
	cfg    config.BacktestConfig
	decide DecisionFunc
}

func NewSimulator(cfg config.BacktestConfig, decide DecisionFunc) *Simulator {
	return &Simulator{cfg: cfg, decide: decide}
}

// position is the single open position of a run.
type position struct {
	id          string
	dir         types.Direction
	entryTime   time.Time
	entryPrice  float64
	stop        float64
	target      float64
	tp1         float64
	size        float64
	initialSize float64
	riskPerUnit float64
	partialDone bool
	realized    decimal.Decimal
}

// Run replays the series. Equity moves only on realized P&L; an
// EquityPoint is appended after every bar; a still-open position is
// force-closed at the final bar's close.
func (s *Simulator) Run(bars []types.Bar, style types.Style, startingEquity, riskPerTrade float64) (*Result, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	if !(startingEquity > 0) {
		return nil, ErrBadEquity
	}
	if riskPerTrade <= 0 || riskPerTrade >= 1 {
		return nil, fmt.Errorf("risk per trade %v outside (0,1)", riskPerTrade)
	}

	equity := decimal.NewFromFloat(startingEquity)
	res := &Result{
		Equity: make([]types.EquityPoint, 0, len(bars)),
	}

	var pos *position
	for i, bar := range bars {
		if pos != nil {
			closed, err := s.step(pos, bar, &equity, res)
			if err != nil {
				return nil, fmt.Errorf("bar %d: %w", i, err)
			}
			if closed {
				pos = nil
			}
		} else if s.decide != nil {
			out := s.decide(bars[:i+1], i)
			if out.Direction != types.None && out.Risk != nil {
				p, err := s.open(out, bar, equity, riskPerTrade)
				if err != nil {
					return nil, fmt.Errorf("bar %d: %w", i, err)
				}
				pos = p
			}
		}

		res.Equity = append(res.Equity, types.EquityPoint{Time: bar.Time, Balance: equity})
	}

	if pos != nil {
		last := bars[len(bars)-1]
		s.close(pos, last.Time, last.Close, pos.size, ExitForced, &equity, res)
		res.Equity[len(res.Equity)-1].Balance = equity
	}

	res.Stats = Compute(res.Trades, res.Equity, style)
	return res, nil
}

// open sizes the position with the fixed fractional-risk rule:
// riskPerTrade x equity / stop distance.
func (s *Simulator) open(out selector.Outcome, bar types.Bar, equity decimal.Decimal, riskPerTrade float64) (*position, error) {
	entry := bar.Close
	stopDist := math.Abs(entry - out.Risk.Stop)
	if stopDist == 0 {
		return nil, fmt.Errorf("zero stop distance: %w", ErrCorruptPosition)
	}

	size := riskPerTrade * equity.InexactFloat64() / stopDist
	if !finitePositive(size) {
		return nil, fmt.Errorf("size %v: %w", size, ErrCorruptPosition)
	}

	tp1 := entry + (out.Risk.Target-entry)*s.cfg.TP1Fraction
	return &position{
		id:          uuid.NewString(),
		dir:         out.Direction,
		entryTime:   bar.Time,
		entryPrice:  entry,
		stop:        out.Risk.Stop,
		target:      out.Risk.Target,
		tp1:         tp1,
		size:        size,
		initialSize: size,
		riskPerUnit: stopDist,
		realized:    decimal.Zero,
	}, nil
}

// step processes one bar while in position. Stop is always checked
// before either target; that ordering is the same-bar ambiguity
// policy, not an accident.
func (s *Simulator) step(pos *position, bar types.Bar, equity *decimal.Decimal, res *Result) (bool, error) {
	if !finitePositive(pos.size) || !finite(pos.stop) || !finite(pos.target) {
		return false, ErrCorruptPosition
	}

	if pos.stopHit(bar) {
		s.close(pos, bar.Time, pos.stop, pos.size, ExitStop, equity, res)
		return true, nil
	}

	if !pos.partialDone && pos.targetHit(bar, pos.tp1) {
		partial := pos.initialSize * s.cfg.PartialFraction
		if partial > pos.size {
			partial = pos.size
		}
		pos.realize(pos.tp1, partial, equity)
		pos.size -= partial
		pos.stop = pos.entryPrice
		pos.partialDone = true
		if pos.size <= 0 {
			s.record(pos, bar.Time, pos.tp1, ExitTarget, res)
			return true, nil
		}
	}

	if pos.partialDone && pos.targetHit(bar, pos.target) {
		s.close(pos, bar.Time, pos.target, pos.size, ExitTarget, equity, res)
		return true, nil
	}

	return false, nil
}

// close realizes the remaining size at price and appends the trade.
func (s *Simulator) close(pos *position, at time.Time, price, size float64, reason string, equity *decimal.Decimal, res *Result) {
	pos.realize(price, size, equity)
	pos.size -= size
	s.record(pos, at, price, reason, res)
}

func (s *Simulator) record(pos *position, at time.Time, exitPrice float64, reason string, res *Result) {
	r := 0.0
	if pos.initialSize > 0 && pos.riskPerUnit > 0 {
		r = pos.realized.InexactFloat64() / (pos.initialSize * pos.riskPerUnit)
	}
	res.Trades = append(res.Trades, types.TradeRecord{
		ID:         pos.id,
		Direction:  pos.dir,
		EntryTime:  pos.entryTime,
		EntryPrice: pos.entryPrice,
		ExitTime:   at,
		ExitPrice:  exitPrice,
		Size:       pos.initialSize,
		RMultiple:  r,
		PnL:        pos.realized,
		ExitReason: reason,
	})
}

// realize books P&L for size units exiting at price, moving equity by
// exactly the amount recorded on the trade.
func (p *position) realize(price, size float64, equity *decimal.Decimal) {
	move := price - p.entryPrice
	if p.dir == types.Short {
		move = -move
	}
	pnl := decimal.NewFromFloat(move * size)
	p.realized = p.realized.Add(pnl)
	*equity = equity.Add(pnl)
}

func (p *position) stopHit(bar types.Bar) bool {
	if p.dir == types.Long {
		return bar.Low <= p.stop
	}
	return bar.High >= p.stop
}

func (p *position) targetHit(bar types.Bar, level float64) bool {
	if p.dir == types.Long {
		return bar.High >= level
	}
	return bar.Low <= level
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finitePositive(v float64) bool {
	return finite(v) && v > 0
}
