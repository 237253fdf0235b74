package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawBar is a price bar as delivered by an upstream data provider,
// before sanitization. Timestamps arrive as strings and values are
// unvalidated.
type RawBar struct {
	Timestamp string  `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// Bar is a sanitized OHLCV bar. Invariants: all prices > 0,
// High >= max(Open, Close), Low <= min(Open, Close), Volume >= 0.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Direction of a candidate or decision.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
	None  Direction = "NONE"
)

// Opposite returns the other trade direction. None maps to None.
func (d Direction) Opposite() Direction {
	switch d {
	case Long:
		return Short
	case Short:
		return Long
	}
	return None
}

// Style selects detector thresholds and minimum bar counts.
type Style string

const (
	StyleFast   Style = "fast"
	StyleMedium Style = "medium"
	StyleSlow   Style = "slow"
)

// MinBars is the minimum clean bar count required before evaluating.
func (s Style) MinBars() int {
	switch s {
	case StyleFast:
		return 60
	case StyleSlow:
		return 250
	default:
		return 120
	}
}

// HorizonDays is the assumed horizon used for CAGR when the equity
// series spans less than two timestamps.
func (s Style) HorizonDays() int {
	switch s {
	case StyleFast:
		return 90
	case StyleSlow:
		return 1825
	default:
		return 730
	}
}

// Valid reports whether s is one of the known styles.
func (s Style) Valid() bool {
	return s == StyleFast || s == StyleMedium || s == StyleSlow
}

// StructureZone is a supply or demand zone implicated in a structural
// break. Bullish zones are demand (below price), bearish zones are
// supply (above price). Mitigated flips once price trades back through
// the zone; zones are never deleted within an analysis window.
type StructureZone struct {
	Direction Direction
	Top       float64
	Bottom    float64
	OpenTime  time.Time
	CloseTime time.Time
	Mitigated bool
	Origin    string
}

// Contains reports whether a price sits inside the zone.
func (z StructureZone) Contains(price float64) bool {
	return price >= z.Bottom && price <= z.Top
}

// DetectorScore is one detector's contribution: a bounded score plus
// the categorical flags that produced it. Recomputed fresh per call.
type DetectorScore struct {
	Score float64
	Flags []string
}

// RiskLevels holds the stop and target derived for one candidate.
// For a long: Stop < entry < Target. For a short: Target < entry < Stop.
type RiskLevels struct {
	Stop         float64
	Target       float64
	RewardToRisk float64
}

// SignalDecision is the terminal output of one evaluation cycle.
// Risk is nil whenever Direction is None.
type SignalDecision struct {
	ID         string
	Direction  Direction
	Confidence float64
	Risk       *RiskLevels
	Reason     string
	Evaluated  time.Time
}

// TradeRecord is one fully closed position in the backtest ledger.
// PnL aggregates every partial fill realized over the position's life.
type TradeRecord struct {
	ID         string
	Direction  Direction
	EntryTime  time.Time
	EntryPrice float64
	ExitTime   time.Time
	ExitPrice  float64
	Size       float64
	RMultiple  float64
	PnL        decimal.Decimal
	ExitReason string
}

// EquityPoint is one sample of the simulated account balance.
type EquityPoint struct {
	Time    time.Time
	Balance decimal.Decimal
}
