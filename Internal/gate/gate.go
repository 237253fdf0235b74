// Package gate decides whether a new trade may be opened at a given
// instant. The decision is a pure function of the timestamp and the
// configured session buffers; nothing is retained between calls.
package gate

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/tidemark/signalforge/Internal/config"
)

// Reason codes returned on a gate decision.
const (
	ReasonAllowed       = "allowed"
	ReasonWeekend       = "weekend"
	ReasonHoliday       = "holiday"
	ReasonOpeningWindow = "opening_window"
	ReasonClosingWindow = "closing_window"
)

// The regular cash session. Only the buffers around it are tunable.
const (
	sessionOpenHour   = 9
	sessionOpenMinute = 30
	sessionCloseHour  = 16
)

// Result carries the verdict, a reason code, and the allowed window
// for that trading day in the market timezone.
type Result struct {
	Allowed     bool
	Reason      string
	Holiday     string
	WindowOpen  time.Time
	WindowClose time.Time
}

// Gate evaluates timestamps against one market session.
type Gate struct {
	cfg config.GateConfig
	loc *time.Location
}

func New(cfg config.GateConfig) (*Gate, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load gate timezone %q: %w", cfg.Timezone, err)
	}
	return &Gate{cfg: cfg, loc: loc}, nil
}

// Allows checks weekends, the computed holiday calendar, and the
// opening and closing buffers, in that order.
func (g *Gate) Allows(ts time.Time) Result {
	local := ts.In(g.loc)

	open := time.Date(local.Year(), local.Month(), local.Day(),
		sessionOpenHour, sessionOpenMinute, 0, 0, g.loc)
	close := time.Date(local.Year(), local.Month(), local.Day(),
		sessionCloseHour, 0, 0, 0, g.loc)

	res := Result{
		WindowOpen:  open.Add(time.Duration(g.cfg.MinutesAfterOpen) * time.Minute),
		WindowClose: close.Add(-time.Duration(g.cfg.MinutesBeforeClose) * time.Minute),
	}

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		res.Reason = ReasonWeekend
		return res
	}

	if name, ok := holidayName(local); ok {
		res.Reason = ReasonHoliday
		res.Holiday = name
		return res
	}

	if local.Before(res.WindowOpen) {
		res.Reason = ReasonOpeningWindow
		return res
	}
	if !local.Before(res.WindowClose) {
		res.Reason = ReasonClosingWindow
		return res
	}

	res.Allowed = true
	res.Reason = ReasonAllowed
	return res
}
