package detect

import (
	"testing"
	"time"

	"github.com/tidemark/signalforge/Internal/strategy/structure"
	"github.com/tidemark/signalforge/Internal/types"
)

func flatBars(n int, price, volume float64) []types.Bar {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, n)
	for i := range bars {
		bars[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * 24 * time.Hour),
			Open:   price,
			High:   price + 0.5,
			Low:    price - 0.5,
			Close:  price,
			Volume: volume,
		}
	}
	return bars
}

func trendingBars(n int, step float64) []types.Bar {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, n)
	for i := range bars {
		c := 100 + float64(i)*step
		o := c - step/2
		hi, lo := c, o
		if o > c {
			hi, lo = o, c
		}
		bars[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * 24 * time.Hour),
			Open:   o,
			High:   hi + 0.5,
			Low:    lo - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestTrend_Direction(t *testing.T) {
	tests := []struct {
		name string
		step float64
		want types.Direction
	}{
		{"rising closes trend up", 0.8, types.Long},
		{"falling closes trend down", -0.8, types.Short},
		{"flat closes are sideways", 0, types.None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Trend(trendingBars(40, tt.step), structure.Analysis{})
			if res.Direction != tt.want {
				t.Errorf("Trend().Direction = %s, want %s", res.Direction, tt.want)
			}
			if res.Score < 0 || res.Score > 100 {
				t.Errorf("Trend().Score = %v out of [0,100]", res.Score)
			}
		})
	}
}

func TestTrend_AttenuatedWithoutAlignedBreak(t *testing.T) {
	bars := trendingBars(40, 0.8)

	noBreaks := Trend(bars, structure.Analysis{})
	withBreak := Trend(bars, structure.Analysis{
		Events: []structure.Event{{Kind: structure.BOS, Direction: types.Long}},
	})

	if noBreaks.Score >= withBreak.Score {
		t.Errorf("score without aligned break (%v) should be below score with one (%v)",
			noBreaks.Score, withBreak.Score)
	}
	if !hasFlag(noBreaks.Flags, "no-aligned-break") {
		t.Errorf("expected no-aligned-break flag, got %v", noBreaks.Flags)
	}
}

func TestTrend_Exhaustion(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, 35)
	for i := range bars {
		var c float64
		if i < 30 {
			c = 100 + float64(i)
		} else {
			c = 129 + 0.04*float64(i-29) // momentum stalls at the high
		}
		bars[i] = types.Bar{
			Time: start.Add(time.Duration(i) * 24 * time.Hour),
			Open: c - 0.2, High: c + 0.3, Low: c - 0.6, Close: c, Volume: 1000,
		}
	}

	res := Trend(bars, structure.Analysis{
		Events: []structure.Event{{Kind: structure.BOS, Direction: types.Long}},
	})

	if !res.Exhausted {
		t.Error("decelerating momentum at the high should flag exhaustion")
	}
}

func TestVolume_Flags(t *testing.T) {
	tests := []struct {
		name       string
		lastVolume float64
		lastClose  float64
		expansion  bool
		climax     bool
		divergence bool
	}{
		{"normal volume", 1000, 101, false, false, false},
		{"expansion", 1800, 101, true, false, false},
		{"climax", 3500, 101, true, true, false},
		{"price up on shrinking volume", 400, 101, false, false, true},
		{"price down on expanding volume", 1800, 99, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := flatBars(30, 100, 1000)
			last := &bars[len(bars)-1]
			last.Volume = tt.lastVolume
			last.Close = tt.lastClose
			if tt.lastClose > last.High {
				last.High = tt.lastClose
			}
			if tt.lastClose < last.Low {
				last.Low = tt.lastClose
			}

			res := Volume(bars, 20)
			if res.Expansion != tt.expansion {
				t.Errorf("Expansion = %v, want %v (ratio %v)", res.Expansion, tt.expansion, res.Ratio)
			}
			if res.Climax != tt.climax {
				t.Errorf("Climax = %v, want %v", res.Climax, tt.climax)
			}
			if res.Divergence != tt.divergence {
				t.Errorf("Divergence = %v, want %v", res.Divergence, tt.divergence)
			}
			if res.Score < 0 || res.Score > 100 {
				t.Errorf("Score = %v out of [0,100]", res.Score)
			}
		})
	}
}

func TestLiquidity_EqualLevelsAndSweep(t *testing.T) {
	bars := flatBars(10, 100, 1000)

	// Two non-adjacent highs within 0.1% of each other.
	bars[2].High = 103
	bars[6].High = 103.05

	// Last bar pierces the prior high and closes back inside.
	bars[8].High = 101
	bars[9].High = 101.4
	bars[9].Close = 100.6
	bars[9].Open = 100.8

	res := Liquidity(bars, 0.001)

	if !res.EqualHighs {
		t.Error("expected equal highs within tolerance")
	}
	if !res.SweepHigh {
		t.Error("expected sweep of the prior bar's high")
	}
	if res.Score != equalHighsPoints+equalLowsPoints+sweepPoints {
		// Flat fixture also has equal lows everywhere.
		t.Errorf("Score = %v, want %v", res.Score, equalHighsPoints+equalLowsPoints+sweepPoints)
	}
}

func TestLiquidity_NoFlagsOnCleanTrend(t *testing.T) {
	res := Liquidity(trendingBars(30, 2.0), 0.001)
	if res.EqualHighs || res.EqualLows || res.SweepHigh || res.SweepLow {
		t.Errorf("clean trend should carry no liquidity flags, got %+v", res)
	}
	if res.Score != 0 {
		t.Errorf("Score = %v, want 0", res.Score)
	}
}

func TestVolatility_Regimes(t *testing.T) {
	bars := flatBars(60, 100, 1000)

	res := Volatility(bars, 14)
	if res.Regime != RegimeNormal {
		t.Errorf("steady ranges should be normal regime, got %s", res.Regime)
	}
	if res.Score < 90 {
		t.Errorf("steady regime score = %v, want >= 90", res.Score)
	}

	// Blow out the last stretch of ranges to push ATR above its median.
	for i := 45; i < 60; i++ {
		bars[i].High = 104
		bars[i].Low = 96
	}
	res = Volatility(bars, 14)
	if res.Regime != RegimeHigh {
		t.Errorf("expanded ranges should be high regime, got %s", res.Regime)
	}
	if res.ATR <= 0 {
		t.Errorf("ATR = %v, want > 0", res.ATR)
	}
	if res.Score >= 90 {
		t.Errorf("high regime score = %v, want < 90", res.Score)
	}
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
