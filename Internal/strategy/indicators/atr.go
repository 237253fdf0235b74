package indicators

import (
	"math"

	"github.com/tidemark/signalforge/Internal/types"
)

// ATRSeries computes a Wilder-smoothed Average True Range series.
// Entries before the first full period are zero.
func ATRSeries(bars []types.Bar, period int) []float64 {
	length := len(bars)
	atr := make([]float64, length)
	if period < 1 || length < period+1 {
		return atr
	}

	trs := make([]float64, length)
	trs[0] = bars[0].High - bars[0].Low
	for i := 1; i < length; i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		trs[i] = math.Max(hl, math.Max(hc, lc))
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += trs[i]
	}
	atr[period-1] = sum / float64(period)

	for i := period; i < length; i++ {
		atr[i] = (atr[i-1]*float64(period-1) + trs[i]) / float64(period)
	}
	return atr
}

// ATR returns the latest ATR value for the window, or 0 when the
// window is too short.
func ATR(bars []types.Bar, period int) float64 {
	series := ATRSeries(bars, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
