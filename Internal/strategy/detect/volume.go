package detect

import (
	"github.com/tidemark/signalforge/Internal/strategy/indicators"
	"github.com/tidemark/signalforge/Internal/types"
)

const (
	volumeExpansionRatio = 1.5
	volumeClimaxRatio    = 3.0
)

// VolumeResult scores participation behind the latest bar.
type VolumeResult struct {
	types.DetectorScore
	Ratio      float64
	Expansion  bool
	Climax     bool
	Divergence bool
}

// Volume compares the latest bar's volume to the rolling average of
// the preceding lookback bars. Expansion and climax reward the score;
// price/volume divergence penalizes it.
func Volume(bars []types.Bar, lookback int) VolumeResult {
	res := VolumeResult{Ratio: 1}
	if len(bars) < 2 {
		res.Score = 50
		return res
	}
	if lookback < 2 {
		lookback = 20
	}
	if lookback > len(bars)-1 {
		lookback = len(bars) - 1
	}

	vols := make([]float64, 0, lookback)
	for i := len(bars) - 1 - lookback; i < len(bars)-1; i++ {
		vols = append(vols, bars[i].Volume)
	}
	avg := indicators.Average(vols)
	if avg > 0 {
		res.Ratio = bars[len(bars)-1].Volume / avg
	}

	score := 50.0
	if res.Ratio > volumeExpansionRatio {
		res.Expansion = true
		res.Flags = append(res.Flags, "expansion")
		score += 25
	}
	if res.Ratio > volumeClimaxRatio {
		res.Climax = true
		res.Flags = append(res.Flags, "climax")
		score += 15
	}

	// Divergence: the latest price push is not backed by volume, or
	// volume surges while price stalls.
	last := bars[len(bars)-1]
	prev := bars[len(bars)-2]
	priceUp := last.Close > prev.Close
	volumeUp := res.Ratio >= 1
	if priceUp != volumeUp {
		res.Divergence = true
		res.Flags = append(res.Flags, "divergence")
		score -= 30
	}

	res.Score = indicators.Clamp(score, 0, 100)
	return res
}
