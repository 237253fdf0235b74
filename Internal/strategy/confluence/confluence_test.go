package confluence

import (
	"math/rand"
	"testing"

	"github.com/tidemark/signalforge/Internal/strategy/detect"
	"github.com/tidemark/signalforge/Internal/strategy/structure"
	"github.com/tidemark/signalforge/Internal/types"
)

func TestScore_WeightedSum(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want float64
	}{
		{"all zero", Inputs{}, 0},
		{"all max", Inputs{100, 100, 100, 100, 100}, 100},
		{"structure only", Inputs{Structure: 100}, 35},
		{"trend only", Inputs{Trend: 100}, 25},
		{"volume only", Inputs{Volume: 100}, 15},
		{"liquidity only", Inputs{Liquidity: 100}, 15},
		{"volatility only", Inputs{Volatility: 100}, 10},
		{"mixed rounds to nearest", Inputs{Structure: 70, Trend: 53, Volume: 30, Liquidity: 30, Volatility: 100}, 57},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.in); got != tt.want {
				t.Errorf("Score(%+v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestScore_ClampProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		// Deliberately out-of-range inputs as well as valid ones.
		in := Inputs{
			Structure:  rng.Float64()*300 - 100,
			Trend:      rng.Float64()*300 - 100,
			Volume:     rng.Float64()*300 - 100,
			Liquidity:  rng.Float64()*300 - 100,
			Volatility: rng.Float64()*300 - 100,
		}
		got := Score(in)
		if got < 0 || got > 100 {
			t.Fatalf("Score(%+v) = %v out of [0,100]", in, got)
		}
		if got != float64(int(got)) {
			t.Fatalf("Score(%+v) = %v not rounded to a whole number", in, got)
		}
	}
}

func TestStructureScore_Components(t *testing.T) {
	zone := types.StructureZone{Direction: types.Long, Top: 105, Bottom: 102}
	st := structure.Analysis{
		Events:  []structure.Event{{Kind: structure.BOS, Direction: types.Long, Level: 106}},
		Zones:   []types.StructureZone{zone},
		Gaps:    []structure.Gap{{Direction: types.Long, Top: 104, Bottom: 103}},
		Premium: false,
	}

	tests := []struct {
		name  string
		dir   types.Direction
		price float64
		want  float64
	}{
		// BOS 35 + zone 25 + inside 15 + gap 15 + discount side 10.
		{"fully aligned long inside zone", types.Long, 103, 100},
		// Same but priced outside the zone.
		{"aligned long outside zone", types.Long, 108, 85},
		// Short against everything still gets nothing, not even the
		// side bonus (discount is the wrong side for a short).
		{"short against the book", types.Short, 103, 0},
		{"none direction", types.None, 103, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StructureScore(st, tt.dir, tt.price); got != tt.want {
				t.Errorf("StructureScore(%s, %v) = %v, want %v", tt.dir, tt.price, got, tt.want)
			}
		})
	}
}

func TestStructureScore_IgnoresMitigatedZones(t *testing.T) {
	st := structure.Analysis{
		Zones: []types.StructureZone{
			{Direction: types.Long, Top: 105, Bottom: 102, Mitigated: true},
		},
		Premium: true,
	}
	// Mitigated zone contributes nothing; premium kills the side bonus.
	if got := StructureScore(st, types.Long, 103); got != 0 {
		t.Errorf("StructureScore = %v, want 0", got)
	}
}

func TestDirectionalInputs_Penalties(t *testing.T) {
	bearish := structure.Analysis{
		Events:  []structure.Event{{Kind: structure.BOS, Direction: types.Short, Level: 95}},
		Premium: true,
	}
	tr := detect.TrendResult{Direction: types.Short}
	tr.Score = 80
	liq := detect.LiquidityResult{SweepHigh: true}
	liq.Score = 60
	var vol detect.VolumeResult
	vol.Score = 50
	var vla detect.VolatilityResult
	vla.Score = 50

	long := DirectionalInputs(types.Long, 100, bearish, tr, vol, liq, vla)
	short := DirectionalInputs(types.Short, 100, bearish, tr, vol, liq, vla)

	// Long faces the opposing-break and wrong-side structure cuts, an
	// opposing trend, and a swept high.
	if long.Trend != 80*opposingTrendPenalty {
		t.Errorf("long trend = %v, want %v", long.Trend, 80*opposingTrendPenalty)
	}
	if long.Liquidity != 60*opposingSweepPenalty {
		t.Errorf("long liquidity = %v, want %v", long.Liquidity, 60*opposingSweepPenalty)
	}
	if long.Structure != 0 {
		// No aligned components exist for the long side here.
		t.Errorf("long structure = %v, want 0", long.Structure)
	}

	if short.Trend != 80 {
		t.Errorf("short trend = %v, want 80", short.Trend)
	}
	if short.Liquidity != 60 {
		t.Errorf("short liquidity = %v, want 60", short.Liquidity)
	}
	// BOS 35 + premium side 10 for the short.
	if short.Structure != 45 {
		t.Errorf("short structure = %v, want 45", short.Structure)
	}

	if Score(short) <= Score(long) {
		t.Errorf("short score %v should beat long score %v in a bearish book",
			Score(short), Score(long))
	}
}
