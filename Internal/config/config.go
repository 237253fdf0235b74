package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full engine configuration. Every component receives
// its slice of this struct at construction time; nothing reads
// configuration ambiently.
type Config struct {
	Logging  LoggingConfig            `yaml:"logging"`
	Engine   EngineConfig             `yaml:"engine"`
	Risk     RiskConfig               `yaml:"risk"`
	Backtest BacktestConfig           `yaml:"backtest"`
	Gate     GateConfig               `yaml:"gate"`
	Profiles map[string]ProfileConfig `yaml:"profiles"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

// EngineConfig carries the signal-selection thresholds. They live
// here rather than as constants so a future change is a config edit.
type EngineConfig struct {
	ConfidenceFloor float64 `yaml:"confidence_floor" default:"40" validate:"gte=0,lte=100"`
	MinSeparation   float64 `yaml:"min_separation" default:"10" validate:"gte=0,lte=100"`
	BatchWorkers    int     `yaml:"batch_workers" default:"4" validate:"gte=1,lte=64"`
}

// RiskConfig drives the risk-level generator.
type RiskConfig struct {
	MinRewardToRisk float64 `yaml:"min_reward_to_risk" default:"1.5" validate:"gt=0"`
	StopATRMult     float64 `yaml:"stop_atr_mult" default:"1.5" validate:"gt=0"`
	TargetATRMult   float64 `yaml:"target_atr_mult" default:"3.0" validate:"gt=0"`
}

// BacktestConfig drives the execution simulator.
type BacktestConfig struct {
	RiskPerTrade    float64 `yaml:"risk_per_trade" default:"0.01" validate:"gt=0,lt=1"`
	PartialFraction float64 `yaml:"partial_fraction" default:"0.5" validate:"gt=0,lt=1"`
	// TP1Fraction places the first target at this fraction of the
	// entry-to-target distance; the remainder exits at the full target.
	TP1Fraction float64 `yaml:"tp1_fraction" default:"0.5" validate:"gt=0,lt=1"`
}

// GateConfig bounds the tradable session. The exchange session itself
// (09:30-16:00) is fixed; only the buffers are tunable.
type GateConfig struct {
	Timezone           string `yaml:"timezone" default:"America/New_York"`
	MinutesAfterOpen   int    `yaml:"minutes_after_open" default:"30" validate:"gte=0,lte=180"`
	MinutesBeforeClose int    `yaml:"minutes_before_close" default:"5" validate:"gte=0,lte=180"`
}

// ProfileConfig holds per-style detector tuning.
type ProfileConfig struct {
	VolumeLookback      int     `yaml:"volume_lookback" default:"20" validate:"gte=2"`
	ATRPeriod           int     `yaml:"atr_period" default:"14" validate:"gte=2"`
	SwingLookback       int     `yaml:"swing_lookback" default:"3" validate:"gte=1"`
	EqualLevelTolerance float64 `yaml:"equal_level_tolerance" default:"0.001" validate:"gt=0"`
}

// Default returns a Config populated entirely from struct defaults.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	cfg.Profiles = defaultProfiles()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a YAML config file, fills gaps from defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = defaultProfiles()
	}
	for name, profile := range cfg.Profiles {
		if err := defaults.Set(&profile); err != nil {
			return nil, fmt.Errorf("profile %s defaults: %w", name, err)
		}
		cfg.Profiles[name] = profile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	for name, profile := range c.Profiles {
		if err := v.Struct(profile); err != nil {
			return fmt.Errorf("validate profile %s: %w", name, err)
		}
	}
	return nil
}

// Profile returns the tuning for a style, falling back to medium.
func (c *Config) Profile(style string) ProfileConfig {
	if p, ok := c.Profiles[style]; ok {
		return p
	}
	if p, ok := c.Profiles["medium"]; ok {
		return p
	}
	p := ProfileConfig{}
	_ = defaults.Set(&p)
	return p
}

func defaultProfiles() map[string]ProfileConfig {
	fast := ProfileConfig{}
	_ = defaults.Set(&fast)
	fast.VolumeLookback = 10
	fast.SwingLookback = 2

	medium := ProfileConfig{}
	_ = defaults.Set(&medium)

	slow := ProfileConfig{}
	_ = defaults.Set(&slow)
	slow.VolumeLookback = 30
	slow.SwingLookback = 5

	return map[string]ProfileConfig{
		"fast":   fast,
		"medium": medium,
		"slow":   slow,
	}
}
