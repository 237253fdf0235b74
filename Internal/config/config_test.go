package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	if cfg.Engine.ConfidenceFloor != 40 {
		t.Errorf("ConfidenceFloor = %v, want 40", cfg.Engine.ConfidenceFloor)
	}
	if cfg.Engine.MinSeparation != 10 {
		t.Errorf("MinSeparation = %v, want 10", cfg.Engine.MinSeparation)
	}
	if cfg.Risk.MinRewardToRisk != 1.5 {
		t.Errorf("MinRewardToRisk = %v, want 1.5", cfg.Risk.MinRewardToRisk)
	}
	if cfg.Gate.Timezone != "America/New_York" {
		t.Errorf("Timezone = %q, want America/New_York", cfg.Gate.Timezone)
	}
	if len(cfg.Profiles) != 3 {
		t.Fatalf("got %d profiles, want 3", len(cfg.Profiles))
	}
	if cfg.Profiles["fast"].VolumeLookback != 10 {
		t.Errorf("fast VolumeLookback = %d, want 10", cfg.Profiles["fast"].VolumeLookback)
	}
	if cfg.Profiles["slow"].SwingLookback != 5 {
		t.Errorf("slow SwingLookback = %d, want 5", cfg.Profiles["slow"].SwingLookback)
	}
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
engine:
  confidence_floor: 55
risk:
  min_reward_to_risk: 2.0
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Engine.ConfidenceFloor != 55 {
		t.Errorf("ConfidenceFloor = %v, want overridden 55", cfg.Engine.ConfidenceFloor)
	}
	if cfg.Risk.MinRewardToRisk != 2.0 {
		t.Errorf("MinRewardToRisk = %v, want overridden 2.0", cfg.Risk.MinRewardToRisk)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	// Untouched fields keep their defaults.
	if cfg.Engine.MinSeparation != 10 {
		t.Errorf("MinSeparation = %v, want default 10", cfg.Engine.MinSeparation)
	}
	if cfg.Backtest.RiskPerTrade != 0.01 {
		t.Errorf("RiskPerTrade = %v, want default 0.01", cfg.Backtest.RiskPerTrade)
	}
	if len(cfg.Profiles) != 3 {
		t.Errorf("got %d profiles, want default set of 3", len(cfg.Profiles))
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"confidence floor above 100", "engine:\n  confidence_floor: 150\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"zero reward to risk", "risk:\n  min_reward_to_risk: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load accepted an invalid config")
			}
		})
	}
}

func TestProfile_FallsBackToMedium(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	got := cfg.Profile("unknown")
	if got.VolumeLookback != cfg.Profiles["medium"].VolumeLookback {
		t.Errorf("fallback VolumeLookback = %d, want medium's %d",
			got.VolumeLookback, cfg.Profiles["medium"].VolumeLookback)
	}
}
