package gate

import (
	"testing"
	"time"

	"github.com/tidemark/signalforge/Internal/config"
)

func testGate(t *testing.T) *Gate {
	t.Helper()
	g, err := New(config.GateConfig{
		Timezone:           "America/New_York",
		MinutesAfterOpen:   30,
		MinutesBeforeClose: 5,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func et(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func TestAllows(t *testing.T) {
	g := testGate(t)

	tests := []struct {
		name   string
		ts     string
		reason string
	}{
		{"saturday blocked", "2024-06-08 11:00", ReasonWeekend},
		{"sunday blocked", "2024-06-09 11:00", ReasonWeekend},
		{"tuesday mid-session allowed", "2024-06-04 10:05", ReasonAllowed},
		{"before buffered open", "2024-06-04 09:45", ReasonOpeningWindow},
		{"overnight is opening window", "2024-06-04 03:00", ReasonOpeningWindow},
		{"exactly at window open allowed", "2024-06-04 10:00", ReasonAllowed},
		{"exactly at window close blocked", "2024-06-04 15:55", ReasonClosingWindow},
		{"after buffered close", "2024-06-04 15:56", ReasonClosingWindow},
		{"last allowed minute", "2024-06-04 15:54", ReasonAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Allows(et(t, tt.ts))
			if got.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.reason)
			}
			if got.Allowed != (tt.reason == ReasonAllowed) {
				t.Errorf("Allowed = %v, want %v", got.Allowed, tt.reason == ReasonAllowed)
			}
		})
	}
}

func TestAllows_WindowBounds(t *testing.T) {
	g := testGate(t)

	got := g.Allows(et(t, "2024-06-04 12:00"))
	if !got.Allowed {
		t.Fatalf("midday Tuesday should be allowed, got %q", got.Reason)
	}
	if got.WindowOpen.Hour() != 10 || got.WindowOpen.Minute() != 0 {
		t.Errorf("WindowOpen = %v, want 10:00 ET", got.WindowOpen)
	}
	if got.WindowClose.Hour() != 15 || got.WindowClose.Minute() != 55 {
		t.Errorf("WindowClose = %v, want 15:55 ET", got.WindowClose)
	}
}

func TestAllows_Holidays(t *testing.T) {
	g := testGate(t)

	tests := []struct {
		name    string
		ts      string
		holiday string
	}{
		{"independence day", "2024-07-04 11:00", "Independence Day"},
		{"christmas observed monday", "2022-12-26 11:00", "Christmas Day"},
		{"new year observed prior friday", "2021-12-31 11:00", "New Year's Day"},
		{"mlk day", "2024-01-15 11:00", "Martin Luther King Jr. Day"},
		{"presidents day", "2024-02-19 11:00", "Presidents' Day"},
		{"good friday", "2024-03-29 11:00", "Good Friday"},
		{"memorial day", "2024-05-27 11:00", "Memorial Day"},
		{"juneteenth", "2024-06-19 11:00", "Juneteenth"},
		{"labor day", "2024-09-02 11:00", "Labor Day"},
		{"thanksgiving", "2024-11-28 11:00", "Thanksgiving Day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Allows(et(t, tt.ts))
			if got.Allowed {
				t.Fatal("holiday timestamp must be blocked")
			}
			if got.Reason != ReasonHoliday {
				t.Errorf("Reason = %q, want %q", got.Reason, ReasonHoliday)
			}
			if got.Holiday != tt.holiday {
				t.Errorf("Holiday = %q, want %q", got.Holiday, tt.holiday)
			}
		})
	}

	// The day after a holiday trades normally.
	got := g.Allows(et(t, "2024-07-05 11:00"))
	if !got.Allowed {
		t.Errorf("day after a holiday should trade, got %q", got.Reason)
	}
}

func TestEaster(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		day   int
	}{
		{2023, time.April, 9},
		{2024, time.March, 31},
		{2025, time.April, 20},
		{2026, time.April, 5},
	}

	for _, tt := range tests {
		got := easter(tt.year)
		if got.Month() != tt.month || got.Day() != tt.day {
			t.Errorf("easter(%d) = %v, want %v %d", tt.year, got.Format("Jan 2"), tt.month, tt.day)
		}
	}
}
