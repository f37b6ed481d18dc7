package utils

import (
	"testing"
	"time"
)

func TestSessionForHour(t *testing.T) {
	tests := []struct {
		hour int
		want Session
		ok   bool
	}{
		{3, "", false},
		{4, SessionPreMarket, true},
		{8, SessionPreMarket, true},
		{9, SessionMorning, true},
		{11, SessionMorning, true},
		{12, SessionMidday, true},
		{14, SessionMidday, true},
		{15, SessionAfternoon, true},
		{16, SessionAfternoon, true},
		{17, SessionAfterHours, true},
		{19, SessionAfterHours, true},
		{20, "", false},
	}

	for _, tt := range tests {
		got, ok := SessionForHour(tt.hour)
		if got != tt.want || ok != tt.ok {
			t.Errorf("SessionForHour(%d) = (%q, %v), want (%q, %v)", tt.hour, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSessionHoursCoverage(t *testing.T) {
	total := 0
	for _, s := range Sessions() {
		for _, h := range SessionHours(s) {
			got, ok := SessionForHour(h)
			if !ok || got != s {
				t.Errorf("hour %d listed under %q maps to %q", h, s, got)
			}
			total++
		}
	}
	if total != 16 {
		t.Errorf("expected 16 session hours (4-19), got %d", total)
	}
}

func TestNextTradingDay(t *testing.T) {
	fri := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	if got := NextTradingDay(fri); got.Day() != 9 || got.Weekday() != time.Monday {
		t.Errorf("NextTradingDay(Fri Jun 6) = %v, want Mon Jun 9", got)
	}
	if got := DaysInMonth(fri); got != 30 {
		t.Errorf("DaysInMonth(June) = %d, want 30", got)
	}
	if !IsWeekend(time.Saturday) || IsWeekend(time.Monday) {
		t.Error("IsWeekend misclassified a day")
	}
}
