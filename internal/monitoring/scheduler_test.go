// internal/monitoring/scheduler_test.go
package monitoring

import (
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{"00:00", 0, 0, false},
		{"23:59", 23, 59, false},
		{"06:30", 6, 30, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"noon", 0, 0, true},
		{"12", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		hour, minute, err := ParseClockTime(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClockTime(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClockTime(%q) failed: %v", tt.input, err)
			continue
		}
		if hour != tt.hour || minute != tt.minute {
			t.Errorf("ParseClockTime(%q) = %d:%d, want %d:%d", tt.input, hour, minute, tt.hour, tt.minute)
		}
	}
}

func TestNextDailyRun(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.Local)

	next := NextDailyRun(now, 23, 0)
	want := time.Date(2026, 8, 28, 23, 0, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Errorf("later today: got %v, want %v", next, want)
	}

	next = NextDailyRun(now, 0, 0)
	want = time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Errorf("earlier today rolls to tomorrow: got %v, want %v", next, want)
	}

	exact := time.Date(2026, 8, 28, 10, 30, 0, 0, time.Local)
	next = NextDailyRun(exact, 10, 30)
	want = time.Date(2026, 8, 29, 10, 30, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Errorf("exact match should schedule tomorrow: got %v, want %v", next, want)
	}
}

func TestSurveillanceStartStop(t *testing.T) {
	store := newFakeStore()
	checker := NewHealthChecker(store, NewAlertManager(store, nil), &fakeProber{}, nil, 1)
	sv := NewSurveillance(checker)

	if sv.Status().Running {
		t.Fatal("surveillance should start stopped")
	}
	if !sv.Start(time.Hour) {
		t.Fatal("first Start should succeed")
	}
	defer sv.Stop()

	if sv.Start(time.Hour) {
		t.Error("second Start should be a no-op")
	}

	status := sv.Status()
	if !status.Running || status.Interval != "1h0m0s" {
		t.Errorf("unexpected status: %+v", status)
	}

	if !sv.Stop() {
		t.Error("Stop while running should succeed")
	}
	if sv.Stop() {
		t.Error("second Stop should be a no-op")
	}
	if sv.Status().Running {
		t.Error("surveillance should report stopped")
	}
}
