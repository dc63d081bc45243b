package scheduler

import (
	"testing"

	"hyperkids/gym-app/internal/program"
)

func TestElapsed(t *testing.T) {
	today := program.Date("2026-08-28")

	tests := []struct {
		name  string
		dates []string
		want  bool
	}{
		{"all past", []string{"2026-08-01", "2026-08-15"}, true},
		{"last date is today", []string{"2026-08-01", "2026-08-28"}, false},
		{"future date remains", []string{"2026-08-01", "2026-09-05"}, false},
		{"empty schedule", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Elapsed(tt.dates, today); got != tt.want {
				t.Errorf("Elapsed(%v) = %v, want %v", tt.dates, got, tt.want)
			}
		})
	}
}
