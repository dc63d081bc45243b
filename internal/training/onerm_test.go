package training

import (
	"math"
	"testing"
)

func TestEstimateOneRM_Brzycki(t *testing.T) {
	tests := []struct {
		name     string
		weightKg float64
		reps     int
		want     float64
	}{
		{"100kg x 5", 100, 5, 112.5},  // 100 * (36 / 32)
		{"80kg x 10", 80, 10, 106.67}, // 80 * (36 / 27)
		{"60kg x 3", 60, 3, 63.53},    // 60 * (36 / 34)
		{"1 rep is same as weight", 100, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateOneRM(tt.weightKg, tt.reps, MethodBrzycki)
			if math.Abs(got-tt.want) > 0.1 {
				t.Errorf("EstimateOneRM(%v, %v, brzycki) = %v, want %v", tt.weightKg, tt.reps, got, tt.want)
			}
		})
	}
}

func TestEstimateOneRM_Epley(t *testing.T) {
	tests := []struct {
		name     string
		weightKg float64
		reps     int
		want     float64
	}{
		{"100kg x 5", 100, 5, 116.65},
		{"80kg x 10", 80, 10, 106.64},
		{"1 rep is same as weight", 100, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateOneRM(tt.weightKg, tt.reps, MethodEpley)
			if math.Abs(got-tt.want) > 0.1 {
				t.Errorf("EstimateOneRM(%v, %v, epley) = %v, want %v", tt.weightKg, tt.reps, got, tt.want)
			}
		})
	}
}

func TestEstimateOneRM_Average(t *testing.T) {
	weight := 100.0
	reps := 5
	want := (EstimateOneRM(weight, reps, MethodBrzycki) + EstimateOneRM(weight, reps, MethodEpley)) / 2

	got := EstimateOneRM(weight, reps, MethodAverage)
	if math.Abs(got-want) > 0.1 {
		t.Errorf("EstimateOneRM average = %v, want %v", got, want)
	}
}

func TestEstimateOneRM_EdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		weightKg float64
		reps     int
	}{
		{"zero weight", 0, 5},
		{"zero reps", 100, 0},
		{"negative weight", -100, 5},
		{"negative reps", 100, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateOneRM(tt.weightKg, tt.reps, MethodBrzycki); got != 0 {
				t.Errorf("EstimateOneRM(%v, %v) = %v, want 0", tt.weightKg, tt.reps, got)
			}
		})
	}
}

func TestWorkingWeight(t *testing.T) {
	tests := []struct {
		name      string
		oneRM     float64
		intensity float64
		want      float64
	}{
		{"80% of 100kg", 100, 80, 80},
		{"rounds to half kilo", 103, 80, 82.5}, // 82.4 -> 82.5
		{"zero 1RM", 0, 80, 0},
		{"zero intensity", 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorkingWeight(tt.oneRM, tt.intensity); got != tt.want {
				t.Errorf("WorkingWeight(%v, %v) = %v, want %v", tt.oneRM, tt.intensity, got, tt.want)
			}
		})
	}
}

func TestWorkingWeightRounded(t *testing.T) {
	// 85% of 142.5 is 121.125; nearest 2.5kg plate load is 120.
	if got := WorkingWeightRounded(142.5, 85, 2.5); got != 120 {
		t.Errorf("WorkingWeightRounded = %v, want 120", got)
	}
}

func TestIntensityRepsTablesAreInverse(t *testing.T) {
	for reps, intensity := range repsToIntensity {
		if got := RepsForIntensity(intensity); got != reps {
			t.Errorf("RepsForIntensity(%v) = %d, want %d", intensity, got, reps)
		}
	}
}

func TestIntensityForReps_OffTableApproximation(t *testing.T) {
	tests := []struct {
		reps int
		want float64
	}{
		{13, 61}, // 100 - 13*3
		{0, 100},
		{25, 50},
	}
	for _, tt := range tests {
		if got := IntensityForReps(tt.reps); got != tt.want {
			t.Errorf("IntensityForReps(%d) = %v, want %v", tt.reps, got, tt.want)
		}
	}
}

func TestMethodValid(t *testing.T) {
	for _, m := range []Method{MethodBrzycki, MethodEpley, MethodAverage} {
		if !m.Valid() {
			t.Errorf("Method %q reported invalid", m)
		}
	}
	if Method("guess").Valid() {
		t.Error("unknown method reported valid")
	}
}
