package training

import "math"

// Method selects the 1RM estimation formula.
type Method string

const (
	MethodBrzycki Method = "brzycki"
	MethodEpley   Method = "epley"
	MethodAverage Method = "average"
)

// Valid reports whether m names a known estimation formula.
func (m Method) Valid() bool {
	switch m {
	case MethodBrzycki, MethodEpley, MethodAverage:
		return true
	}
	return false
}

// EstimateOneRM estimates a one-rep max from a submaximal set.
// Returns 0 for non-positive inputs. A single rep is its own max.
func EstimateOneRM(weightKg float64, reps int, method Method) float64 {
	if reps <= 0 || weightKg <= 0 {
		return 0
	}
	if reps == 1 {
		return weightKg
	}

	switch method {
	case MethodEpley:
		return epley(weightKg, reps)
	case MethodAverage:
		return round2((brzycki(weightKg, reps) + epley(weightKg, reps)) / 2)
	default:
		return brzycki(weightKg, reps)
	}
}

// brzycki: 1RM = weight * (36 / (37 - reps)). Most accurate under 10 reps.
func brzycki(weightKg float64, reps int) float64 {
	if reps >= 37 {
		return weightKg
	}
	return round2(weightKg * (36.0 / float64(37-reps)))
}

// epley: 1RM = weight * (1 + 0.0333 * reps). Better for higher rep ranges.
func epley(weightKg float64, reps int) float64 {
	return round2(weightKg * (1 + 0.0333*float64(reps)))
}

// WorkingWeight derives a working weight from a 1RM and an intensity
// percentage, rounded to the nearest 0.5 kg for practical loading.
func WorkingWeight(oneRM, intensityPercent float64) float64 {
	if oneRM <= 0 || intensityPercent <= 0 {
		return 0
	}
	raw := oneRM * intensityPercent / 100
	return math.Round(raw*2) / 2
}

// WorkingWeightRounded rounds to an arbitrary increment (e.g. 2.5 kg for
// plate math).
func WorkingWeightRounded(oneRM, intensityPercent, increment float64) float64 {
	if oneRM <= 0 || intensityPercent <= 0 || increment <= 0 {
		return 0
	}
	raw := oneRM * intensityPercent / 100
	return math.Round(raw/increment) * increment
}

// repsToIntensity maps a target rep count to the recommended intensity
// percentage of 1RM.
var repsToIntensity = map[int]float64{
	1:  100,
	2:  97,
	3:  94,
	4:  91,
	5:  88,
	6:  85,
	7:  82,
	8:  79,
	9:  76,
	10: 73,
	11: 70,
	12: 67,
	14: 64,
	16: 61,
	18: 58,
	20: 55,
}

// intensityToReps maps an intensity percentage to the approximate reps
// achievable at it.
var intensityToReps = map[int]int{
	100: 1,
	97:  2,
	94:  3,
	91:  4,
	88:  5,
	85:  6,
	82:  7,
	79:  8,
	76:  9,
	73:  10,
	70:  11,
	67:  12,
	64:  14,
	61:  16,
	58:  18,
	55:  20,
}

// IntensityForReps returns the recommended intensity percentage for a target
// rep count, approximating between table entries.
func IntensityForReps(targetReps int) float64 {
	if intensity, ok := repsToIntensity[targetReps]; ok {
		return intensity
	}
	if targetReps < 1 {
		return 100
	}
	if targetReps > 20 {
		return 50
	}
	return float64(100 - targetReps*3)
}

// RepsForIntensity returns the approximate reps achievable at an intensity
// percentage.
func RepsForIntensity(intensity float64) int {
	if intensity >= 100 {
		return 1
	}
	if intensity <= 55 {
		return 20
	}
	if reps, ok := intensityToReps[int(math.Round(intensity))]; ok {
		return reps
	}
	return int(math.Round((100 - intensity) / 3))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
