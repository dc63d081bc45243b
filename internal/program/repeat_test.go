package program

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
)

// makeTemplate builds template weeks with the given day counts per week.
// Day numbers restart at 1 within each week.
func makeTemplate(daysPerWeek ...int) []domain.TemplateWeek {
	weeks := make([]domain.TemplateWeek, 0, len(daysPerWeek))
	for w, count := range daysPerWeek {
		week := domain.TemplateWeek{
			ID:         primitive.NewObjectID(),
			WeekNumber: w + 1,
		}
		for d := 0; d < count; d++ {
			week.Days = append(week.Days, domain.TemplateDay{
				ID:        primitive.NewObjectID(),
				DayNumber: d + 1,
				Blocks: []domain.TemplateBlock{{
					ID:       primitive.NewObjectID(),
					Name:     "Main",
					Sequence: 1,
					Exercises: []domain.TemplateExercise{{
						ID:       primitive.NewObjectID(),
						Name:     "Back Squat",
						Sets:     3,
						Reps:     "5",
						Sequence: 1,
					}},
				}},
			})
		}
		weeks = append(weeks, week)
	}
	return weeks
}

func displayDayCount(weeks []DisplayWeek) int {
	total := 0
	for _, w := range weeks {
		total += len(w.Days)
	}
	return total
}

func TestRepeat_OneWeekTemplateSevenDates(t *testing.T) {
	// 1 week of 3 days, 7 dates: fullCycles=2, remainingDays=1, extraWeeks=1,
	// so 3 weeks and 9 days total.
	base := makeTemplate(3)
	got := Repeat(base, 7)

	if len(got) != 3 {
		t.Fatalf("Repeat produced %d weeks, want 3", len(got))
	}
	if days := displayDayCount(got); days != 9 {
		t.Errorf("Repeat produced %d days, want 9", days)
	}
	for i, w := range got {
		if w.WeekNumber != i+1 {
			t.Errorf("week %d has WeekNumber %d, want %d", i, w.WeekNumber, i+1)
		}
		if w.Provenance.Cycle != i {
			t.Errorf("week %d has Cycle %d, want %d", i, w.Provenance.Cycle, i)
		}
		if w.Provenance.TemplateWeekID != base[0].ID.Hex() {
			t.Errorf("week %d provenance does not reference the template week", i)
		}
	}
}

func TestRepeat_NoExpansionCases(t *testing.T) {
	tests := []struct {
		name      string
		weeks     []domain.TemplateWeek
		count     int
		wantWeeks int
	}{
		{"zero count", makeTemplate(3, 3), 0, 2},
		{"empty template", nil, 5, 0},
		{"template already covers", makeTemplate(3, 3), 5, 2},
		{"exact cycle", makeTemplate(3, 3), 6, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repeat(tt.weeks, tt.count)
			if len(got) != tt.wantWeeks {
				t.Fatalf("Repeat produced %d weeks, want %d", len(got), tt.wantWeeks)
			}
			// Passthrough keeps the template's own numbering.
			for i, w := range got {
				if w.WeekNumber != tt.weeks[i].WeekNumber {
					t.Errorf("week %d renumbered to %d, want original %d", i, w.WeekNumber, tt.weeks[i].WeekNumber)
				}
				if w.Provenance.Cycle != 0 {
					t.Errorf("week %d has cycle %d, want 0", i, w.Provenance.Cycle)
				}
			}
		})
	}
}

func TestRepeat_CoverageProperty(t *testing.T) {
	// For n >= 1 the expansion covers at least n days and never overshoots
	// by a full cycle or more.
	templates := [][]int{{3}, {3, 2}, {4, 4, 2}, {1}, {2, 5, 3}}
	for _, shape := range templates {
		weeks := makeTemplate(shape...)
		cycle := TotalDays(weeks)
		for n := 1; n <= 3*cycle+1; n++ {
			got := Repeat(weeks, n)
			days := displayDayCount(got)
			if days < n {
				t.Fatalf("template %v, n=%d: %d days under-covers", shape, n, days)
			}
			if days >= n+cycle && len(got) > len(weeks) {
				t.Fatalf("template %v, n=%d: %d days over-covers by a full cycle", shape, n, days)
			}
		}
	}
}

func TestRepeat_Idempotent(t *testing.T) {
	// Re-expanding an already-sufficient week set yields the same set.
	base := makeTemplate(3)
	first := Repeat(base, 7)

	// Treat the expansion's weeks as a template with the same shape.
	asTemplate := make([]domain.TemplateWeek, len(first))
	for i, w := range first {
		asTemplate[i] = domain.TemplateWeek{
			WeekNumber: w.WeekNumber,
			Name:       w.Name,
			Days:       w.Days,
		}
	}
	second := Repeat(asTemplate, 7)

	if len(second) != len(first) {
		t.Fatalf("re-expansion produced %d weeks, want %d", len(second), len(first))
	}
	for i := range second {
		if second[i].WeekNumber != first[i].WeekNumber {
			t.Errorf("week %d renumbered on re-expansion", i)
		}
		if diff := cmp.Diff(first[i].Days, second[i].Days); diff != "" {
			t.Errorf("week %d days changed on re-expansion (-first +second):\n%s", i, diff)
		}
	}
}

func TestRepeat_PreservesDayNumbersAndContent(t *testing.T) {
	base := makeTemplate(2, 3)
	got := Repeat(base, 11) // 2 full cycles (10 days) + 1 remaining -> 5 weeks

	if len(got) != 5 {
		t.Fatalf("Repeat produced %d weeks, want 5", len(got))
	}
	for i, w := range got {
		src := base[i%len(base)]
		if len(w.Days) != len(src.Days) {
			t.Fatalf("week %d has %d days, want %d", i, len(w.Days), len(src.Days))
		}
		for j, day := range w.Days {
			if day.DayNumber != src.Days[j].DayNumber {
				t.Errorf("week %d day %d renumbered to %d, want %d", i, j, day.DayNumber, src.Days[j].DayNumber)
			}
			if diff := cmp.Diff(src.Days[j].Blocks, day.Blocks); diff != "" {
				t.Errorf("week %d day %d content differs from template (-template +display):\n%s", i, j, diff)
			}
		}
	}
}

func TestRepeat_DeepClonesContent(t *testing.T) {
	base := makeTemplate(3)
	got := Repeat(base, 7)

	got[0].Days[0].Blocks[0].Exercises[0].Name = "mutated"
	if base[0].Days[0].Blocks[0].Exercises[0].Name == "mutated" {
		t.Error("mutating the display weeks leaked into the template")
	}
}
