package program

import (
	"hyperkids/gym-app/internal/domain"
)

// Provenance identifies the template week a display week was cloned from.
// Cycle 0 is the first pass over the template; later cycles are repeats.
// Carrying provenance as a typed value (instead of a suffixed synthetic id)
// makes it impossible to confuse a display row with a persisted one.
type Provenance struct {
	TemplateWeekID string `json:"templateWeekId"`
	Cycle          int    `json:"cycle"`
}

// DisplayWeek is a read-only week produced by cycling a template so its day
// count covers the assignment's training dates. Never persisted.
type DisplayWeek struct {
	Provenance Provenance         `json:"provenance"`
	WeekNumber int                `json:"weekNumber"`
	Name       string             `json:"name,omitempty"`
	Days       []domain.TemplateDay `json:"days"`
}

// TotalDays sums day counts across template weeks: the length of one full
// cycle of the template.
func TotalDays(weeks []domain.TemplateWeek) int {
	total := 0
	for _, w := range weeks {
		total += len(w.Days)
	}
	return total
}

// Repeat expands a template's weeks so their cumulative day count covers
// trainingDatesCount occurrences, cycling the template as needed.
//
// Weeks are renumbered sequentially from 1 in the output. Day numbers within
// a cloned week are preserved verbatim: they index into workout content, not
// calendar position. When no expansion is needed (empty template, zero
// count, or the template already covers the count) the template weeks are
// returned as cycle-0 display weeks with their original numbering.
//
// The remainder of a partial cycle is never subdivided below week
// granularity: a week that is only partially needed is still emitted whole.
func Repeat(baseWeeks []domain.TemplateWeek, trainingDatesCount int) []DisplayWeek {
	totalDaysPerCycle := TotalDays(baseWeeks)
	if totalDaysPerCycle == 0 || trainingDatesCount <= 0 {
		return passthrough(baseWeeks)
	}

	fullCycles := trainingDatesCount / totalDaysPerCycle
	remainingDays := trainingDatesCount % totalDaysPerCycle

	extraWeeks := 0
	accumulated := 0
	for _, w := range baseWeeks {
		if accumulated >= remainingDays {
			break
		}
		accumulated += len(w.Days)
		extraWeeks++
	}

	totalWeeksNeeded := fullCycles*len(baseWeeks) + extraWeeks
	if totalWeeksNeeded <= len(baseWeeks) {
		return passthrough(baseWeeks)
	}

	out := make([]DisplayWeek, 0, totalWeeksNeeded)
	for i := 0; i < totalWeeksNeeded; i++ {
		src := baseWeeks[i%len(baseWeeks)]
		out = append(out, DisplayWeek{
			Provenance: Provenance{
				TemplateWeekID: src.ID.Hex(),
				Cycle:          i / len(baseWeeks),
			},
			WeekNumber: i + 1,
			Name:       src.Name,
			Days:       cloneDays(src.Days),
		})
	}
	return out
}

// passthrough wraps template weeks unchanged as cycle-0 display weeks.
func passthrough(baseWeeks []domain.TemplateWeek) []DisplayWeek {
	out := make([]DisplayWeek, 0, len(baseWeeks))
	for _, w := range baseWeeks {
		out = append(out, DisplayWeek{
			Provenance: Provenance{TemplateWeekID: w.ID.Hex(), Cycle: 0},
			WeekNumber: w.WeekNumber,
			Name:       w.Name,
			Days:       cloneDays(w.Days),
		})
	}
	return out
}

func cloneDays(days []domain.TemplateDay) []domain.TemplateDay {
	out := make([]domain.TemplateDay, len(days))
	for i, d := range days {
		out[i] = d
		out[i].Blocks = cloneBlocks(d.Blocks)
	}
	return out
}

func cloneBlocks(blocks []domain.TemplateBlock) []domain.TemplateBlock {
	out := make([]domain.TemplateBlock, len(blocks))
	for i, b := range blocks {
		out[i] = b
		out[i].Exercises = append([]domain.TemplateExercise(nil), b.Exercises...)
	}
	return out
}
