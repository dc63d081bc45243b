package program

import "sort"

// WeekSlot describes one week of the (expanded) structure the coach is
// picking dates for: its number, how many dates it needs, and a label.
type WeekSlot struct {
	WeekNumber int
	DaysCount  int
	Name       string
}

// WeekStructure derives the selection structure from expanded display weeks.
func WeekStructure(weeks []DisplayWeek) []WeekSlot {
	slots := make([]WeekSlot, 0, len(weeks))
	for _, w := range weeks {
		slots = append(slots, WeekSlot{
			WeekNumber: w.WeekNumber,
			DaysCount:  len(w.Days),
			Name:       w.Name,
		})
	}
	return slots
}

// Selector holds the in-memory state of a coach picking training dates for
// an assignment, partitioned per template week. It performs no I/O;
// persistence happens only on explicit submission by the caller.
type Selector struct {
	slots    []WeekSlot
	required int
	today    Date
	selected map[int][]Date // weekNumber -> sorted selected dates
}

// NewSelector builds a selector over the given week structure. today defines
// which candidate dates count as past.
func NewSelector(slots []WeekSlot, today Date) *Selector {
	required := 0
	for _, s := range slots {
		required += s.DaysCount
	}
	return &Selector{
		slots:    slots,
		required: required,
		today:    today,
		selected: make(map[int][]Date),
	}
}

// Toggle selects date d for the given week, or deselects it if already
// selected there. Deselection is always permitted. Selection is a silent
// no-op (returns false) when any rule would be violated:
//
//   - d is strictly before today,
//   - the week does not exist in the structure,
//   - d is already selected under a different week,
//   - the week's own quota is already filled,
//   - an earlier week's quota is not yet filled.
//
// The total-count invariant (never more than required) follows from the
// per-week quotas.
func (s *Selector) Toggle(weekNumber int, d Date) bool {
	if s.removeIfSelected(weekNumber, d) {
		return true
	}

	slot, ok := s.slot(weekNumber)
	if !ok {
		return false
	}
	if d.Before(s.today) {
		return false
	}
	if s.selectedAnywhere(d) {
		return false
	}
	if len(s.selected[weekNumber]) >= slot.DaysCount {
		return false
	}
	if !s.earlierWeeksFilled(weekNumber) {
		return false
	}

	dates := append(s.selected[weekNumber], d)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	s.selected[weekNumber] = dates
	return true
}

// Selected returns every selected date, sorted ascending across weeks.
func (s *Selector) Selected() []Date {
	var all []Date
	for _, dates := range s.selected {
		all = append(all, dates...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Before(all[j]) })
	return all
}

// SelectedInWeek returns the sorted dates currently attributed to a week.
func (s *Selector) SelectedInWeek(weekNumber int) []Date {
	return append([]Date(nil), s.selected[weekNumber]...)
}

// Required returns the total number of dates the structure demands.
func (s *Selector) Required() int {
	return s.required
}

// Remaining returns how many more dates must be selected.
func (s *Selector) Remaining() int {
	return s.required - s.count()
}

// Complete reports whether every week's quota is exactly filled; submission
// is gated on this.
func (s *Selector) Complete() bool {
	return s.count() == s.required
}

func (s *Selector) count() int {
	n := 0
	for _, dates := range s.selected {
		n += len(dates)
	}
	return n
}

func (s *Selector) slot(weekNumber int) (WeekSlot, bool) {
	for _, slot := range s.slots {
		if slot.WeekNumber == weekNumber {
			return slot, true
		}
	}
	return WeekSlot{}, false
}

// earlierWeeksFilled enforces that a week's quota of dates is filled before
// dates count against a later week.
func (s *Selector) earlierWeeksFilled(weekNumber int) bool {
	for _, slot := range s.slots {
		if slot.WeekNumber >= weekNumber {
			continue
		}
		if len(s.selected[slot.WeekNumber]) < slot.DaysCount {
			return false
		}
	}
	return true
}

func (s *Selector) selectedAnywhere(d Date) bool {
	for _, dates := range s.selected {
		for _, existing := range dates {
			if existing == d {
				return true
			}
		}
	}
	return false
}

func (s *Selector) removeIfSelected(weekNumber int, d Date) bool {
	dates := s.selected[weekNumber]
	for i, existing := range dates {
		if existing == d {
			s.selected[weekNumber] = append(dates[:i:i], dates[i+1:]...)
			return true
		}
	}
	return false
}
