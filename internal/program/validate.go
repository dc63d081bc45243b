package program

import (
	"errors"
	"fmt"

	"hyperkids/gym-app/internal/domain"
)

var (
	ErrNoTrainingDates = errors.New("at least one training date is required")
	ErrDuplicateDate   = errors.New("training dates contain duplicates")
	ErrPastDate        = errors.New("training date is in the past")
	ErrEmptyTemplate   = errors.New("template has no training days")
)

// ValidateTrainingDates checks a proposed full date set for a new assignment
// against the template's (expanded) week structure. It replays the dates
// through a Selector in sorted order, attributing each to the first week
// with unfilled quota, so the same rules gate submission server-side that
// gate interactive selection.
//
// Returns the normalized dates on success.
func ValidateTrainingDates(weeks []domain.TemplateWeek, raw []string, today Date) ([]Date, error) {
	if TotalDays(weeks) == 0 {
		return nil, ErrEmptyTemplate
	}

	dates, err := ParseDates(raw)
	if err != nil {
		return nil, err
	}
	norm := Normalize(dates)
	if len(norm) == 0 {
		return nil, ErrNoTrainingDates
	}
	if len(norm) != len(dates) {
		return nil, ErrDuplicateDate
	}

	display := Repeat(weeks, len(norm))
	sel := NewSelector(WeekStructure(display), today)

	i := 0
	for _, slot := range WeekStructure(display) {
		for q := 0; q < slot.DaysCount && i < len(norm); q++ {
			d := norm[i]
			if !sel.Toggle(slot.WeekNumber, d) {
				if d.Before(today) {
					return nil, fmt.Errorf("%w: %s", ErrPastDate, d)
				}
				return nil, fmt.Errorf("date %s does not fit the week structure", d)
			}
			i++
		}
	}
	if i < len(norm) {
		// Repeat guarantees capacity >= len(norm), so this is unreachable
		// unless the structure derivation changes.
		return nil, fmt.Errorf("%d training dates exceed the expanded template capacity", len(norm))
	}
	return norm, nil
}
