package program

import (
	"hyperkids/gym-app/internal/domain"
)

// Status is the derived display state of one scheduled occurrence.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusMissed    Status = "missed"
)

// ScheduledDay pairs a training date with its derived status.
type ScheduledDay struct {
	Date   Date   `json:"date"`
	Status Status `json:"status"`
}

// ResolveStatus derives the status of a single training date. Pure function:
// a completion record decides the outcome directly; otherwise a date whose
// calendar day has fully elapsed (date-only comparison against today) is
// missed, and anything else is still scheduled.
//
// completed and missed are terminal: nothing transitions out of them short
// of a reassignment removing the occurrence from the schedule entirely.
func ResolveStatus(d Date, completions map[Date]domain.CompletionStatus, today Date) Status {
	if cs, ok := completions[d]; ok {
		if cs == domain.CompletionDone {
			return StatusCompleted
		}
		return StatusMissed
	}
	if d.Before(today) {
		return StatusMissed
	}
	return StatusScheduled
}

// ResolveSchedule derives the status of every training date of an
// assignment. Completions for dates no longer in trainingDates are orphaned
// history and do not appear in the result. The output preserves the sorted
// order of trainingDates.
//
// This is a derived view: callers must recompute it whenever the training
// dates or the completions change, never cache it across mutations.
func ResolveSchedule(trainingDates []string, completions []domain.WorkoutCompletion, today Date) ([]ScheduledDay, error) {
	dates, err := ParseDates(trainingDates)
	if err != nil {
		return nil, err
	}

	byDate := make(map[Date]domain.CompletionStatus, len(completions))
	for _, c := range completions {
		byDate[Date(c.ScheduledDate)] = c.Status
	}

	out := make([]ScheduledDay, 0, len(dates))
	for _, d := range Normalize(dates) {
		out = append(out, ScheduledDay{Date: d, Status: ResolveStatus(d, byDate, today)})
	}
	return out, nil
}

// CompletedDates extracts the dates with a completed record, for feeding the
// reconciler.
func CompletedDates(completions []domain.WorkoutCompletion) []Date {
	var dates []Date
	for _, c := range completions {
		if c.Status == domain.CompletionDone {
			dates = append(dates, Date(c.ScheduledDate))
		}
	}
	return Normalize(dates)
}
