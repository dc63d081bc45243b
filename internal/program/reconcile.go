package program

import (
	"fmt"
	"strings"
)

// PolicyViolationError reports an attempt to remove completed dates from an
// assignment's schedule without explicit reassignment consent. It is a
// blocked action, not a fault: callers surface it to the user and leave the
// persisted schedule untouched.
type PolicyViolationError struct {
	CompletedDates []Date
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("cannot remove completed training dates without reassignment: %s",
		strings.Join(Strings(e.CompletedDates), ", "))
}

// Reconcile validates a proposed replacement for an assignment's training
// dates against its completion history.
//
// Dates without a completed record may be freely added or removed. A date
// with a completed record may be removed only under isReassignment, whose
// semantics are destructive: the prior scheduling is replaced wholesale and
// completions for now-unscheduled dates become orphaned historical records.
//
// On success the returned slice is the proposed set, sorted and
// deduplicated, ready for a single persistence write. On a policy violation
// the returned error lists the offending dates and the caller must leave the
// current schedule unchanged.
func Reconcile(current, completed, proposed []Date, isReassignment bool) ([]Date, error) {
	next := Normalize(proposed)

	if !isReassignment {
		if removed := removedCompleted(current, completed, next); len(removed) > 0 {
			return nil, &PolicyViolationError{CompletedDates: removed}
		}
	}
	return next, nil
}

// Orphaned returns the completed dates that the new schedule no longer
// contains. Their completion records stay in history but must never surface
// in the active schedule again.
func Orphaned(newDates, completed []Date) []Date {
	scheduled := toSet(newDates)
	var orphans []Date
	for _, d := range Normalize(completed) {
		if _, ok := scheduled[d]; !ok {
			orphans = append(orphans, d)
		}
	}
	return orphans
}

// removedCompleted lists dates that are completed, currently scheduled, and
// absent from the proposed set.
func removedCompleted(current, completed, proposed []Date) []Date {
	currentSet := toSet(current)
	proposedSet := toSet(proposed)

	var removed []Date
	for _, d := range Normalize(completed) {
		if _, scheduled := currentSet[d]; !scheduled {
			continue
		}
		if _, kept := proposedSet[d]; !kept {
			removed = append(removed, d)
		}
	}
	return removed
}

func toSet(dates []Date) map[Date]struct{} {
	set := make(map[Date]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}
