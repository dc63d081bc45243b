package program

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReconcile_BlocksRemovingCompletedDate(t *testing.T) {
	// training_dates = [d1,d2,d3], d1 completed; proposing [d2,d3] without
	// reassignment must fail and leave the current dates untouched.
	current := []Date{"2026-08-03", "2026-08-05", "2026-08-07"}
	completed := []Date{"2026-08-03"}
	proposed := []Date{"2026-08-05", "2026-08-07"}

	got, err := Reconcile(current, completed, proposed, false)
	if got != nil {
		t.Errorf("Reconcile returned dates %v on policy violation, want nil", got)
	}

	var pv *PolicyViolationError
	if !errors.As(err, &pv) {
		t.Fatalf("Reconcile error = %v, want *PolicyViolationError", err)
	}
	if diff := cmp.Diff([]Date{"2026-08-03"}, pv.CompletedDates); diff != "" {
		t.Errorf("violating dates mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcile_ReassignmentRemovesCompletedDate(t *testing.T) {
	current := []Date{"2026-08-03", "2026-08-05", "2026-08-07"}
	completed := []Date{"2026-08-03"}
	proposed := []Date{"2026-08-05", "2026-08-07"}

	got, err := Reconcile(current, completed, proposed, true)
	if err != nil {
		t.Fatalf("Reconcile with reassignment failed: %v", err)
	}
	if diff := cmp.Diff(proposed, got); diff != "" {
		t.Errorf("reconciled dates mismatch (-want +got):\n%s", diff)
	}

	// The completion for the dropped date survives as orphaned history.
	orphans := Orphaned(got, completed)
	if diff := cmp.Diff([]Date{"2026-08-03"}, orphans); diff != "" {
		t.Errorf("orphaned dates mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcile_FreeEditsWithoutReassignment(t *testing.T) {
	tests := []struct {
		name      string
		current   []Date
		completed []Date
		proposed  []Date
		want      []Date
	}{
		{
			"add and remove uncompleted dates",
			[]Date{"2026-08-03", "2026-08-05"},
			nil,
			[]Date{"2026-08-05", "2026-08-10"},
			[]Date{"2026-08-05", "2026-08-10"},
		},
		{
			"keep completed date while editing others",
			[]Date{"2026-08-03", "2026-08-05"},
			[]Date{"2026-08-03"},
			[]Date{"2026-08-03", "2026-08-12"},
			[]Date{"2026-08-03", "2026-08-12"},
		},
		{
			"proposed set is sorted and deduplicated",
			[]Date{"2026-08-03"},
			nil,
			[]Date{"2026-08-10", "2026-08-03", "2026-08-10"},
			[]Date{"2026-08-03", "2026-08-10"},
		},
		{
			"completed date not currently scheduled does not block",
			[]Date{"2026-08-05"},
			[]Date{"2026-07-01"}, // orphan from an earlier reassignment
			[]Date{"2026-08-06"},
			[]Date{"2026-08-06"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(tt.current, tt.completed, tt.proposed, false)
			if err != nil {
				t.Fatalf("Reconcile failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("reconciled dates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOrphaned_NoneWhenScheduleKeepsCompletions(t *testing.T) {
	if got := Orphaned([]Date{"2026-08-03", "2026-08-05"}, []Date{"2026-08-03"}); got != nil {
		t.Errorf("Orphaned = %v, want nil", got)
	}
}
