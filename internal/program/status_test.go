package program

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hyperkids/gym-app/internal/domain"
)

const statusToday = Date("2026-08-28")

func completion(date string, status domain.CompletionStatus) domain.WorkoutCompletion {
	return domain.WorkoutCompletion{
		ID:            primitive.NewObjectID(),
		AssignmentID:  primitive.NewObjectID(),
		ScheduledDate: date,
		Status:        status,
	}
}

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name        string
		date        Date
		completions map[Date]domain.CompletionStatus
		want        Status
	}{
		{"completed record", "2026-08-20", map[Date]domain.CompletionStatus{"2026-08-20": domain.CompletionDone}, StatusCompleted},
		{"explicitly skipped", "2026-09-02", map[Date]domain.CompletionStatus{"2026-09-02": domain.CompletionMissed}, StatusMissed},
		{"past with no record is missed", "2026-08-27", nil, StatusMissed},
		{"today with no record still scheduled", statusToday, nil, StatusScheduled},
		{"future with no record scheduled", "2026-09-05", nil, StatusScheduled},
		{"completed record on future date", "2026-09-05", map[Date]domain.CompletionStatus{"2026-09-05": domain.CompletionDone}, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveStatus(tt.date, tt.completions, statusToday); got != tt.want {
				t.Errorf("ResolveStatus(%s) = %s, want %s", tt.date, got, tt.want)
			}
		})
	}
}

func TestResolveSchedule(t *testing.T) {
	dates := []string{"2026-08-20", "2026-08-25", "2026-09-01"}
	completions := []domain.WorkoutCompletion{
		completion("2026-08-20", domain.CompletionDone),
		// Orphan from a prior reassignment: not in the schedule any more.
		completion("2026-08-01", domain.CompletionDone),
	}

	got, err := ResolveSchedule(dates, completions, statusToday)
	if err != nil {
		t.Fatalf("ResolveSchedule failed: %v", err)
	}

	want := []ScheduledDay{
		{Date: "2026-08-20", Status: StatusCompleted},
		{Date: "2026-08-25", Status: StatusMissed},
		{Date: "2026-09-01", Status: StatusScheduled},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveSchedule mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveSchedule_RejectsMalformedDate(t *testing.T) {
	if _, err := ResolveSchedule([]string{"2026-8-1"}, nil, statusToday); err == nil {
		t.Error("ResolveSchedule accepted a malformed date")
	}
}

func TestResolveSchedule_EveryDateGetsExactlyOneStatus(t *testing.T) {
	dates := []string{"2026-08-10", "2026-08-27", "2026-08-28", "2026-09-10"}
	completions := []domain.WorkoutCompletion{
		completion("2026-08-10", domain.CompletionDone),
		completion("2026-08-27", domain.CompletionMissed),
	}

	got, err := ResolveSchedule(dates, completions, statusToday)
	if err != nil {
		t.Fatalf("ResolveSchedule failed: %v", err)
	}
	if len(got) != len(dates) {
		t.Fatalf("resolved %d days, want %d", len(got), len(dates))
	}
	for _, day := range got {
		switch day.Status {
		case StatusScheduled, StatusCompleted, StatusMissed:
		default:
			t.Errorf("date %s has unknown status %q", day.Date, day.Status)
		}
	}
}

func TestCompletedDates(t *testing.T) {
	completions := []domain.WorkoutCompletion{
		completion("2026-08-25", domain.CompletionDone),
		completion("2026-08-20", domain.CompletionDone),
		completion("2026-08-22", domain.CompletionMissed),
	}
	want := []Date{"2026-08-20", "2026-08-25"}
	if diff := cmp.Diff(want, CompletedDates(completions)); diff != "" {
		t.Errorf("CompletedDates mismatch (-want +got):\n%s", diff)
	}
}
