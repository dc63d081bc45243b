package program

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testSlots() []WeekSlot {
	return []WeekSlot{
		{WeekNumber: 1, DaysCount: 2, Name: "Week 1"},
		{WeekNumber: 2, DaysCount: 1, Name: "Week 2"},
	}
}

const selToday = Date("2026-08-28")

func TestSelector_ToggleRules(t *testing.T) {
	tests := []struct {
		name string
		run  func(s *Selector) bool
		want bool
	}{
		{
			"select future date",
			func(s *Selector) bool { return s.Toggle(1, "2026-09-01") },
			true,
		},
		{
			"select today",
			func(s *Selector) bool { return s.Toggle(1, selToday) },
			true,
		},
		{
			"reject past date",
			func(s *Selector) bool { return s.Toggle(1, "2026-08-27") },
			false,
		},
		{
			"reject unknown week",
			func(s *Selector) bool { return s.Toggle(3, "2026-09-01") },
			false,
		},
		{
			"reject when week quota full",
			func(s *Selector) bool {
				s.Toggle(1, "2026-09-01")
				s.Toggle(1, "2026-09-02")
				return s.Toggle(1, "2026-09-03")
			},
			false,
		},
		{
			"reject later week before earlier quota filled",
			func(s *Selector) bool {
				s.Toggle(1, "2026-09-01")
				return s.Toggle(2, "2026-09-08")
			},
			false,
		},
		{
			"allow later week once earlier quota filled",
			func(s *Selector) bool {
				s.Toggle(1, "2026-09-01")
				s.Toggle(1, "2026-09-02")
				return s.Toggle(2, "2026-09-08")
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector(testSlots(), selToday)
			if got := tt.run(s); got != tt.want {
				t.Errorf("Toggle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelector_DeselectAlwaysAllowed(t *testing.T) {
	s := NewSelector(testSlots(), selToday)
	s.Toggle(1, "2026-09-01")
	s.Toggle(1, "2026-09-02")
	s.Toggle(2, "2026-09-08")

	// Deselecting an earlier week's date is permitted even though that
	// re-opens its quota while a later week stays populated.
	if !s.Toggle(1, "2026-09-01") {
		t.Fatal("deselect was blocked")
	}
	if got := s.Selected(); len(got) != 2 {
		t.Errorf("Selected() has %d dates after deselect, want 2", len(got))
	}
}

func TestSelector_SubmissionGate(t *testing.T) {
	// Scenario: selection count reaching the requirement enables submission;
	// removing one date disables it again.
	s := NewSelector(testSlots(), selToday)
	if s.Required() != 3 {
		t.Fatalf("Required() = %d, want 3", s.Required())
	}

	s.Toggle(1, "2026-09-01")
	s.Toggle(1, "2026-09-02")
	if s.Complete() {
		t.Error("Complete() true before all quotas filled")
	}

	s.Toggle(2, "2026-09-08")
	if !s.Complete() {
		t.Error("Complete() false with every quota filled")
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", s.Remaining())
	}

	s.Toggle(2, "2026-09-08") // deselect
	if s.Complete() {
		t.Error("Complete() still true after removing a date")
	}
	if s.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", s.Remaining())
	}
}

func TestSelector_SelectedSortedAcrossWeeks(t *testing.T) {
	s := NewSelector(testSlots(), selToday)
	s.Toggle(1, "2026-09-03")
	s.Toggle(1, "2026-09-01")
	s.Toggle(2, "2026-09-02")

	want := []Date{"2026-09-01", "2026-09-02", "2026-09-03"}
	if diff := cmp.Diff(want, s.Selected()); diff != "" {
		t.Errorf("Selected() mismatch (-want +got):\n%s", diff)
	}

	wantWeek1 := []Date{"2026-09-01", "2026-09-03"}
	if diff := cmp.Diff(wantWeek1, s.SelectedInWeek(1)); diff != "" {
		t.Errorf("SelectedInWeek(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestSelector_NeverExceedsRequired(t *testing.T) {
	s := NewSelector(testSlots(), selToday)
	days := []Date{"2026-09-01", "2026-09-02", "2026-09-03", "2026-09-04", "2026-09-05"}
	for _, d := range days {
		for week := 1; week <= 2; week++ {
			s.Toggle(week, d)
		}
	}
	if got := len(s.Selected()); got > s.Required() {
		t.Errorf("selected %d dates, exceeds required %d", got, s.Required())
	}
}
