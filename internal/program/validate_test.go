package program

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const valToday = Date("2026-08-28")

func TestValidateTrainingDates(t *testing.T) {
	weeks := makeTemplate(2, 1) // 3 days per cycle

	tests := []struct {
		name    string
		raw     []string
		want    []Date
		wantErr error
	}{
		{
			"exact cycle",
			[]string{"2026-09-01", "2026-09-03", "2026-09-08"},
			[]Date{"2026-09-01", "2026-09-03", "2026-09-08"},
			nil,
		},
		{
			"spills into a second cycle",
			[]string{"2026-09-01", "2026-09-03", "2026-09-08", "2026-09-10"},
			[]Date{"2026-09-01", "2026-09-03", "2026-09-08", "2026-09-10"},
			nil,
		},
		{
			"unsorted input is normalized",
			[]string{"2026-09-08", "2026-09-01", "2026-09-03"},
			[]Date{"2026-09-01", "2026-09-03", "2026-09-08"},
			nil,
		},
		{"empty", nil, nil, ErrNoTrainingDates},
		{"duplicate", []string{"2026-09-01", "2026-09-01"}, nil, ErrDuplicateDate},
		{"past date", []string{"2026-08-01", "2026-09-01"}, nil, ErrPastDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateTrainingDates(weeks, tt.raw, valToday)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateTrainingDates failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("dates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateTrainingDates_EmptyTemplate(t *testing.T) {
	if _, err := ValidateTrainingDates(nil, []string{"2026-09-01"}, valToday); !errors.Is(err, ErrEmptyTemplate) {
		t.Errorf("error = %v, want ErrEmptyTemplate", err)
	}
}

func TestValidateTrainingDates_MalformedDate(t *testing.T) {
	weeks := makeTemplate(3)
	if _, err := ValidateTrainingDates(weeks, []string{"not-a-date"}, valToday); err == nil {
		t.Error("malformed date was accepted")
	}
}
