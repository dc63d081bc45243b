package program

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2026-08-28", false},
		{"2026-02-29", true}, // 2026 is not a leap year
		{"2026-8-28", true},  // must be zero padded
		{"28-08-2026", true},
		{"2026-08-28T10:00:00Z", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	in := []Date{"2026-09-03", "2026-09-01", "2026-09-03", "2026-09-02"}
	want := []Date{"2026-09-01", "2026-09-02", "2026-09-03"}
	if diff := cmp.Diff(want, Normalize(in)); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestToday_UsesLocation(t *testing.T) {
	// The date in a zone far ahead of UTC and one far behind can differ;
	// either way each call must format as a valid date in that zone.
	for _, name := range []string{"UTC", "Pacific/Auckland", "Pacific/Honolulu"} {
		loc, err := time.LoadLocation(name)
		if err != nil {
			t.Skipf("zone %s unavailable: %v", name, err)
		}
		d := Today(loc)
		if _, err := ParseDate(string(d)); err != nil {
			t.Errorf("Today(%s) = %q is not a valid date", name, d)
		}
		if want := time.Now().In(loc).Format(DateLayout); string(d) != want {
			t.Errorf("Today(%s) = %s, want %s", name, d, want)
		}
	}
}
