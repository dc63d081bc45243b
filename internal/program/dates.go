package program

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the wire format for calendar dates throughout the system.
const DateLayout = "2006-01-02"

// ErrInvalidDate wraps every date parse failure so callers can classify
// malformed input without string matching.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date in yyyy-MM-dd form. Valid dates compare correctly
// with plain string ordering, which is relied on throughout this package.
type Date string

// ParseDate validates s as a yyyy-MM-dd calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	// Reject inputs that survive parsing but don't round-trip (e.g. "2026-1-2").
	if t.Format(DateLayout) != s {
		return "", fmt.Errorf("%w %q: not in yyyy-MM-dd form", ErrInvalidDate, s)
	}
	return Date(s), nil
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	return string(d) < string(other)
}

// Today returns the current calendar date in the given location. All
// "is this date past" decisions go through here so that the organization
// timezone, not the server clock's zone, defines day boundaries.
func Today(loc *time.Location) Date {
	return Date(time.Now().In(loc).Format(DateLayout))
}

// ParseDates validates and converts a slice of wire dates.
func ParseDates(raw []string) ([]Date, error) {
	dates := make([]Date, 0, len(raw))
	for _, s := range raw {
		d, err := ParseDate(s)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// Normalize returns dates sorted ascending with duplicates removed. The
// input slice is not modified.
func Normalize(dates []Date) []Date {
	out := make([]Date, 0, len(dates))
	seen := make(map[Date]struct{}, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Strings converts dates back to their wire form.
func Strings(dates []Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = string(d)
	}
	return out
}
