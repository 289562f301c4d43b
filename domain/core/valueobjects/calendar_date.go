package valueobjects

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only accepted wire format for calendar dates
const DateLayout = "2006-01-02"

// CalendarDate is a day without time of day or zone, always rendered as
// YYYY-MM-DD so that string order and chronological order agree.
type CalendarDate struct {
	value string
}

// ParseCalendarDate validates and normalizes a date string. Full RFC3339
// timestamps are accepted and truncated to their calendar day.
func ParseCalendarDate(s string) (CalendarDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CalendarDate{}, fmt.Errorf("date cannot be empty")
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return CalendarDate{value: t.Format(DateLayout)}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return CalendarDate{value: t.Format(DateLayout)}, nil
	}

	return CalendarDate{}, fmt.Errorf("date %q must use the YYYY-MM-DD format", s)
}

// MustCalendarDate is ParseCalendarDate for literals known to be valid
func MustCalendarDate(s string) CalendarDate {
	d, err := ParseCalendarDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// CalendarDateOf returns the calendar day of t in t's location
func CalendarDateOf(t time.Time) CalendarDate {
	return CalendarDate{value: t.Format(DateLayout)}
}

// String returns the YYYY-MM-DD form
func (d CalendarDate) String() string {
	return d.value
}

// IsZero checks if the date is unset
func (d CalendarDate) IsZero() bool {
	return d.value == ""
}

// Time returns midnight UTC of the date
func (d CalendarDate) Time() time.Time {
	t, _ := time.Parse(DateLayout, d.value)
	return t
}

// Compare orders two dates, returning -1, 0 or +1
func (d CalendarDate) Compare(other CalendarDate) int {
	return strings.Compare(d.value, other.value)
}

// MarshalJSON implements json.Marshaler
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		d.value = ""
		return nil
	}
	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
