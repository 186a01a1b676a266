package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and input format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// NewDate builds a Date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON accepts YYYY-MM-DD, full RFC 3339 timestamps and null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

// DateRange is embedded by profile sub-records. When IsCurrent is true the
// end date is suppressed, both in memory and on the wire.
type DateRange struct {
	StartDate Date  `json:"start_date"`
	EndDate   *Date `json:"end_date,omitempty"`
	IsCurrent bool  `json:"is_current"`
}

// Normalize clears EndDate for current entries.
func (r *DateRange) Normalize() {
	if r.IsCurrent {
		r.EndDate = nil
	}
}

// Period renders "Jan 2020 - Present" style ranges.
func (r DateRange) Period() string {
	start := "?"
	if !r.StartDate.IsZero() {
		start = r.StartDate.Format("Jan 2006")
	}
	switch {
	case r.IsCurrent:
		return start + " - Present"
	case r.EndDate != nil && !r.EndDate.IsZero():
		return start + " - " + r.EndDate.Format("Jan 2006")
	default:
		return start
	}
}
