package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted from forms and used as grid column keys.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(raw))
}

// DateKey formats the calendar date part of t, ignoring any time component.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// TruncateDate drops the time component and returns the date at midnight UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
