// utils/dates.go
package utils

import (
	"math"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DaysBetween returns the number of calendar days from start to end, rounded
// up. Negative spans yield negative counts.
func DaysBetween(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}
