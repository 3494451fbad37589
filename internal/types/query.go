package types

import (
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout accepted for queries.
const DateLayout = "2006-01-02"

// Query is the sole external key driving one listing fetch.
type Query struct {
	Date string
}

// ParseQuery validates a date string. Every entry point that accepts a date
// must call it before doing any I/O.
func ParseQuery(raw string) (Query, error) {
	s := strings.TrimSpace(raw)
	day, err := time.Parse(DateLayout, s)
	if err != nil {
		return Query{}, &InvalidDateError{Input: raw, Err: err}
	}
	return Query{Date: day.Format(DateLayout)}, nil
}
