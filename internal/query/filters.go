package query

import (
	"strconv"
	"time"
)

// ParseTimestamp converts a raw filter value into Unix seconds.
// A value of the form YYYY-MM-DD maps to midnight UTC of that date;
// any other value is read as an integer Unix timestamp. Unparseable
// values report ok=false and the filter is treated as absent.
func ParseTimestamp(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Unix(), true
	}
	if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ts, true
	}
	return 0, false
}

// ParseFlag reports whether a boolean filter is switched on.
// Only the exact string "true" enables the flag; everything else,
// including "false" and absence, leaves it off. These flags only ever
// add a predicate, so off and absent are the same state.
func ParseFlag(raw string) bool {
	return raw == "true"
}

// ParseInt converts a raw filter value into an integer.
// Non-numeric values report ok=false and the filter is treated as absent.
func ParseInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// OptionalInt returns a pointer for a present numeric filter, nil otherwise
func OptionalInt(raw string) *int {
	if v, ok := ParseInt(raw); ok {
		return &v
	}
	return nil
}

// OptionalTimestamp returns a pointer for a present date/timestamp filter, nil otherwise
func OptionalTimestamp(raw string) *int64 {
	if ts, ok := ParseTimestamp(raw); ok {
		return &ts
	}
	return nil
}
