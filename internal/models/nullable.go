package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are tried in order when parsing client supplied timestamps.
// Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// InvalidTimestampError is returned when a timestamp matches none of the accepted layouts.
type InvalidTimestampError struct {
	Value string
}

func (e *InvalidTimestampError) Error() string {
	return fmt.Sprintf("invalid timestamp %q", e.Value)
}

// ParseTimestamp parses an ISO-8601 style timestamp. A bare date is midnight UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &InvalidTimestampError{Value: s}
}

// NullableTime distinguishes an absent JSON field from an explicit null.
type NullableTime struct {
	Set   bool
	Valid bool
	Time  time.Time
}

// Ptr returns nil for null or absent values.
func (n NullableTime) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &InvalidTimestampError{Value: string(data)}
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	n.Valid = true
	n.Time = t
	return nil
}

func (n NullableTime) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time)
}
