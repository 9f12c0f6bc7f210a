package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order by ParseTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime normalises an ISO-8601 string, or an integer string of epoch
// milliseconds, to a time.Time. Zone-less values are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// MonthKey truncates t to its UTC calendar month, formatted YYYY-MM.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// DecodeTime decodes a JSON date given as a string (see ParseTime) or as a
// number of epoch milliseconds. Null or absent yields the zero time.
func DecodeTime(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}
	var ms json.Number
	if err := json.Unmarshal(raw, &ms); err == nil {
		n, err := ms.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("epoch millis %s: %w", ms, err)
		}
		return time.UnixMilli(n).UTC(), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, err
	}
	return ParseTime(s)
}
