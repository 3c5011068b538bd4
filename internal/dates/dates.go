// Package dates parses and formats the free-form date strings the backend
// stores on documents.
package dates

import (
	"strconv"
	"strings"
	"time"
)

// Layout is the display layout, DD/MM/YYYY
const Layout = "02/01/2006"

// fallbackLayouts are tried in order for strings that are not DD/MM/YYYY
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
}

// Parse converts a date string to a time. It accepts DD/MM/YYYY, rejecting
// impossible calendar dates such as 31/02, and falls back to ISO-like
// layouts. Empty and unparseable strings report false.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if parts := strings.Split(s, "/"); len(parts) == 3 {
		if day, month, year, ok := numericParts(parts); ok {
			if day >= 1000 {
				// YYYY/MM/DD is handled by the fallback layouts
				return parseFallback(s)
			}
			return calendarDate(year, month, day)
		}
	}
	return parseFallback(s)
}

// ParsePtr is Parse returning nil for unparseable input
func ParsePtr(s string) *time.Time {
	t, ok := Parse(s)
	if !ok {
		return nil
	}
	return &t
}

// Format renders t as DD/MM/YYYY
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Display normalises a stored date string to DD/MM/YYYY. Strings that do
// not parse are returned unchanged so nothing the backend sent is lost.
func Display(s string) string {
	t, ok := Parse(s)
	if !ok {
		return s
	}
	return Format(t)
}

func numericParts(parts []string) (day, month, year int, ok bool) {
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], true
}

func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises overflow (31/02 -> 03/03); reject it
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

func parseFallback(s string) (time.Time, bool) {
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
