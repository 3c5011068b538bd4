package dates

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"day month year", "15/03/2023", time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"single digits", "1/2/2024", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"impossible february", "31/02/2023", time.Time{}, false},
		{"leap day", "29/02/2024", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), true},
		{"non leap day", "29/02/2023", time.Time{}, false},
		{"month out of range", "10/13/2023", time.Time{}, false},
		{"iso date", "2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"iso timestamp", "2024-01-05T10:30:00Z", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC), true},
		{"year first slashes", "2024/01/05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"blank", "   ", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
		{"letters in slashes", "aa/bb/cccc", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, expected %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, expected %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePtrNil(t *testing.T) {
	if p := ParsePtr("31/02/2023"); p != nil {
		t.Errorf("Expected nil for invalid date, got %v", *p)
	}
	if p := ParsePtr("15/03/2023"); p == nil {
		t.Error("Expected a parsed date")
	}
}

func TestDisplay(t *testing.T) {
	cases := map[string]string{
		"2024-03-15":           "15/03/2024",
		"2024-03-15T08:00:00Z": "15/03/2024",
		"5/3/2024":             "05/03/2024",
		"":                     "",
		"soon":                 "soon",
	}
	for in, want := range cases {
		if got := Display(in); got != want {
			t.Errorf("Display(%q) = %q, expected %q", in, got, want)
		}
	}
}
