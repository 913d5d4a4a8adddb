package tasks

import (
	"testing"
	"time"
)

func TestCatalogDate(t *testing.T) {
	cases := map[string]string{
		"Mon, 03 Jul 2023 10:00:00 GMT":   "2023-07-03",
		"Mon, 03 Jul 2023 10:00:00 +0200": "2023-07-03",
		"03 Jul 23 10:00 GMT":             "2023-07-03",
		"03 Jul 23 10:00 +0200":           "2023-07-03",
		"2023-07-03T10:00:00Z":            "2023-07-03",
	}

	for pubDate, expected := range cases {
		if got := catalogDate(pubDate); got != expected {
			t.Errorf("catalogDate(%q): expected %q, got %q", pubDate, expected, got)
		}
	}
}

func TestCatalogDateUTCDayBoundary(t *testing.T) {
	// Published late evening in New York, already the next day in UTC.
	if got := catalogDate("2023-07-03T23:30:00-05:00"); got != "2023-07-04" {
		t.Errorf("Expected date in UTC '2023-07-04', got %q", got)
	}
}

func TestCatalogDateUnparsableFallsBackToToday(t *testing.T) {
	before := time.Now().UTC().Format("2006-01-02")
	got := catalogDate("not a date")
	after := time.Now().UTC().Format("2006-01-02")

	if got != before && got != after {
		t.Errorf("Expected fallback to today's date, got %q", got)
	}
}
