package assignment

import (
	"strings"
	"time"
)

// NullDate is what the portal prints for a date that was never set.
var NullDate = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"Monday, 2 January 2006, 3:04 PM",
	"Monday, 2 January 2006, 15:04",
	"2 January 2006, 3:04 PM",
	"2 January 2006, 15:04",
	"Mon, 2 Jan 2006, 3:04 PM",
	"2 Jan 2006, 3:04 PM",
	"Monday, 2 January 2006",
	"2 January 2006",
	"January 2, 2006 3:04 PM",
	"January 2, 2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate reads the date formats moodle uses in its status tables.
// Times without a zone are taken as UTC.
func ParseDate(text string) (time.Time, bool) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, text, time.UTC)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isNullDate(t time.Time) bool {
	return t.Equal(NullDate)
}
