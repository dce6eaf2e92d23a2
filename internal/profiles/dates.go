package profiles

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidFromDate = errors.New("from date is invalid")
	ErrInvalidToDate   = errors.New("to date is invalid")
)

// entryDateFormats defines accepted formats for experience and education dates
var entryDateFormats = []string{
	"2006-01-02",       // HTML date input
	"2006-01-02T15:04", // HTML datetime-local
	time.RFC3339,
}

func parseEntryDate(dateStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	for _, format := range entryDateFormats {
		if parsed, err := time.Parse(format, dateStr); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseEntryRange parses the from/to pair of an experience or education entry.
// A current entry has no end date, whatever was sent as "to".
func ParseEntryRange(fromStr, toStr string, current bool) (time.Time, *time.Time, error) {
	from, ok := parseEntryDate(fromStr)
	if !ok {
		return time.Time{}, nil, ErrInvalidFromDate
	}
	if current || strings.TrimSpace(toStr) == "" {
		return from, nil, nil
	}
	to, ok := parseEntryDate(toStr)
	if !ok {
		return time.Time{}, nil, ErrInvalidToDate
	}
	return from, &to, nil
}
