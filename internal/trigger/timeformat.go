package trigger

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockMode selects the stored rendering of a time of day.
type ClockMode string

const (
	// Clock24 renders "HH:MM", zero-padded.
	Clock24 ClockMode = "24h"
	// Clock12 renders "H:MM AM" / "H:MM PM", hour 0 shown as 12.
	Clock12 ClockMode = "12h"
)

// Valid reports whether m is a known clock mode.
func (m ClockMode) Valid() bool {
	return m == Clock24 || m == Clock12
}

// FormatTime renders a time of day in the given mode. ParseTime is its
// exact inverse for every hour in [0,23] and minute in [0,59].
func FormatTime(hour, minute int, mode ClockMode) string {
	if mode == Clock24 {
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, ampm)
}

// ParseTime reads either rendering back into (hour, minute). The format is
// detected from the string itself, so values written in one clock mode
// remain readable after the mode changes.
func ParseTime(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)

	meridiem := ""
	if rest, ok := strings.CutSuffix(s, " AM"); ok {
		meridiem, s = "AM", rest
	} else if rest, ok := strings.CutSuffix(s, " PM"); ok {
		meridiem, s = "PM", rest
	}

	hs, ms, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed time %q", s)
	}
	hour, err = strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed hour in %q: %w", s, err)
	}
	minute, err = strconv.Atoi(ms)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed minute in %q: %w", s, err)
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("hour %d out of range for 12-hour time", hour)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("hour %d out of range for 12-hour time", hour)
		}
		if hour < 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return 0, 0, fmt.Errorf("hour %d out of range", hour)
		}
	}
	if minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("minute %d out of range", minute)
	}
	return hour, minute, nil
}
