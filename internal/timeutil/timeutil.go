// Package timeutil converts between float seconds and the HH:MM:SS.ss clock
// notation ffmpeg uses on its command line and in its stats output.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
)

// clockRegex matches ffmpeg clock values such as "00:00:30.53" or "-00:00:00.02".
// Hours may exceed two digits for very long media.
var clockRegex = regexp.MustCompile(`^(-?)(\d+):(\d{2}):(\d{2}(?:\.\d*)?)$`)

// FormatSeconds converts seconds to HH:MM:SS.MS format for FFmpeg.
//
// This format is used for FFmpeg time parameters like -ss (seek start)
// and -t (duration). Supports fractional seconds for precise timing.
//
// Example:
//
//	FormatSeconds(0)      // "00:00:00.00"
//	FormatSeconds(90)     // "00:01:30.00"
//	FormatSeconds(3661)   // "01:01:01.00"
//	FormatSeconds(30.53)  // "00:00:30.53"
func FormatSeconds(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, secs)
}

// ParseClock converts an ffmpeg clock value (HH:MM:SS.ss) to seconds using
// hours*3600 + minutes*60 + seconds. A leading minus sign yields a negative
// result; ffmpeg prints those for streams with a negative start offset.
func ParseClock(value string) (float64, error) {
	matches := clockRegex.FindStringSubmatch(value)
	if matches == nil {
		return 0, fmt.Errorf("invalid clock value %q: want HH:MM:SS.ss", value)
	}

	hours, err := strconv.ParseFloat(matches[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", value, err)
	}
	minutes, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", value, err)
	}
	if minutes >= 60 {
		return 0, fmt.Errorf("invalid minutes in %q: %v >= 60", value, minutes)
	}
	seconds, err := strconv.ParseFloat(matches[4], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", value, err)
	}

	total := hours*3600 + minutes*60 + seconds
	if matches[1] == "-" {
		total = -total
	}
	return total, nil
}
