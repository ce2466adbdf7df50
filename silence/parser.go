package silence

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"silencecut/internal/lines"
	"silencecut/internal/timeutil"
)

// Line shapes recognized in ffmpeg stderr. Each is searched anywhere in the
// line so the "[silencedetect @ 0x...]" prefix does not matter.
var (
	// [silencedetect @ 0x7fc1f3625880] silence_start: 3.0045
	silenceStartRegex = regexp.MustCompile(`(?:^|\s)silence_start:\s*(\S*)`)

	// [silencedetect @ 0x7fc1f3625880] silence_end: 6.0021 | silence_duration: 2.9976
	silenceEndRegex = regexp.MustCompile(`(?:^|\s)silence_end:\s*([^\s|]*)`)

	// size=N/A time=00:00:10.00 bitrate=N/A speed= 512x
	// The final stats line is printed as "Lsize=".
	progressRegex = regexp.MustCompile(`(?:^|\s)L?size=\s*\S+\s+time=(\S*)\s+bitrate=`)
)

// notAvailable is what ffmpeg prints in place of a clock before the first frame.
const notAvailable = "N/A"

// Parse scans the full diagnostic text of a silencedetect run.
//
// Markers are returned in stream order. Only the last progress line is kept
// as the duration estimate, since ffmpeg repeats it as decoding advances.
// Lines that match none of the shapes are ignored.
func Parse(text string) (*Diagnostics, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(lines.Scan)

	d := &Diagnostics{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := d.parseLine(scanner.Text(), lineNo); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read diagnostics: %w", err)
	}

	return d, nil
}

func (d *Diagnostics) parseLine(line string, lineNo int) error {
	if matches := silenceStartRegex.FindStringSubmatch(line); matches != nil {
		t, err := parseSeconds(matches[1], EventStart.String(), lineNo)
		if err != nil {
			return err
		}
		d.Events = append(d.Events, Event{Kind: EventStart, Time: t, Line: lineNo})
		return nil
	}

	if matches := silenceEndRegex.FindStringSubmatch(line); matches != nil {
		t, err := parseSeconds(matches[1], EventEnd.String(), lineNo)
		if err != nil {
			return err
		}
		d.Events = append(d.Events, Event{Kind: EventEnd, Time: t, Line: lineNo})
		return nil
	}

	if matches := progressRegex.FindStringSubmatch(line); matches != nil {
		clock := matches[1]
		if clock == notAvailable {
			return nil
		}
		total, err := timeutil.ParseClock(clock)
		if err != nil {
			return &ParseError{Line: lineNo, Field: "time", Text: clock, Err: fmt.Errorf("%w: %v", ErrMalformedField, err)}
		}
		if total < 0 {
			return nil
		}
		d.Duration = &DurationReport{Total: total, Line: lineNo, Source: SourceProgress}
	}

	return nil
}

// parseSeconds converts a marker value. silencedetect can report slightly
// negative starts for audio with a negative start offset; those clamp to 0.
func parseSeconds(value, field string, lineNo int) (float64, error) {
	if value == "" {
		return 0, &ParseError{Line: lineNo, Field: field, Err: fmt.Errorf("%w: missing value", ErrMalformedField)}
	}
	t, err := strconv.ParseFloat(value, 64)
	if err == nil && (math.IsNaN(t) || math.IsInf(t, 0)) {
		err = errors.New("not a finite number")
	}
	if err != nil {
		return 0, &ParseError{Line: lineNo, Field: field, Text: value, Err: fmt.Errorf("%w: %v", ErrMalformedField, err)}
	}
	if t < 0 {
		t = 0
	}
	return t, nil
}
