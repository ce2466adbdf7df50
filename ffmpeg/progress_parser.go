// Package ffmpeg runs ffmpeg processes and reads their stderr.
package ffmpeg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"silencecut/internal/lines"
	"silencecut/internal/timeutil"
	"silencecut/models"
)

// ErrNoProgress is returned by StreamProgress when the stream carried no
// stats line at all, e.g. for inputs shorter than one stats interval.
var ErrNoProgress = errors.New("no progress output captured from ffmpeg")

// ProgressParser parses ffmpeg stderr output for progress metrics
type ProgressParser struct {
	sizeRegex    *regexp.Regexp
	timeRegex    *regexp.Regexp
	bitrateRegex *regexp.Regexp
	speedRegex   *regexp.Regexp
}

// NewProgressParser creates a new parser for ffmpeg progress output
func NewProgressParser() *ProgressParser {
	return &ProgressParser{
		// Stats fields appear mid-line ("-stats") or one per line ("-progress pipe:").
		sizeRegex:    regexp.MustCompile(`(?:^|\s)L?(?:total_)?size=\s*(\d+)`),
		timeRegex:    regexp.MustCompile(`(?:^|\s)(?:out_)?time=\s*(\d+:\d{2}:\d{2}(?:\.\d*)?)`),
		bitrateRegex: regexp.MustCompile(`(?:^|\s)bitrate=\s*([0-9.]+)`),
		speedRegex:   regexp.MustCompile(`(?:^|\s)speed=\s*([0-9.]+)x?`),
	}
}

// ParseLine parses a single line of ffmpeg stderr output and updates the progress.
// It reports whether any field was recognized.
func (pp *ProgressParser) ParseLine(line string, progress *models.Progress) bool {
	line = strings.TrimSpace(line)
	if line == "" || line == "progress=continue" || line == "progress=end" {
		return false
	}

	updated := false

	if matches := pp.sizeRegex.FindStringSubmatch(line); len(matches) > 1 {
		progress.Size = matches[1] + "kB"
		updated = true
	}

	if matches := pp.timeRegex.FindStringSubmatch(line); len(matches) > 1 {
		if seconds, err := timeutil.ParseClock(matches[1]); err == nil {
			progress.CurrentTime = matches[1]
			progress.Advance(seconds)
			updated = true
		}
	}

	if matches := pp.bitrateRegex.FindStringSubmatch(line); len(matches) > 1 {
		progress.Bitrate = matches[1] + "kbits/s"
		updated = true
	}

	if matches := pp.speedRegex.FindStringSubmatch(line); len(matches) > 1 {
		if speed, err := strconv.ParseFloat(matches[1], 64); err == nil {
			progress.Speed = speed
			updated = true
		}
	}

	return updated
}

// StreamProgress reads ffmpeg stderr and continuously updates progress.
// Every line, progress or not, is passed to onLine when it is non-nil.
func (pp *ProgressParser) StreamProgress(reader io.Reader, progress *models.Progress, callback models.ProgressCallback, onLine func(string)) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	// ffmpeg rewrites its stats line in place with \r.
	scanner.Split(lines.Scan)

	seen := false
	for scanner.Scan() {
		line := scanner.Text()
		if onLine != nil {
			onLine(line)
		}
		if pp.ParseLine(line, progress) {
			seen = true
			progress.State = models.ProgressStateRunning
			if callback != nil {
				callback(progress)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ffmpeg output: %w", err)
	}

	if !seen {
		return ErrNoProgress
	}
	return nil
}
