// Package models provides the data structures shared by the segmenter,
// the orchestrator and the concatenator.
package models

import (
	"fmt"
	"strings"
)

// Segment is one keep interval bound to its source file.
//
// Segments are produced by the segmenter from the keep intervals of a
// silence detection run. Each segment is extracted independently and can be
// processed in parallel; the concatenator joins them back in SegmentID order.
//
// StartTime and EndTime are seconds from the start of the source and keep
// their fractional part, since silencedetect reports microsecond precision.
type Segment struct {
	SegmentID  uint    `json:"segment_id"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	SourcePath string  `json:"source_path"`
}

// NewSegment creates a validated Segment.
//
// Example:
//
//	seg, err := models.NewSegment(1, 2.0, 5.0, "/path/to/talk.mp4")
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewSegment(id uint, startTime, endTime float64, sourcePath string) (*Segment, error) {
	s := &Segment{
		SegmentID:  id,
		StartTime:  startTime,
		EndTime:    endTime,
		SourcePath: sourcePath,
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid segment: %w", err)
	}
	return s, nil
}

// Validate checks if the Segment has valid data.
//
// Returns an error if:
//   - SourcePath is empty or whitespace-only
//   - StartTime is negative
//   - StartTime >= EndTime (empty or inverted range)
func (s *Segment) Validate() error {
	if strings.TrimSpace(s.SourcePath) == "" {
		return fmt.Errorf("source_path cannot be empty")
	}

	if s.StartTime < 0 {
		return fmt.Errorf("start_time cannot be negative")
	}

	if s.StartTime >= s.EndTime {
		return fmt.Errorf("start_time must be less than end_time")
	}

	return nil
}

// Duration returns the segment length in seconds.
func (s *Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

func (s *Segment) String() string {
	return fmt.Sprintf("segment %d [%.3f, %.3f]", s.SegmentID, s.StartTime, s.EndTime)
}
