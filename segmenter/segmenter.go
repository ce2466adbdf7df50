// Package segmenter turns keep intervals into numbered segments ready for
// extraction.
package segmenter

import (
	"errors"
	"fmt"

	"silencecut/models"
	"silencecut/silence"
)

const (
	// MaxSegmentLimit caps SetMaxDuration (24 hours).
	MaxSegmentLimit = 86400
)

// ErrNothingToKeep is returned when every keep interval was dropped, which
// would produce an empty output file.
var ErrNothingToKeep = errors.New("no audible segments left to keep")

// Segmenter maps keep intervals of one source onto models.Segment values.
type Segmenter struct {
	sourcePath  string
	minDuration float64
	mergeGap    float64
	maxDuration float64
}

// NewSegmenter creates a Segmenter that keeps every non-empty interval as is.
func NewSegmenter(sourcePath string) *Segmenter {
	return &Segmenter{sourcePath: sourcePath}
}

// SetMinDuration drops keep intervals shorter than seconds. Very short
// segments cost a full encoder start-up and are mostly breath noise.
func (s *Segmenter) SetMinDuration(seconds float64) *Segmenter {
	s.minDuration = seconds
	return s
}

// SetMergeGap joins neighbouring intervals whose gap is below seconds, so
// silences that short are kept instead of cut.
func (s *Segmenter) SetMergeGap(seconds float64) *Segmenter {
	s.mergeGap = seconds
	return s
}

// SetMaxDuration splits longer intervals into fixed pieces so they can be
// extracted in parallel. Zero disables splitting.
func (s *Segmenter) SetMaxDuration(seconds float64) *Segmenter {
	s.maxDuration = seconds
	return s
}

// CreateSegments converts intervals into segments numbered from 1.
//
// Intervals must satisfy silence.Validate. Merging happens before the
// minimum-length filter, so two short neighbours can survive together.
//
// Example:
//
//	res, _ := silence.Extract(stderr, silence.WithPadding(0.1))
//	segs, err := segmenter.NewSegmenter("/path/to/talk.mp4").
//		SetMinDuration(0.25).
//		CreateSegments(res.Intervals)
func (s *Segmenter) CreateSegments(intervals []silence.KeepInterval) ([]*models.Segment, error) {
	if s.sourcePath == "" {
		return nil, fmt.Errorf("source path cannot be empty")
	}
	if s.minDuration < 0 || s.mergeGap < 0 || s.maxDuration < 0 {
		return nil, fmt.Errorf("segment limits cannot be negative")
	}
	if s.maxDuration > MaxSegmentLimit {
		return nil, fmt.Errorf("max segment duration cannot exceed %d seconds", MaxSegmentLimit)
	}
	if err := silence.Validate(intervals); err != nil {
		return nil, fmt.Errorf("invalid keep intervals: %w", err)
	}

	merged := s.merge(intervals)

	segments := make([]*models.Segment, 0, len(merged))
	for _, iv := range merged {
		if iv.Duration() <= 0 || iv.Duration() < s.minDuration {
			continue
		}
		for _, piece := range s.split(iv) {
			seg, err := models.NewSegment(uint(len(segments)+1), piece.Start, piece.End, s.sourcePath)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", len(segments)+1, err)
			}
			segments = append(segments, seg)
		}
	}

	if len(segments) == 0 {
		return nil, ErrNothingToKeep
	}
	return segments, nil
}

func (s *Segmenter) merge(intervals []silence.KeepInterval) []silence.KeepInterval {
	out := make([]silence.KeepInterval, 0, len(intervals))
	for _, iv := range intervals {
		if n := len(out); n > 0 && s.mergeGap > 0 && iv.Start-out[n-1].End < s.mergeGap {
			out[n-1].End = iv.End
			continue
		}
		out = append(out, iv)
	}
	return out
}

// split cuts iv into pieces of maxDuration; the last piece ends exactly at
// iv.End to preserve fractional seconds.
func (s *Segmenter) split(iv silence.KeepInterval) []silence.KeepInterval {
	if s.maxDuration <= 0 || iv.Duration() <= s.maxDuration {
		return []silence.KeepInterval{iv}
	}

	count := int(iv.Duration() / s.maxDuration)
	if iv.Start+float64(count)*s.maxDuration < iv.End {
		count++
	}

	pieces := make([]silence.KeepInterval, 0, count)
	for i := 0; i < count; i++ {
		start := iv.Start + float64(i)*s.maxDuration
		end := start + s.maxDuration
		if end > iv.End || i == count-1 {
			end = iv.End
		}
		if end <= start {
			break
		}
		pieces = append(pieces, silence.KeepInterval{Start: start, End: end})
	}
	return pieces
}

// ValidateSegments checks a segment list before concatenation: sequential
// IDs, one source, strictly ordered and non-overlapping.
func ValidateSegments(segments []*models.Segment) error {
	if len(segments) == 0 {
		return fmt.Errorf("segment list is empty")
	}

	firstSource := segments[0].SourcePath
	for i, seg := range segments {
		if err := seg.Validate(); err != nil {
			return fmt.Errorf("segment %d is invalid: %w", i, err)
		}
		if seg.SourcePath != firstSource {
			return fmt.Errorf("segment %d has different source path: expected %s, got %s",
				i, firstSource, seg.SourcePath)
		}
		if expectedID := uint(i + 1); seg.SegmentID != expectedID {
			return fmt.Errorf("segment %d has incorrect ID: expected %d, got %d",
				i, expectedID, seg.SegmentID)
		}
	}

	for i := 0; i < len(segments)-1; i++ {
		if segments[i].EndTime > segments[i+1].StartTime {
			return fmt.Errorf("segments %d and %d overlap: %d ends at %.3f, %d starts at %.3f",
				i+1, i+2, i+1, segments[i].EndTime, i+2, segments[i+1].StartTime)
		}
	}

	return nil
}

// KeptSeconds sums the duration of all segments.
func KeptSeconds(segments []*models.Segment) float64 {
	total := 0.0
	for _, seg := range segments {
		total += seg.Duration()
	}
	return total
}
