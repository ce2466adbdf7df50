package models

import (
	"fmt"
	"strings"
)

// SegmentResult is the outcome of extracting a single segment.
//
// Successful results must have an output path and no error; failed results
// must have an error and no output path.
type SegmentResult struct {
	SegmentID  uint   `json:"segment_id"`
	OutputPath string `json:"output_path"`
	Success    bool   `json:"success"`
	Error      error  `json:"error"`
}

// NewSegmentResultSuccess creates a successful SegmentResult.
//
// Returns an error if outputPath is empty or whitespace-only.
func NewSegmentResultSuccess(segmentID uint, outputPath string) (*SegmentResult, error) {
	r := &SegmentResult{
		SegmentID:  segmentID,
		OutputPath: outputPath,
		Success:    true,
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid segment result: %w", err)
	}
	return r, nil
}

// NewSegmentResultFailure creates a failed SegmentResult. cause must not be nil.
func NewSegmentResultFailure(segmentID uint, cause error) (*SegmentResult, error) {
	if cause == nil {
		return nil, fmt.Errorf("invalid segment result: error cannot be nil for failed result")
	}
	return &SegmentResult{
		SegmentID: segmentID,
		Success:   false,
		Error:     cause,
	}, nil
}

// Validate checks if the SegmentResult has consistent state.
func (r *SegmentResult) Validate() error {
	if r.Success && r.Error != nil {
		return fmt.Errorf("inconsistent state: Success is true but Error is not nil")
	}

	if !r.Success && r.Error == nil {
		return fmt.Errorf("failed result must have an error")
	}

	if r.Success && strings.TrimSpace(r.OutputPath) == "" {
		return fmt.Errorf("output_path cannot be empty for successful result")
	}

	if !r.Success && strings.TrimSpace(r.OutputPath) != "" {
		return fmt.Errorf("failed result should not have output_path")
	}

	return nil
}
