package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// maxSegmentLimit mirrors segmenter.MaxSegmentLimit (24 hours).
const maxSegmentLimit = 86400

// Validate checks if the configuration is valid for a full run
func (c *Config) Validate() error {
	var errors []string

	// Required fields
	if c.Input == "" {
		errors = append(errors, "input file is required")
	} else {
		// Check if input file exists
		if _, err := os.Stat(c.Input); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("input file does not exist: %s", c.Input))
		}
	}

	if c.Output == "" {
		errors = append(errors, "output file is required")
	} else if c.Input != "" && samePath(c.Input, c.Output) {
		errors = append(errors, "output file must differ from input file")
	}

	errors = append(errors, c.settingsErrors()...)

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// ValidateSettings checks everything except the input and output paths.
func (c *Config) ValidateSettings() error {
	if errors := c.settingsErrors(); len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

func (c *Config) settingsErrors() []string {
	var errors []string

	// Validate workers (0 is valid, means auto-detect)
	if c.Workers < 0 {
		errors = append(errors, "workers cannot be negative (use 0 for auto-detect)")
	}

	if c.AudioStream < 0 {
		errors = append(errors, "audio stream index cannot be negative")
	}

	if err := c.Detect.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("detect config: %v", err))
	}

	if math.IsNaN(c.Padding) || math.IsInf(c.Padding, 0) {
		errors = append(errors, "padding must be a finite number")
	}

	if !(c.UnboundedEnd > 0) || math.IsInf(c.UnboundedEnd, 0) {
		errors = append(errors, "unbounded end must be a positive finite number")
	}

	if c.MinSegment < 0 {
		errors = append(errors, "min segment cannot be negative")
	}
	if c.MergeGap < 0 {
		errors = append(errors, "merge gap cannot be negative")
	}
	if c.MaxSegment < 0 {
		errors = append(errors, "max segment cannot be negative (use 0 to disable splitting)")
	} else if c.MaxSegment > maxSegmentLimit {
		errors = append(errors, fmt.Sprintf("max segment cannot exceed %d seconds", maxSegmentLimit))
	} else if c.MaxSegment > 0 && c.MinSegment > c.MaxSegment {
		errors = append(errors, "min segment cannot exceed max segment")
	}

	if err := c.Encode.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("encode config: %v", err))
	}

	if !IsValidLogFormat(c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s', must be one of: %s",
			c.LogFormat, strings.Join(LogFormatValues(), ", ")))
	}

	return errors
}

// Validate checks if detection configuration is valid
func (dc *DetectConfig) Validate() error {
	var errors []string

	if dc.NoiseDB > 0 || math.IsNaN(dc.NoiseDB) || math.IsInf(dc.NoiseDB, 0) {
		errors = append(errors, "noise threshold must be a finite dB value at or below 0")
	}

	if !(dc.MinSilence > 0) || math.IsInf(dc.MinSilence, 0) {
		errors = append(errors, "min silence must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}

// Validate checks if encode configuration is valid
func (ec *EncodeConfig) Validate() error {
	var errors []string

	if ec.VideoCodec == "" {
		errors = append(errors, "video codec is required")
	}

	// CRF validation
	if ec.CRF < 0 || ec.CRF > 51 {
		errors = append(errors, "CRF must be between 0 and 51")
	}

	if ec.AudioCodec == "" {
		errors = append(errors, "audio codec is required")
	}

	if ec.AudioBitrate != "" && !isValidBitrate(ec.AudioBitrate) {
		errors = append(errors, "audio bitrate must look like 128k or 1M")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}

// isValidBitrate checks bitrate strings such as "192k", "1M" or "96000"
func isValidBitrate(rate string) bool {
	digits := strings.TrimRight(rate, "kKmM")
	if digits == "" || len(rate)-len(digits) > 1 {
		return false
	}
	var n int
	_, err := fmt.Sscanf(digits, "%d", &n)
	return err == nil && n > 0 && fmt.Sprint(n) == digits
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
