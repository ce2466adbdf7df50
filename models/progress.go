package models

import (
	"fmt"
	"time"
)

// Progress holds live metrics of a running ffmpeg process.
type Progress struct {
	// Position in the input
	CurrentTime    string  // Last reported clock (HH:MM:SS.ss)
	CurrentSeconds float64 // CurrentTime in seconds

	Bitrate string  // e.g. "128.0kbits/s", empty for null output
	Speed   float64 // e.g. 24.5 means 24.5x realtime
	Size    string  // e.g. "1024kB", empty for null output

	TotalDuration float64 // Seconds; 0 when unknown
	Percent       float64 // 0-100, only meaningful with TotalDuration

	State     ProgressState
	StartTime time.Time
	UpdatedAt time.Time
}

// ProgressState is the lifecycle state of a process or task.
type ProgressState string

const (
	ProgressStateQueued    ProgressState = "queued"
	ProgressStateStarting  ProgressState = "starting"
	ProgressStateRunning   ProgressState = "running"
	ProgressStateCompleted ProgressState = "completed"
	ProgressStateFailed    ProgressState = "failed"
	ProgressStateCancelled ProgressState = "cancelled"
)

// ProgressCallback receives progress updates.
type ProgressCallback func(progress *Progress)

// NewProgress creates a tracker. totalDuration may be 0 when unknown.
func NewProgress(totalDuration float64) *Progress {
	now := time.Now()
	return &Progress{
		TotalDuration: totalDuration,
		State:         ProgressStateQueued,
		StartTime:     now,
		UpdatedAt:     now,
	}
}

// Advance records the current position and recomputes Percent.
func (p *Progress) Advance(currentSeconds float64) {
	p.CurrentSeconds = currentSeconds
	if p.TotalDuration > 0 {
		p.Percent = (currentSeconds / p.TotalDuration) * 100
		if p.Percent > 100 {
			p.Percent = 100
		}
	}
	p.UpdatedAt = time.Now()
}

// EstimatedTimeRemaining extrapolates from elapsed wall time and Percent.
func (p *Progress) EstimatedTimeRemaining() time.Duration {
	if p.Speed <= 0 || p.Percent <= 0 {
		return 0
	}

	elapsed := time.Since(p.StartTime)
	totalEstimated := time.Duration(float64(elapsed) / (p.Percent / 100))
	remaining := totalEstimated - elapsed

	if remaining < 0 {
		return 0
	}
	return remaining
}

// FormatSummary returns a one-line human readable summary.
func (p *Progress) FormatSummary() string {
	if p.TotalDuration <= 0 {
		return fmt.Sprintf("Position: %s | Speed: %.2fx", p.CurrentTime, p.Speed)
	}
	return fmt.Sprintf(
		"Progress: %.1f%% | Position: %s | Speed: %.2fx | ETA: %s",
		p.Percent,
		p.CurrentTime,
		p.Speed,
		formatDuration(p.EstimatedTimeRemaining()),
	)
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "calculating..."
	}

	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	seconds = seconds % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}
