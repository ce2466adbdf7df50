// Package command provides the Command interface shared by every ffmpeg
// invocation the orchestrator schedules.
package command

import "context"

// Priority levels for task execution. Higher priority tasks are scheduled first.
const (
	PriorityLow    = 0  // optional post-processing
	PriorityNormal = 5  // segment extraction
	PriorityHigh   = 10 // final concatenation
)

// TaskType represents the kind of ffmpeg task.
type TaskType string

const (
	TaskTypeExtract TaskType = "extract" // re-encode one keep interval
	TaskTypeConcat  TaskType = "concat"  // join extracted segments
)

// Command represents an ffmpeg command that can be built, executed, or previewed.
//
// Example usage:
//
//	seg := &models.Segment{SegmentID: 1, StartTime: 2, EndTime: 5, SourcePath: "talk.mp4"}
//	cmd := segment.NewExtractBuilder(runner, seg, "work/seg_0001.mp4").
//		SetVideoCodec("libx264").
//		SetCRF(18)
//
//	preview, _ := cmd.DryRun()
//	err := cmd.Run(ctx)
type Command interface {
	// BuildArgs returns the ffmpeg arguments, without the binary.
	BuildArgs() []string

	// Run executes the command and blocks until it exits or ctx is done.
	// Returns an error if the command fails to start or exits non-zero.
	Run(ctx context.Context) error

	// DryRun returns the command line without executing it.
	DryRun() (string, error)

	// GetPriority returns the scheduling priority.
	GetPriority() int

	// SetPriority sets the scheduling priority and returns the Command for chaining.
	SetPriority(priority int) Command

	GetTaskType() TaskType

	// GetInputPath returns the primary input file path for this command.
	GetInputPath() string

	// GetOutputPath returns the output file path for this command.
	GetOutputPath() string
}
