// Package concatenator joins extracted segments into the final output file
// with ffmpeg's concat demuxer.
package concatenator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"silencecut/command"
	"silencecut/ffmpeg"
	"silencecut/models"
)

// Concatenator handles merging extracted segments into a final output file
type Concatenator struct {
	runner     *ffmpeg.Runner
	strictMode bool // If true, fail if any segment is missing. If false, skip missing segments.
	listDir    string
	logger     *zap.Logger
}

// NewConcatenator creates a new concatenator. A nil logger discards warnings.
func NewConcatenator(runner *ffmpeg.Runner, strictMode bool, logger *zap.Logger) *Concatenator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Concatenator{
		runner:     runner,
		strictMode: strictMode,
		logger:     logger,
	}
}

// SetListDir places the concat list in dir instead of the system temp dir.
func (c *Concatenator) SetListDir(dir string) *Concatenator {
	c.listDir = dir
	return c
}

// Concatenate merges extracted segments, in SegmentID order, into finalOutputPath.
func (c *Concatenator) Concatenate(ctx context.Context, results []*models.SegmentResult, finalOutputPath string) error {
	successful, failed, err := c.validateResults(results)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if len(failed) > 0 {
		if c.strictMode {
			return fmt.Errorf("strict mode: %d segments failed extraction", len(failed))
		}
		c.logger.Warn("skipping failed segments",
			zap.Int("failed", len(failed)),
			zap.Int("successful", len(successful)))
	}

	if len(successful) == 0 {
		return fmt.Errorf("no successful segments to concatenate")
	}

	if err := c.checkForGaps(successful); err != nil {
		if c.strictMode {
			return fmt.Errorf("strict mode: %w", err)
		}
		c.logger.Warn("segment sequence incomplete", zap.Error(err))
	}

	concatFilePath, err := c.createConcatFile(successful)
	if err != nil {
		return fmt.Errorf("failed to create concat file: %w", err)
	}
	defer os.Remove(concatFilePath)

	cmd := NewConcatCommand(c.runner, concatFilePath, finalOutputPath)
	if err := cmd.Run(ctx); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w", err)
	}

	return nil
}

// validateResults separates successful and failed results
func (c *Concatenator) validateResults(results []*models.SegmentResult) (successful, failed []*models.SegmentResult, err error) {
	if len(results) == 0 {
		return nil, nil, fmt.Errorf("no results provided")
	}

	for _, result := range results {
		if result == nil {
			continue
		}
		if result.Success && result.OutputPath != "" {
			if _, err := os.Stat(result.OutputPath); err != nil {
				failed = append(failed, result)
			} else {
				successful = append(successful, result)
			}
		} else {
			failed = append(failed, result)
		}
	}

	sort.Slice(successful, func(i, j int) bool {
		return successful[i].SegmentID < successful[j].SegmentID
	})

	return successful, failed, nil
}

// checkForGaps detects missing segments in the sequence
func (c *Concatenator) checkForGaps(successful []*models.SegmentResult) error {
	var gaps []uint
	for i := 0; i < len(successful)-1; i++ {
		for id := successful[i].SegmentID + 1; id < successful[i+1].SegmentID; id++ {
			gaps = append(gaps, id)
		}
	}

	if len(gaps) > 0 {
		return fmt.Errorf("missing segments: %v", gaps)
	}
	return nil
}

// createConcatFile writes the concat demuxer list:
//
//	file '/path/to/segment_0001.mp4'
//	file '/path/to/segment_0002.mp4'
func (c *Concatenator) createConcatFile(successful []*models.SegmentResult) (string, error) {
	tmpFile, err := os.CreateTemp(c.listDir, "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tmpFile.Close()

	for _, result := range successful {
		absPath, err := filepath.Abs(result.OutputPath)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path for %s: %w", result.OutputPath, err)
		}

		if _, err := fmt.Fprintf(tmpFile, "file '%s'\n", escapeListPath(absPath)); err != nil {
			return "", fmt.Errorf("failed to write to concat file: %w", err)
		}
	}

	return tmpFile.Name(), nil
}

// escapeListPath quotes a path for the concat demuxer, which closes the
// quote, emits an escaped quote and reopens it.
func escapeListPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

// ConcatCommand is the ffmpeg invocation that joins a concat list by stream copy.
type ConcatCommand struct {
	runner     *ffmpeg.Runner
	listPath   string
	outputPath string
	priority   int
}

// NewConcatCommand creates a concat command for an existing list file.
func NewConcatCommand(runner *ffmpeg.Runner, listPath, outputPath string) *ConcatCommand {
	return &ConcatCommand{
		runner:     runner,
		listPath:   listPath,
		outputPath: outputPath,
		priority:   command.PriorityHigh,
	}
}

// BuildArgs constructs the ffmpeg arguments. Segments share codec settings,
// so the streams are copied without re-encoding.
func (cc *ConcatCommand) BuildArgs() []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-f", "concat",
		"-safe", "0",
		"-i", cc.listPath,
		"-c", "copy",
		"-y",
		cc.outputPath,
	}
}

// Run executes the concat and checks the output exists.
func (cc *ConcatCommand) Run(ctx context.Context) error {
	if _, err := cc.runner.Run(ctx, cc.BuildArgs(), nil, nil); err != nil {
		return err
	}
	if _, err := os.Stat(cc.outputPath); err != nil {
		return fmt.Errorf("output file not created: %w", err)
	}
	return nil
}

func (cc *ConcatCommand) DryRun() (string, error) {
	return cc.runner.CommandLine(cc.BuildArgs()), nil
}

func (cc *ConcatCommand) GetPriority() int {
	return cc.priority
}

func (cc *ConcatCommand) SetPriority(priority int) command.Command {
	cc.priority = priority
	return cc
}

func (cc *ConcatCommand) GetTaskType() command.TaskType {
	return command.TaskTypeConcat
}

func (cc *ConcatCommand) GetInputPath() string {
	return cc.listPath
}

func (cc *ConcatCommand) GetOutputPath() string {
	return cc.outputPath
}
