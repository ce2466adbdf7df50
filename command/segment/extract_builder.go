// Package segment builds the ffmpeg command that cuts one keep interval out
// of the source.
package segment

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"silencecut/command"
	"silencecut/ffmpeg"
	"silencecut/models"
)

// ExtractBuilder re-encodes a single segment of the source into its own file.
//
// Segments are re-encoded rather than stream-copied: a copy can only cut on
// keyframes, which would reintroduce fragments of the removed silence.
type ExtractBuilder struct {
	runner     *ffmpeg.Runner
	segment    *models.Segment
	outputPath string

	audioStream int
	videoCodec  string
	crf         int
	preset      string
	audioCodec  string
	audioRate   string
	priority    int
}

// NewExtractBuilder creates an extraction command with libx264/aac defaults.
func NewExtractBuilder(runner *ffmpeg.Runner, seg *models.Segment, outputPath string) *ExtractBuilder {
	return &ExtractBuilder{
		runner:     runner,
		segment:    seg,
		outputPath: outputPath,
		videoCodec: "libx264",
		crf:        18,
		preset:     "fast",
		audioCodec: "aac",
		audioRate:  "192k",
		priority:   command.PriorityNormal,
	}
}

// SetAudioStream selects the audio stream by index among audio streams.
func (b *ExtractBuilder) SetAudioStream(index int) *ExtractBuilder {
	b.audioStream = index
	return b
}

// SetVideoCodec sets the video encoder (e.g. "libx264", "libx265").
func (b *ExtractBuilder) SetVideoCodec(codec string) *ExtractBuilder {
	b.videoCodec = codec
	return b
}

// SetCRF sets the Constant Rate Factor (0-51, lower is better quality).
// A negative value omits -crf.
func (b *ExtractBuilder) SetCRF(crf int) *ExtractBuilder {
	b.crf = crf
	return b
}

// SetPreset sets the encoder preset (ultrafast ... veryslow).
func (b *ExtractBuilder) SetPreset(preset string) *ExtractBuilder {
	b.preset = preset
	return b
}

// SetAudioCodec sets the audio encoder and bitrate (e.g. "aac", "192k").
func (b *ExtractBuilder) SetAudioCodec(codec, bitrate string) *ExtractBuilder {
	b.audioCodec = codec
	b.audioRate = bitrate
	return b
}

// SetPriority sets the task priority.
func (b *ExtractBuilder) SetPriority(priority int) command.Command {
	b.priority = priority
	return b
}

// BuildArgs constructs the ffmpeg arguments.
//
// -ss goes before -i so ffmpeg seeks the input instead of decoding up to the
// start; with re-encoding this is still frame accurate.
func (b *ExtractBuilder) BuildArgs() []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-ss", seconds(b.segment.StartTime),
		"-i", b.segment.SourcePath,
		"-t", seconds(b.segment.Duration()),
		"-map", "0:v:0?",
		"-map", "0:a:" + strconv.Itoa(b.audioStream),
	}

	if b.videoCodec != "" {
		args = append(args, "-c:v", b.videoCodec)
		if b.crf >= 0 && b.crf <= 51 {
			args = append(args, "-crf", strconv.Itoa(b.crf))
		}
		if b.preset != "" {
			args = append(args, "-preset", b.preset)
		}
	}

	if b.audioCodec != "" {
		args = append(args, "-c:a", b.audioCodec)
		if b.audioRate != "" {
			args = append(args, "-b:a", b.audioRate)
		}
	}

	// Keep audio in sync with video across the cut points.
	args = append(args,
		"-af", "aresample=async=1000",
		"-max_muxing_queue_size", "9999",
		"-y", b.outputPath,
	)

	return args
}

// Run executes the extraction.
func (b *ExtractBuilder) Run(ctx context.Context) error {
	if err := b.segment.Validate(); err != nil {
		return fmt.Errorf("extract segment %d: %w", b.segment.SegmentID, err)
	}
	if _, err := b.runner.Run(ctx, b.BuildArgs(), nil, nil); err != nil {
		return fmt.Errorf("extract segment %d: %w", b.segment.SegmentID, err)
	}
	return nil
}

// DryRun returns the command that would be executed.
func (b *ExtractBuilder) DryRun() (string, error) {
	if err := b.segment.Validate(); err != nil {
		return "", err
	}
	return b.runner.CommandLine(b.BuildArgs()), nil
}

func (b *ExtractBuilder) GetPriority() int {
	return b.priority
}

func (b *ExtractBuilder) GetTaskType() command.TaskType {
	return command.TaskTypeExtract
}

func (b *ExtractBuilder) GetInputPath() string {
	return b.segment.SourcePath
}

func (b *ExtractBuilder) GetOutputPath() string {
	return b.outputPath
}

// Segment returns the segment this command extracts.
func (b *ExtractBuilder) Segment() *models.Segment {
	return b.segment
}

// OutputPath returns the conventional file name of a segment inside dir.
// The extension follows the source so the container stays the same.
func OutputPath(dir string, seg *models.Segment) string {
	ext := filepath.Ext(seg.SourcePath)
	if ext == "" {
		ext = ".mkv"
	}
	return filepath.Join(dir, fmt.Sprintf("segment_%04d%s", seg.SegmentID, ext))
}

// seconds renders a time offset with microsecond precision, which is what
// silencedetect reports.
func seconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}
