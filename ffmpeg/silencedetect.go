package ffmpeg

import (
	"context"
	"fmt"
	"strconv"

	"silencecut/models"
)

// Detection defaults: -30 dB for at least half a second.
const (
	DefaultNoiseDB    = -30.0
	DefaultMinSilence = 0.5
)

// SilenceDetectCommand runs one silencedetect pass over a single audio
// stream and returns the diagnostic text for the silence parser.
type SilenceDetectCommand struct {
	runner      *Runner
	inputPath   string
	audioStream int
	noiseDB     float64
	minSilence  float64

	totalDuration    float64
	progressCallback models.ProgressCallback
}

// NewSilenceDetectCommand creates a detection pass over inputPath with the
// default threshold and minimum silence.
func NewSilenceDetectCommand(runner *Runner, inputPath string) *SilenceDetectCommand {
	return &SilenceDetectCommand{
		runner:     runner,
		inputPath:  inputPath,
		noiseDB:    DefaultNoiseDB,
		minSilence: DefaultMinSilence,
	}
}

// SetAudioStream selects the audio stream by index among audio streams.
func (c *SilenceDetectCommand) SetAudioStream(index int) *SilenceDetectCommand {
	c.audioStream = index
	return c
}

// SetNoise sets the level in dB below which audio counts as silence.
func (c *SilenceDetectCommand) SetNoise(db float64) *SilenceDetectCommand {
	c.noiseDB = db
	return c
}

// SetMinSilence sets the minimum silence length in seconds.
func (c *SilenceDetectCommand) SetMinSilence(seconds float64) *SilenceDetectCommand {
	c.minSilence = seconds
	return c
}

// SetProgressCallback reports decoding progress against totalDuration,
// which may be 0 when unknown.
func (c *SilenceDetectCommand) SetProgressCallback(totalDuration float64, callback models.ProgressCallback) *SilenceDetectCommand {
	c.totalDuration = totalDuration
	c.progressCallback = callback
	return c
}

// BuildArgs constructs the ffmpeg arguments for the detection pass.
// Decoding goes to the null muxer, so nothing is written.
func (c *SilenceDetectCommand) BuildArgs() []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-i", c.inputPath,
		"-map", "0:a:" + strconv.Itoa(c.audioStream),
		"-af", c.filter(),
		"-f", "null",
		"-",
	}
}

func (c *SilenceDetectCommand) filter() string {
	return fmt.Sprintf("silencedetect=n=%sdB:d=%s",
		strconv.FormatFloat(c.noiseDB, 'f', -1, 64),
		strconv.FormatFloat(c.minSilence, 'f', -1, 64))
}

// Run executes the pass and returns ffmpeg's diagnostic text.
func (c *SilenceDetectCommand) Run(ctx context.Context) (string, error) {
	progress := models.NewProgress(c.totalDuration)
	text, err := c.runner.Run(ctx, c.BuildArgs(), progress, c.progressCallback)
	if err != nil {
		return text, fmt.Errorf("silencedetect on %s: %w", c.inputPath, err)
	}
	return text, nil
}

// DryRun returns the command that would be executed.
func (c *SilenceDetectCommand) DryRun() string {
	return c.runner.CommandLine(c.BuildArgs())
}
