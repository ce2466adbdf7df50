// Package ffprobe extracts metadata from media files using the ffprobe
// command-line tool.
package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// DefaultBinary is looked up on PATH when no explicit path is configured.
const DefaultBinary = "ffprobe"

// ErrNoDuration is returned by GetDuration when the container does not
// report a duration, e.g. for live or truncated streams.
var ErrNoDuration = errors.New("duration not available in format metadata")

// Stream represents a media stream (audio, video, subtitle, etc.)
type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecType     string `json:"codec_type"`
	CodecLongName string `json:"codec_long_name"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	SampleRate    string `json:"sample_rate,omitempty"`
	Channels      int    `json:"channels,omitempty"`
	Duration      string `json:"duration,omitempty"`
	Tags          struct {
		Language string `json:"language,omitempty"`
		Title    string `json:"title,omitempty"`
	} `json:"tags,omitempty"`
}

// Format represents the container format information.
type Format struct {
	Filename       string `json:"filename"`
	FormatName     string `json:"format_name"`
	FormatLongName string `json:"format_long_name"`
	Duration       string `json:"duration"`
	Size           string `json:"size"`
	BitRate        string `json:"bit_rate"`
}

// ProbeResult holds the metadata extracted from a media file.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// GetDuration returns the container duration in seconds.
func (pr *ProbeResult) GetDuration() (float64, error) {
	if pr.Format.Duration == "" || pr.Format.Duration == "N/A" {
		return 0, ErrNoDuration
	}

	duration, err := strconv.ParseFloat(pr.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration '%s': %w", pr.Format.Duration, err)
	}
	if duration <= 0 {
		return 0, ErrNoDuration
	}

	return duration, nil
}

// GetSize returns the container size in bytes, or 0 when unknown.
func (pr *ProbeResult) GetSize() uint64 {
	size, err := strconv.ParseUint(pr.Format.Size, 10, 64)
	if err != nil {
		return 0
	}
	return size
}

// GetVideoStreams returns all video streams from the media file.
func (pr *ProbeResult) GetVideoStreams() []Stream {
	return pr.streamsOfType("video")
}

// GetAudioStreams returns all audio streams from the media file.
func (pr *ProbeResult) GetAudioStreams() []Stream {
	return pr.streamsOfType("audio")
}

// HasAudio reports whether the file has at least one audio stream.
func (pr *ProbeResult) HasAudio() bool {
	return len(pr.GetAudioStreams()) > 0
}

// AudioStream returns the index-th audio stream, counting audio streams only,
// which is how ffmpeg resolves "0:a:N".
func (pr *ProbeResult) AudioStream(index int) (Stream, error) {
	audio := pr.GetAudioStreams()
	if index < 0 || index >= len(audio) {
		return Stream{}, fmt.Errorf("audio stream %d not found (file has %d)", index, len(audio))
	}
	return audio[index], nil
}

func (pr *ProbeResult) streamsOfType(codecType string) []Stream {
	var out []Stream
	for _, stream := range pr.Streams {
		if stream.CodecType == codecType {
			out = append(out, stream)
		}
	}
	return out
}

// Probe analyzes a media file with ffprobe's JSON output.
//
// binary may be empty to use DefaultBinary from PATH.
//
// Example:
//
//	result, err := ffprobe.Probe(ctx, "", "/path/to/video.mp4")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	duration, _ := result.GetDuration()
func Probe(ctx context.Context, binary, sourcePath string) (*ProbeResult, error) {
	if sourcePath == "" {
		return nil, fmt.Errorf("source path cannot be empty")
	}
	if binary == "" {
		binary = DefaultBinary
	}

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		sourcePath,
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("ffprobe failed: %w (output: %s)", err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseOutput(output)
}

func parseOutput(data []byte) (*ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe JSON output: %w", err)
	}
	return &result, nil
}
