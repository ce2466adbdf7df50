package config

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Config holds all silencecut configuration options
type Config struct {
	// Required fields
	Input  string `yaml:"input"`
	Output string `yaml:"output"` // empty = <input stem>_filtered<ext>

	// Tools
	FFmpegPath  string `yaml:"ffmpeg_path"`  // empty = "ffmpeg" on PATH
	FFprobePath string `yaml:"ffprobe_path"` // empty = "ffprobe" on PATH

	// Execution settings
	Workers     int `yaml:"workers"`      // 0 = auto-detect
	AudioStream int `yaml:"audio_stream"` // index among audio streams

	// Silence detection
	Detect DetectConfig `yaml:"detect"`

	// Keep interval shaping
	Padding      float64 `yaml:"padding"`       // seconds added around speech at each cut
	UnboundedEnd float64 `yaml:"unbounded_end"` // end of the last interval when duration is unknown
	MinSegment   float64 `yaml:"min_segment"`   // drop keep intervals shorter than this
	MergeGap     float64 `yaml:"merge_gap"`     // keep silences shorter than this
	MaxSegment   float64 `yaml:"max_segment"`   // split longer intervals for parallelism, 0 = never

	// Segment re-encoding
	Encode EncodeConfig `yaml:"encode"`

	// Behavioral flags
	StrictMode bool   `yaml:"strict_mode"` // fail on unknown duration or any segment error
	KeepTemp   bool   `yaml:"keep_temp"`   // keep the work directory
	Verbose    bool   `yaml:"verbose"`     // debug logging
	DryRun     bool   `yaml:"dry_run"`     // detect and print the plan, do not cut
	LogFormat  string `yaml:"log_format"`  // "console" or "json"
}

// DetectConfig holds silencedetect filter settings
type DetectConfig struct {
	NoiseDB    float64 `yaml:"noise_db"`    // threshold, e.g. -30
	MinSilence float64 `yaml:"min_silence"` // seconds
}

// EncodeConfig holds segment encoding settings
type EncodeConfig struct {
	VideoCodec   string `yaml:"video_codec"`   // e.g., "libx264", "libx265"
	CRF          int    `yaml:"crf"`           // Constant Rate Factor (0-51, lower = better quality)
	Preset       string `yaml:"preset"`        // e.g., "ultrafast", "fast", "slow"
	AudioCodec   string `yaml:"audio_codec"`   // e.g., "aac", "libopus"
	AudioBitrate string `yaml:"audio_bitrate"` // e.g., "128k", "192k"
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Workers:     0,
		AudioStream: 0,

		Detect: DetectConfig{
			NoiseDB:    -30,
			MinSilence: 0.5,
		},

		Padding:      0.1,
		UnboundedEnd: 10_000_000,

		Encode: EncodeConfig{
			VideoCodec:   "libx264",
			CRF:          18,
			Preset:       "fast",
			AudioCodec:   "aac",
			AudioBitrate: "192k",
		},

		StrictMode: false,
		KeepTemp:   false,
		Verbose:    false,
		DryRun:     false,
		LogFormat:  LogFormatConsole,
	}
}

// Copy creates a copy of the config. All nested fields are values.
func (c *Config) Copy() *Config {
	cp := *c
	return &cp
}

// Log formats
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// LogFormatValues returns valid log_format values
func LogFormatValues() []string {
	return []string{LogFormatConsole, LogFormatJSON}
}

// IsValidLogFormat checks if format is valid
func IsValidLogFormat(format string) bool {
	for _, valid := range LogFormatValues() {
		if format == valid {
			return true
		}
	}
	return false
}

// EffectiveWorkers resolves Workers = 0 to the CPU count.
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// DefaultOutputPath returns "<dir>/<stem>_filtered<ext>" for input.
func DefaultOutputPath(input string) string {
	if input == "" {
		return ""
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_filtered" + ext
}

// ResolveOutput fills Output from Input when unset.
func (c *Config) ResolveOutput() {
	if c.Output == "" {
		c.Output = DefaultOutputPath(c.Input)
	}
}
