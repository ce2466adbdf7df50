package config

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// Flag names shared by BindFlags and MergeFromFlags.
const (
	FlagConfig       = "config"
	FlagInput        = "input"
	FlagOutput       = "output"
	FlagFFmpeg       = "ffmpeg"
	FlagFFprobe      = "ffprobe"
	FlagWorkers      = "workers"
	FlagAudioStream  = "audio-stream"
	FlagNoise        = "noise"
	FlagMinSilence   = "min-silence"
	FlagPadding      = "padding"
	FlagUnboundedEnd = "unbounded-end"
	FlagMinSegment   = "min-segment"
	FlagMergeGap     = "merge-gap"
	FlagMaxSegment   = "max-segment"
	FlagVideoCodec   = "video-codec"
	FlagCRF          = "crf"
	FlagPreset       = "preset"
	FlagAudioCodec   = "audio-codec"
	FlagAudioBitrate = "audio-bitrate"
	FlagStrict       = "strict"
	FlagKeepTemp     = "keep-temp"
	FlagVerbose      = "verbose"
	FlagDryRun       = "dry-run"
	FlagLogFormat    = "log-format"
)

// BindFlags registers every config flag on fs. Defaults shown in help come
// from DefaultConfig; only flags the user sets override the config file.
func BindFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	fs.StringP(FlagConfig, "c", "", "Path to config file (default: search standard locations)")
	fs.StringP(FlagInput, "i", "", "Input media file path")
	fs.StringP(FlagOutput, "o", "", "Output file path (default: <input>_filtered.<ext>)")

	// Tools
	fs.String(FlagFFmpeg, "", "ffmpeg binary (default: ffmpeg on PATH)")
	fs.String(FlagFFprobe, "", "ffprobe binary (default: ffprobe on PATH)")

	// Execution settings
	fs.IntP(FlagWorkers, "j", d.Workers, "Number of parallel encoders (0 = auto-detect)")
	fs.Int(FlagAudioStream, d.AudioStream, "Audio stream index used for detection and output")

	// Detection
	fs.Float64(FlagNoise, d.Detect.NoiseDB, "Silence threshold in dB")
	fs.Float64(FlagMinSilence, d.Detect.MinSilence, "Minimum silence length in seconds")

	// Interval shaping
	fs.Float64(FlagPadding, d.Padding, "Seconds kept around speech at each cut (negative trims)")
	fs.Float64(FlagUnboundedEnd, d.UnboundedEnd, "End used for trailing speech when the duration is unknown")
	fs.Float64(FlagMinSegment, d.MinSegment, "Drop kept intervals shorter than this many seconds")
	fs.Float64(FlagMergeGap, d.MergeGap, "Keep silences shorter than this many seconds")
	fs.Float64(FlagMaxSegment, d.MaxSegment, "Split kept intervals longer than this many seconds (0 = never)")

	// Encoding
	fs.String(FlagVideoCodec, d.Encode.VideoCodec, "Video codec for segments")
	fs.Int(FlagCRF, d.Encode.CRF, "Video CRF (0-51, lower = better quality)")
	fs.String(FlagPreset, d.Encode.Preset, "Encoder preset: ultrafast, fast, medium, slow, veryslow")
	fs.String(FlagAudioCodec, d.Encode.AudioCodec, "Audio codec for segments")
	fs.String(FlagAudioBitrate, d.Encode.AudioBitrate, "Audio bitrate, e.g., 192k")

	// Behavioral flags
	fs.Bool(FlagStrict, d.StrictMode, "Fail on unknown duration or any segment error")
	fs.Bool(FlagKeepTemp, d.KeepTemp, "Keep the temporary work directory")
	fs.BoolP(FlagVerbose, "v", d.Verbose, "Enable debug logging")
	fs.Bool(FlagDryRun, d.DryRun, "Detect silence and print the plan without cutting")
	fs.String(FlagLogFormat, d.LogFormat, "Log format: console or json")
}

// MergeFromFlags overrides config values with flags that were explicitly set
// on fs. Flags that fs does not define are ignored.
func (c *Config) MergeFromFlags(fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		if aerr := apply(); aerr != nil {
			err = fmt.Errorf("flag --%s: %w", name, aerr)
		}
	}
	str := func(name string, dst *string) {
		set(name, func() (e error) { *dst, e = fs.GetString(name); return })
	}
	num := func(name string, dst *float64) {
		set(name, func() (e error) { *dst, e = fs.GetFloat64(name); return })
	}
	integer := func(name string, dst *int) {
		set(name, func() (e error) { *dst, e = fs.GetInt(name); return })
	}
	boolean := func(name string, dst *bool) {
		set(name, func() (e error) { *dst, e = fs.GetBool(name); return })
	}

	str(FlagInput, &c.Input)
	str(FlagOutput, &c.Output)
	str(FlagFFmpeg, &c.FFmpegPath)
	str(FlagFFprobe, &c.FFprobePath)

	integer(FlagWorkers, &c.Workers)
	integer(FlagAudioStream, &c.AudioStream)

	num(FlagNoise, &c.Detect.NoiseDB)
	num(FlagMinSilence, &c.Detect.MinSilence)

	num(FlagPadding, &c.Padding)
	num(FlagUnboundedEnd, &c.UnboundedEnd)
	num(FlagMinSegment, &c.MinSegment)
	num(FlagMergeGap, &c.MergeGap)
	num(FlagMaxSegment, &c.MaxSegment)

	str(FlagVideoCodec, &c.Encode.VideoCodec)
	integer(FlagCRF, &c.Encode.CRF)
	str(FlagPreset, &c.Encode.Preset)
	str(FlagAudioCodec, &c.Encode.AudioCodec)
	str(FlagAudioBitrate, &c.Encode.AudioBitrate)

	boolean(FlagStrict, &c.StrictMode)
	boolean(FlagKeepTemp, &c.KeepTemp)
	boolean(FlagVerbose, &c.Verbose)
	boolean(FlagDryRun, &c.DryRun)
	str(FlagLogFormat, &c.LogFormat)

	return err
}

// PrintConfig prints the effective configuration
func (c *Config) PrintConfig(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(w, "                 Effective Configuration                  ")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "Input:          %s\n", c.Input)
	fmt.Fprintf(w, "Output:         %s\n", c.Output)
	fmt.Fprintf(w, "Workers:        %d\n", c.EffectiveWorkers())
	fmt.Fprintf(w, "Audio Stream:   %d\n", c.AudioStream)

	fmt.Fprintln(w, "\nDetection:")
	fmt.Fprintf(w, "  Noise:        %gdB\n", c.Detect.NoiseDB)
	fmt.Fprintf(w, "  Min Silence:  %gs\n", c.Detect.MinSilence)

	fmt.Fprintln(w, "\nIntervals:")
	fmt.Fprintf(w, "  Padding:      %gs\n", c.Padding)
	fmt.Fprintf(w, "  Min Segment:  %gs\n", c.MinSegment)
	fmt.Fprintf(w, "  Merge Gap:    %gs\n", c.MergeGap)
	if c.MaxSegment > 0 {
		fmt.Fprintf(w, "  Max Segment:  %gs\n", c.MaxSegment)
	}

	fmt.Fprintln(w, "\nEncoding:")
	fmt.Fprintf(w, "  Video Codec:  %s\n", c.Encode.VideoCodec)
	fmt.Fprintf(w, "  CRF:          %d\n", c.Encode.CRF)
	fmt.Fprintf(w, "  Preset:       %s\n", c.Encode.Preset)
	fmt.Fprintf(w, "  Audio Codec:  %s\n", c.Encode.AudioCodec)
	fmt.Fprintf(w, "  Audio Rate:   %s\n", c.Encode.AudioBitrate)

	fmt.Fprintln(w, "\nBehavioral Flags:")
	fmt.Fprintf(w, "  Strict Mode:   %v\n", c.StrictMode)
	fmt.Fprintf(w, "  Keep Temp:     %v\n", c.KeepTemp)
	fmt.Fprintf(w, "  Verbose:       %v\n", c.Verbose)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}
