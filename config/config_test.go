package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Detect.NoiseDB != -30 {
		t.Errorf("Expected noise -30, got %g", cfg.Detect.NoiseDB)
	}
	if cfg.Detect.MinSilence != 0.5 {
		t.Errorf("Expected min silence 0.5, got %g", cfg.Detect.MinSilence)
	}
	if cfg.Padding != 0.1 {
		t.Errorf("Expected padding 0.1, got %g", cfg.Padding)
	}
	if cfg.UnboundedEnd != 1e7 {
		t.Errorf("Expected unbounded end 1e7, got %g", cfg.UnboundedEnd)
	}
	if cfg.Encode.VideoCodec != "libx264" || cfg.Encode.CRF != 18 {
		t.Errorf("Expected libx264 crf 18, got %s crf %d", cfg.Encode.VideoCodec, cfg.Encode.CRF)
	}
	if cfg.LogFormat != LogFormatConsole {
		t.Errorf("Expected console log format, got %s", cfg.LogFormat)
	}
	if err := cfg.ValidateSettings(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestCopy(t *testing.T) {
	cfg := DefaultConfig()
	cp := cfg.Copy()
	cp.Encode.Preset = "slow"
	cp.Detect.NoiseDB = -50

	if cfg.Encode.Preset != "fast" || cfg.Detect.NoiseDB != -30 {
		t.Error("Modifying copy changed the original")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"talk.mp4", "talk_filtered.mp4"},
		{"/videos/lecture 1.mkv", "/videos/lecture 1_filtered.mkv"},
		{"noext", "noext_filtered"},
		{"archive.tar.gz", "archive.tar_filtered.gz"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DefaultOutputPath(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestEffectiveWorkers(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.EffectiveWorkers() < 1 {
		t.Errorf("Expected auto-detected workers >= 1, got %d", cfg.EffectiveWorkers())
	}
	cfg.Workers = 3
	if cfg.EffectiveWorkers() != 3 {
		t.Errorf("Expected 3 workers, got %d", cfg.EffectiveWorkers())
	}
}

func TestValidate(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "talk.mp4")
	if err := os.WriteFile(input, []byte("media"), 0644); err != nil {
		t.Fatalf("Failed to create input: %v", err)
	}

	tests := []struct {
		name      string
		modify    func(*Config)
		expectErr string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "missing input", modify: func(c *Config) { c.Input = "" }, expectErr: "input file is required"},
		{name: "nonexistent input", modify: func(c *Config) { c.Input = filepath.Join(tmpDir, "nope.mp4") }, expectErr: "does not exist"},
		{name: "missing output", modify: func(c *Config) { c.Output = "" }, expectErr: "output file is required"},
		{name: "output equals input", modify: func(c *Config) { c.Output = input }, expectErr: "must differ"},
		{name: "negative workers", modify: func(c *Config) { c.Workers = -1 }, expectErr: "workers"},
		{name: "negative audio stream", modify: func(c *Config) { c.AudioStream = -2 }, expectErr: "audio stream"},
		{name: "positive noise", modify: func(c *Config) { c.Detect.NoiseDB = 5 }, expectErr: "noise threshold"},
		{name: "zero min silence", modify: func(c *Config) { c.Detect.MinSilence = 0 }, expectErr: "min silence"},
		{name: "NaN padding", modify: func(c *Config) { c.Padding = math.NaN() }, expectErr: "padding"},
		{name: "negative padding allowed", modify: func(c *Config) { c.Padding = -0.2 }},
		{name: "zero unbounded end", modify: func(c *Config) { c.UnboundedEnd = 0 }, expectErr: "unbounded end"},
		{name: "negative merge gap", modify: func(c *Config) { c.MergeGap = -1 }, expectErr: "merge gap"},
		{name: "min above max", modify: func(c *Config) { c.MinSegment = 10; c.MaxSegment = 5 }, expectErr: "cannot exceed"},
		{name: "CRF too high", modify: func(c *Config) { c.Encode.CRF = 60 }, expectErr: "CRF"},
		{name: "missing audio codec", modify: func(c *Config) { c.Encode.AudioCodec = "" }, expectErr: "audio codec"},
		{name: "bad bitrate", modify: func(c *Config) { c.Encode.AudioBitrate = "fast" }, expectErr: "bitrate"},
		{name: "bad log format", modify: func(c *Config) { c.LogFormat = "xml" }, expectErr: "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Input = input
			cfg.Output = filepath.Join(tmpDir, "out.mp4")
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.expectErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.expectErr) {
				t.Errorf("Expected error containing %q, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = -1
	cfg.Encode.CRF = 99
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	// input, output, workers, encode, log format
	if n := strings.Count(err.Error(), "\n  - "); n != 5 {
		t.Errorf("Expected 5 errors, got %d: %v", n, err)
	}
}

func TestIsValidBitrate(t *testing.T) {
	for rate, want := range map[string]bool{
		"192k": true, "1M": true, "96000": true,
		"k": false, "0k": false, "12kk": false, "1.5M": false, "fast": false,
	} {
		if got := isValidBitrate(rate); got != want {
			t.Errorf("isValidBitrate(%q): expected %v, got %v", rate, want, got)
		}
	}
}
