package ffprobe

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
)

const sampleOutput = `{
    "streams": [
        {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720},
        {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2, "tags": {"language": "eng"}},
        {"index": 2, "codec_name": "mov_text", "codec_type": "subtitle"},
        {"index": 3, "codec_name": "opus", "codec_type": "audio", "sample_rate": "48000", "channels": 1, "tags": {"language": "deu"}}
    ],
    "format": {
        "filename": "talk.mp4",
        "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
        "duration": "42.667000",
        "size": "6428160",
        "bit_rate": "1205280"
    }
}`

func TestProbe_EmptyPath(t *testing.T) {
	_, err := Probe(context.Background(), "", "")
	if err == nil {
		t.Fatal("Expected error for empty path")
	}
	if !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("Expected 'cannot be empty' error, got: %v", err)
	}
}

func TestProbe_NonExistentFile(t *testing.T) {
	if _, err := exec.LookPath(DefaultBinary); err != nil {
		t.Skip("ffprobe not installed")
	}
	_, err := Probe(context.Background(), "", "/nonexistent/file.mp4")
	if err == nil {
		t.Fatal("Expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "ffprobe failed") {
		t.Errorf("Expected ffprobe error, got: %v", err)
	}
}

func TestProbe_MissingBinary(t *testing.T) {
	_, err := Probe(context.Background(), "/nonexistent/ffprobe", "talk.mp4")
	if err == nil || !strings.Contains(err.Error(), "ffprobe failed") {
		t.Errorf("Expected ffprobe failure, got %v", err)
	}
}

func TestProbe_WithRealFile(t *testing.T) {
	testFile := os.Getenv("SILENCECUT_SAMPLE")
	if testFile == "" {
		t.Skip("SILENCECUT_SAMPLE not set, skipping real file test")
	}

	result, err := Probe(context.Background(), "", testFile)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	duration, err := result.GetDuration()
	if err != nil {
		t.Errorf("Failed to get duration: %v", err)
	}
	if duration <= 0 {
		t.Errorf("Expected positive duration, got %.2f", duration)
	}
}

func TestParseOutput(t *testing.T) {
	result, err := parseOutput([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("parseOutput failed: %v", err)
	}

	if len(result.Streams) != 4 {
		t.Fatalf("Expected 4 streams, got %d", len(result.Streams))
	}
	if result.Streams[1].Tags.Language != "eng" {
		t.Errorf("Expected language eng, got %q", result.Streams[1].Tags.Language)
	}
	if result.GetSize() != 6428160 {
		t.Errorf("Expected size 6428160, got %d", result.GetSize())
	}

	if _, err := parseOutput([]byte("not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestProbeResult_GetDuration(t *testing.T) {
	tests := []struct {
		name      string
		duration  string
		expected  float64
		wantError bool
		noDur     bool
	}{
		{"valid", "42.667000", 42.667, false, false},
		{"integer", "120", 120, false, false},
		{"missing", "", 0, true, true},
		{"not available", "N/A", 0, true, true},
		{"zero", "0.000000", 0, true, true},
		{"garbage", "abc", 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := &ProbeResult{Format: Format{Duration: tt.duration}}
			d, err := pr.GetDuration()
			if tt.wantError {
				if err == nil {
					t.Fatalf("Expected error, got duration %.3f", d)
				}
				if tt.noDur && !errors.Is(err, ErrNoDuration) {
					t.Errorf("Expected ErrNoDuration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if d != tt.expected {
				t.Errorf("Expected %.3f, got %.3f", tt.expected, d)
			}
		})
	}
}

func TestProbeResult_Streams(t *testing.T) {
	result, err := parseOutput([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("parseOutput failed: %v", err)
	}

	if n := len(result.GetVideoStreams()); n != 1 {
		t.Errorf("Expected 1 video stream, got %d", n)
	}
	if n := len(result.GetAudioStreams()); n != 2 {
		t.Errorf("Expected 2 audio streams, got %d", n)
	}
	if !result.HasAudio() {
		t.Error("Expected HasAudio true")
	}

	second, err := result.AudioStream(1)
	if err != nil {
		t.Fatalf("AudioStream(1) failed: %v", err)
	}
	if second.Index != 3 || second.CodecName != "opus" {
		t.Errorf("Expected opus at index 3, got %s at %d", second.CodecName, second.Index)
	}

	if _, err := result.AudioStream(2); err == nil {
		t.Error("Expected error for out of range audio stream")
	}
	if _, err := result.AudioStream(-1); err == nil {
		t.Error("Expected error for negative audio stream")
	}
}

func TestProbeResult_NoAudio(t *testing.T) {
	pr := &ProbeResult{Streams: []Stream{{Index: 0, CodecType: "video"}}}
	if pr.HasAudio() {
		t.Error("Expected HasAudio false")
	}
	if _, err := pr.AudioStream(0); err == nil {
		t.Error("Expected error without audio streams")
	}
}
