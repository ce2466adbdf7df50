package segment

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"silencecut/command"
	"silencecut/ffmpeg"
	"silencecut/models"
)

func newSegment(t *testing.T, id uint, start, end float64, src string) *models.Segment {
	t.Helper()
	seg, err := models.NewSegment(id, start, end, src)
	if err != nil {
		t.Fatalf("NewSegment failed: %v", err)
	}
	return seg
}

func TestExtractBuilder_ImplementsCommand(t *testing.T) {
	var _ command.Command = NewExtractBuilder(ffmpeg.NewRunner("", nil), &models.Segment{}, "out.mp4")
}

func TestExtractBuilder_DefaultArgs(t *testing.T) {
	seg := newSegment(t, 1, 1.48312, 21.7316, "/input/talk.mp4")
	b := NewExtractBuilder(ffmpeg.NewRunner("", nil), seg, "/work/segment_0001.mp4")

	expected := []string{
		"-hide_banner", "-nostdin",
		"-ss", "1.48312",
		"-i", "/input/talk.mp4",
		"-t", "20.24848",
		"-map", "0:v:0?",
		"-map", "0:a:0",
		"-c:v", "libx264", "-crf", "18", "-preset", "fast",
		"-c:a", "aac", "-b:a", "192k",
		"-af", "aresample=async=1000",
		"-max_muxing_queue_size", "9999",
		"-y", "/work/segment_0001.mp4",
	}

	got := b.BuildArgs()
	if strings.Join(got, " ") != strings.Join(expected, " ") {
		t.Errorf("Expected args\n%q\ngot\n%q", expected, got)
	}
}

func TestExtractBuilder_Settings(t *testing.T) {
	seg := newSegment(t, 2, 60, 90.5, "/input/talk.mkv")
	b := NewExtractBuilder(ffmpeg.NewRunner("", nil), seg, "/work/out.mkv").
		SetAudioStream(1).
		SetVideoCodec("libx265").
		SetCRF(-1).
		SetPreset("").
		SetAudioCodec("libopus", "")

	argsStr := strings.Join(b.BuildArgs(), " ")

	for _, want := range []string{"-ss 60 ", "-t 30.5 ", "-map 0:a:1", "-c:v libx265", "-c:a libopus"} {
		if !strings.Contains(argsStr, want) {
			t.Errorf("Expected args to contain %q, got %q", want, argsStr)
		}
	}
	for _, unwanted := range []string{"-crf", "-preset", "-b:a"} {
		if strings.Contains(argsStr, unwanted) {
			t.Errorf("Expected args not to contain %q, got %q", unwanted, argsStr)
		}
	}
}

func TestExtractBuilder_Metadata(t *testing.T) {
	seg := newSegment(t, 3, 0, 10, "/input/talk.mp4")
	b := NewExtractBuilder(ffmpeg.NewRunner("", nil), seg, "/work/segment_0003.mp4")

	if b.GetTaskType() != command.TaskTypeExtract {
		t.Errorf("Expected task type %s, got %s", command.TaskTypeExtract, b.GetTaskType())
	}
	if b.GetPriority() != command.PriorityNormal {
		t.Errorf("Expected default priority %d, got %d", command.PriorityNormal, b.GetPriority())
	}
	b.SetPriority(command.PriorityHigh)
	if b.GetPriority() != command.PriorityHigh {
		t.Errorf("Expected priority %d, got %d", command.PriorityHigh, b.GetPriority())
	}
	if b.GetInputPath() != "/input/talk.mp4" || b.GetOutputPath() != "/work/segment_0003.mp4" {
		t.Errorf("Unexpected paths %s -> %s", b.GetInputPath(), b.GetOutputPath())
	}
	if b.Segment() != seg {
		t.Error("Expected Segment to return the bound segment")
	}
}

func TestExtractBuilder_DryRun(t *testing.T) {
	seg := newSegment(t, 1, 2, 5, "/input/my talk.mp4")
	b := NewExtractBuilder(ffmpeg.NewRunner("/usr/bin/ffmpeg", nil), seg, "/work/segment_0001.mp4")

	cmd, err := b.DryRun()
	if err != nil {
		t.Fatalf("DryRun failed: %v", err)
	}
	if !strings.HasPrefix(cmd, "/usr/bin/ffmpeg -hide_banner") {
		t.Errorf("Unexpected command: %s", cmd)
	}
	if !strings.Contains(cmd, "'/input/my talk.mp4'") {
		t.Errorf("Expected quoted source path, got %s", cmd)
	}

	invalid := NewExtractBuilder(ffmpeg.NewRunner("", nil), &models.Segment{SegmentID: 9, StartTime: 5, EndTime: 5, SourcePath: "x"}, "out.mp4")
	if _, err := invalid.DryRun(); err == nil {
		t.Error("Expected DryRun to reject an empty segment")
	}
	if err := invalid.Run(context.Background()); err == nil {
		t.Error("Expected Run to reject an empty segment")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		source   string
		id       uint
		expected string
	}{
		{"/input/talk.mp4", 1, filepath.Join("/work", "segment_0001.mp4")},
		{"/input/talk.MKV", 12, filepath.Join("/work", "segment_0012.MKV")},
		{"/input/noext", 3, filepath.Join("/work", "segment_0003.mkv")},
	}

	for _, tt := range tests {
		got := OutputPath("/work", &models.Segment{SegmentID: tt.id, SourcePath: tt.source})
		if got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}
