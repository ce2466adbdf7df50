package ffmpeg

import (
	"strings"
	"testing"
)

func TestSilenceDetectCommand_Defaults(t *testing.T) {
	cmd := NewSilenceDetectCommand(NewRunner("", nil), "/input/talk.mp4")

	expected := []string{
		"-hide_banner", "-nostdin",
		"-i", "/input/talk.mp4",
		"-map", "0:a:0",
		"-af", "silencedetect=n=-30dB:d=0.5",
		"-f", "null", "-",
	}
	args := cmd.BuildArgs()
	if strings.Join(args, " ") != strings.Join(expected, " ") {
		t.Errorf("Expected args %q, got %q", expected, args)
	}
}

func TestSilenceDetectCommand_Settings(t *testing.T) {
	cmd := NewSilenceDetectCommand(NewRunner("/opt/ffmpeg/bin/ffmpeg", nil), "/input/my talk.mkv").
		SetAudioStream(2).
		SetNoise(-42.5).
		SetMinSilence(1.25)

	argsStr := strings.Join(cmd.BuildArgs(), " ")
	for _, want := range []string{"-map 0:a:2", "silencedetect=n=-42.5dB:d=1.25"} {
		if !strings.Contains(argsStr, want) {
			t.Errorf("Expected args to contain %q, got %q", want, argsStr)
		}
	}

	dry := cmd.DryRun()
	if !strings.HasPrefix(dry, "/opt/ffmpeg/bin/ffmpeg ") {
		t.Errorf("Expected dry run to start with the binary, got %q", dry)
	}
	if !strings.Contains(dry, "'/input/my talk.mkv'") {
		t.Errorf("Expected quoted input path, got %q", dry)
	}
}
