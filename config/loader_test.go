package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig_Priority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")

	yamlContent := `
input: from-file.mp4
padding: 0.3
merge_gap: 0.2
detect:
  noise_db: -40
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	fs := newFlagSet(t, "--config", configPath, "--padding", "0", "-i", "from-flag.mp4")

	cfg, used, err := LoadConfig(fs)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if used != configPath {
		t.Errorf("Expected config path %s, got %s", configPath, used)
	}
	// Flag beats file
	if cfg.Padding != 0 {
		t.Errorf("Expected flag padding 0, got %g", cfg.Padding)
	}
	if cfg.Input != "from-flag.mp4" {
		t.Errorf("Expected flag input, got %s", cfg.Input)
	}
	// File beats default
	if cfg.MergeGap != 0.2 || cfg.Detect.NoiseDB != -40 {
		t.Errorf("Expected file values, got merge_gap=%g noise=%g", cfg.MergeGap, cfg.Detect.NoiseDB)
	}
	// Default fills the rest
	if cfg.Detect.MinSilence != 0.5 {
		t.Errorf("Expected default min silence, got %g", cfg.Detect.MinSilence)
	}
	if cfg.Output != "from-flag_filtered.mp4" {
		t.Errorf("Expected derived output, got %s", cfg.Output)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	fs := newFlagSet(t, "--config", "/nonexistent/silencecut.yaml")

	_, _, err := LoadConfig(fs)
	if err == nil || !strings.Contains(err.Error(), "/nonexistent/silencecut.yaml") {
		t.Errorf("Expected error naming the config file, got %v", err)
	}
}

func TestLoadConfig_DiscoveredFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("HOME", tmpDir)

	if err := os.WriteFile("silencecut.yaml", []byte("workers: 3\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, used, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if used != "./silencecut.yaml" {
		t.Errorf("Expected discovered ./silencecut.yaml, got %s", used)
	}
	if cfg.Workers != 3 {
		t.Errorf("Expected workers 3, got %d", cfg.Workers)
	}
}
