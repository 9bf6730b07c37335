package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("expected default ffmpeg path, got %q", cfg.FFmpegPath)
	}
	if cfg.ProbeTimeout() != 10*time.Second {
		t.Errorf("expected 10s probe timeout, got %v", cfg.ProbeTimeout())
	}
	if cfg.EncodeTimeout() != time.Hour {
		t.Errorf("expected 1h encode timeout, got %v", cfg.EncodeTimeout())
	}
}

func TestLoadAppliesDefaultsForEmptyValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidnorm.yaml")
	content := "ffmpeg_path: /opt/ffmpeg/bin/ffmpeg\nlog_level: debug\nprobe_timeout_sec: 0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("expected configured ffmpeg path, got %q", cfg.FFmpegPath)
	}
	if cfg.FFprobePath != "ffprobe" {
		t.Errorf("expected default ffprobe path, got %q", cfg.FFprobePath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.LogLevel)
	}
	if cfg.ProbeTimeoutSec != 10 {
		t.Errorf("zero probe timeout should reset to default, got %d", cfg.ProbeTimeoutSec)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidnorm.yaml")
	if err := os.WriteFile(path, []byte("ffmpeg_path: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "vidnorm.yaml")

	cfg := DefaultConfig()
	cfg.FFmpegPath = "/usr/local/bin/ffmpeg"
	cfg.EncodeTimeoutSec = 1800
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.FFmpegPath != cfg.FFmpegPath {
		t.Errorf("expected %q, got %q", cfg.FFmpegPath, loaded.FFmpegPath)
	}
	if loaded.EncodeTimeoutSec != 1800 {
		t.Errorf("expected 1800, got %d", loaded.EncodeTimeoutSec)
	}
}
