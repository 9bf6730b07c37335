package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// FFmpegPath is the path to the ffmpeg binary (default: "ffmpeg")
	FFmpegPath string `yaml:"ffmpeg_path"`

	// FFprobePath is the path to the ffprobe binary (default: "ffprobe")
	FFprobePath string `yaml:"ffprobe_path"`

	// LogLevel controls logging verbosity: debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// StateDir is where the run-history database and the run lock live.
	// Default: ~/.local/share/vidnorm (falls back to ./vidnorm-state)
	StateDir string `yaml:"state_dir"`

	// ProbeTimeoutSec bounds a single ffprobe invocation (default 10)
	ProbeTimeoutSec int `yaml:"probe_timeout_sec"`

	// EncodeTimeoutSec bounds a single ffmpeg encode (default 3600)
	EncodeTimeoutSec int `yaml:"encode_timeout_sec"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		LogLevel:         "info",
		StateDir:         defaultStateDir(),
		ProbeTimeoutSec:  10,
		EncodeTimeoutSec: 3600,
	}
}

// Load reads config from a YAML file, applying defaults for missing values.
// A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Apply defaults for empty values
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.StateDir == "" {
		cfg.StateDir = defaultStateDir()
	}
	if cfg.ProbeTimeoutSec <= 0 {
		cfg.ProbeTimeoutSec = 10
	}
	if cfg.EncodeTimeoutSec <= 0 {
		cfg.EncodeTimeoutSec = 3600
	}

	return cfg, nil
}

// Save writes the config to a YAML file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ProbeTimeout returns the bounded wait for a single ffprobe call.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSec) * time.Second
}

// EncodeTimeout returns the bounded wait for a single ffmpeg encode.
func (c *Config) EncodeTimeout() time.Duration {
	return time.Duration(c.EncodeTimeoutSec) * time.Second
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "vidnorm-state"
	}
	return filepath.Join(home, ".local", "share", "vidnorm")
}
