package ffmpeg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gpeterson/vidnorm/internal/execx"
)

// Prober wraps ffprobe codec inspection.
type Prober struct {
	runner  execx.Runner
	binary  string
	timeout time.Duration
}

// NewProber creates a Prober invoking the given ffprobe binary with a
// bounded wait per call.
func NewProber(runner execx.Runner, binary string, timeout time.Duration) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{runner: runner, binary: binary, timeout: timeout}
}

// VideoCodec returns the codec name of the primary video stream, e.g.
// "h264" or "hevc". Diagnostic output is suppressed so stdout carries
// exactly one csv token.
func (p *Prober) VideoCodec(ctx context.Context, path string) (string, error) {
	res, err := p.runner.Run(ctx, p.timeout, p.binary,
		"-v", "quiet",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return "", fmt.Errorf("ffprobe: %w", err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("ffprobe exited %d: %s", res.ExitCode, lastLines(string(res.Stderr), 1))
	}

	codec := strings.TrimSpace(string(res.Stdout))
	if codec == "" {
		return "", fmt.Errorf("ffprobe reported no video stream for %s", path)
	}
	return codec, nil
}

// lastLines returns the trailing n lines of s joined with " | ".
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
