package ffmpeg

import (
	"context"
	"fmt"
	"time"

	"github.com/gpeterson/vidnorm/internal/execx"
	"github.com/gpeterson/vidnorm/internal/logger"
)

// Fixed encode template: normalize everything to H.264/AAC MP4 suitable
// for streaming playback. These are deliberately not configurable.
const (
	videoCodec   = "libx264"
	videoCRF     = "23"
	videoPreset  = "medium"
	audioCodec   = "aac"
	audioBitrate = "128k"
)

// versionCheckTimeout bounds the `ffmpeg -version` availability probe.
const versionCheckTimeout = 5 * time.Second

// Encoder wraps ffmpeg invocation with the fixed normalization template.
type Encoder struct {
	runner  execx.Runner
	binary  string
	timeout time.Duration
}

// NewEncoder creates an Encoder invoking the given ffmpeg binary with a
// bounded wait per encode.
func NewEncoder(runner execx.Runner, binary string, timeout time.Duration) *Encoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Encoder{runner: runner, binary: binary, timeout: timeout}
}

// encodeArgs builds the fixed ffmpeg argument set for one file.
func encodeArgs(input, output string) []string {
	return []string{
		"-i", input,
		"-c:v", videoCodec,
		"-crf", videoCRF,
		"-preset", videoPreset,
		"-c:a", audioCodec,
		"-b:a", audioBitrate,
		"-movflags", "+faststart", // index up front for streaming playback
		"-y", // overwrite any existing output
		output,
	}
}

// Encode re-encodes input to output. On any failure the returned error
// is an *EncodeError carrying ffmpeg's stderr; an encode is never
// retried by this layer.
func (e *Encoder) Encode(ctx context.Context, input, output string) error {
	args := encodeArgs(input, output)
	logger.Debug("ffmpeg encode", "input", input, "output", output)

	res, err := e.runner.Run(ctx, e.timeout, e.binary, args...)
	if err != nil {
		return &EncodeError{
			Err:    fmt.Errorf("ffmpeg: %w", err),
			Stderr: string(res.Stderr),
		}
	}
	if res.ExitCode != 0 {
		return &EncodeError{
			Err:    fmt.Errorf("ffmpeg exited %d", res.ExitCode),
			Stderr: string(res.Stderr),
		}
	}
	return nil
}

// CheckAvailable verifies the ffmpeg binary is installed and invocable.
// Used as a run precondition before any file is touched.
func (e *Encoder) CheckAvailable(ctx context.Context) error {
	res, err := e.runner.Run(ctx, versionCheckTimeout, e.binary, "-version")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: %s -version exited %d", ErrUnavailable, e.binary, res.ExitCode)
	}
	return nil
}
