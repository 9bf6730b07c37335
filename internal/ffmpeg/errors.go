package ffmpeg

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates the ffmpeg binary could not be invoked at all.
// Checked with errors.Is() by the CLI preflight.
var ErrUnavailable = errors.New("ffmpeg not available")

// EncodeError represents an encode failure with the tool's diagnostic
// output attached for reporting.
type EncodeError struct {
	Err    error
	Stderr string // Full stderr output from ffmpeg
}

func (e *EncodeError) Error() string {
	return e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Detail returns the most useful diagnostic line for console reporting:
// the tail of stderr when present, the bare error otherwise.
func (e *EncodeError) Detail() string {
	if e.Stderr == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, lastLines(e.Stderr, 3))
}
