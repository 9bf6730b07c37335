// Package transcode sequences the per-file conversion work: output
// placement, temp-path encoding, finalization, and run accounting.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gpeterson/vidnorm/internal/ffmpeg"
	"github.com/gpeterson/vidnorm/internal/logger"
	"github.com/gpeterson/vidnorm/internal/scan"
)

// Encoder converts one input file to one output file. Implemented by
// ffmpeg.Encoder; faked in tests.
type Encoder interface {
	Encode(ctx context.Context, input, output string) error
}

// Outcome is the per-file result of one conversion attempt.
type Outcome struct {
	Input      string
	Output     string // Final path; empty on failure
	Err        error  // nil on success
	Detail     string // Diagnostic detail for failures (encoder stderr tail)
	InputSize  int64
	OutputSize int64
	Took       time.Duration
}

// Succeeded reports whether the conversion completed.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Summary aggregates a whole run for final reporting.
type Summary struct {
	Found      int
	Skipped    int
	Succeeded  int
	Failed     int
	SpaceSaved int64 // Input minus output bytes over successful files
}

// Driver processes candidates strictly sequentially: one encoder
// invocation in flight at a time. Encoders are internally multi-threaded,
// so serializing keeps the host from being oversubscribed.
type Driver struct {
	enc    Encoder
	policy Policy
}

// NewDriver creates a Driver applying the given placement policy.
func NewDriver(enc Encoder, policy Policy) *Driver {
	return &Driver{enc: enc, policy: policy}
}

// Run converts every candidate and returns the summary plus per-file
// outcomes in processing order. A failed file is logged and counted,
// never retried, and does not stop the run; only context cancellation
// ends the loop early.
func (d *Driver) Run(ctx context.Context, root string, candidates []scan.Candidate, skipped int) (*Summary, []Outcome) {
	summary := &Summary{Found: len(candidates), Skipped: skipped}
	outcomes := make([]Outcome, 0, len(candidates))

	for i, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		logger.Info("transcoding", "file", i+1, "total", len(candidates), "input", c.Path)

		outcome := d.convert(ctx, root, c.Path)
		if outcome.Succeeded() {
			summary.Succeeded++
			summary.SpaceSaved += outcome.InputSize - outcome.OutputSize
			logger.Info("transcode succeeded", "input", c.Path, "output", outcome.Output, "took", outcome.Took)
		} else {
			summary.Failed++
			logger.Error("transcode failed", "input", c.Path, "error", outcome.Detail)
		}
		outcomes = append(outcomes, outcome)
	}

	return summary, outcomes
}

// convert handles a single file: compute placement, encode to a temp
// path, rename into place, then (replace mode only) delete the original.
func (d *Driver) convert(ctx context.Context, root, input string) Outcome {
	start := time.Now()
	outcome := Outcome{Input: input}

	inputInfo, err := os.Stat(input)
	if err != nil {
		return outcome.failed(fmt.Errorf("stat input: %w", err), start)
	}
	outcome.InputSize = inputInfo.Size()

	finalPath, err := d.policy.OutputPath(input, root)
	if err != nil {
		return outcome.failed(err, start)
	}
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		return outcome.failed(fmt.Errorf("create output directory: %w", err), start)
	}

	tmp := tempPath(finalPath)
	if err := d.enc.Encode(ctx, input, tmp); err != nil {
		_ = os.Remove(tmp) // drop any partial output
		return outcome.failed(err, start)
	}

	if err := os.Rename(tmp, finalPath); err != nil {
		_ = os.Remove(tmp)
		return outcome.failed(fmt.Errorf("finalize output: %w", err), start)
	}

	if outputInfo, err := os.Stat(finalPath); err == nil {
		outcome.OutputSize = outputInfo.Size()
	}
	outcome.Output = finalPath
	outcome.Took = time.Since(start)

	// The transcode already succeeded: a deletion failure here is a
	// warning, not a failed outcome.
	if d.policy.Mode == ReplaceOriginal && finalPath != input {
		if err := os.Remove(input); err != nil {
			logger.Warn("could not remove original after replace", "input", input, "error", err)
		} else {
			logger.Info("removed original", "input", input)
		}
	}

	return outcome
}

func (o Outcome) failed(err error, start time.Time) Outcome {
	o.Err = err
	o.Took = time.Since(start)
	o.Detail = err.Error()
	var encErr *ffmpeg.EncodeError
	if errors.As(err, &encErr) {
		o.Detail = encErr.Detail()
	}
	return o
}
