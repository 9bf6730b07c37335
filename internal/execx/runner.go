// Package execx wraps external process invocation behind a small
// capability interface so callers can be tested with scripted runners.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/gpeterson/vidnorm/internal/logger"
)

// ErrTimeout indicates the process was killed after exceeding its
// bounded wait.
var ErrTimeout = errors.New("command timed out")

// Result holds the captured outcome of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes a command with a bounded wait. A non-zero exit code is
// reported through Result, not through the error: the error is reserved
// for invocation failures (binary missing, not executable) and timeouts.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error)
}

// OSRunner is the production Runner backed by os/exec. The process is
// forcibly terminated when the bounded wait expires, and both output
// streams are fully captured so the child can never block on a pipe.
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("running command", "name", name, "args", args, "timeout", timeout)

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return res, fmt.Errorf("%s: %w after %s", name, ErrTimeout, timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit: the caller interprets the exit code.
			return res, nil
		}
		return res, fmt.Errorf("start %s: %w", name, err)
	}

	return res, nil
}
