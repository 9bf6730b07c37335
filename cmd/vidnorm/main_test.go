package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gpeterson/vidnorm/internal/execx"
	"github.com/gpeterson/vidnorm/internal/ffmpeg"
)

// scriptedRunner simulates ffmpeg/ffprobe for command-level tests. It
// records every invocation and, for encode calls, writes the output
// file the way ffmpeg would.
type scriptedRunner struct {
	codecs       map[string]string // basename -> codec reported by the probe
	failVersion  bool
	failEncodeOn map[string]bool // input basename -> fail
	calls        []string        // binary names in invocation order
	encodeCount  int
}

func (r *scriptedRunner) Run(_ context.Context, _ time.Duration, name string, args ...string) (execx.Result, error) {
	r.calls = append(r.calls, name)

	if len(args) == 1 && args[0] == "-version" {
		if r.failVersion {
			return execx.Result{}, errors.New("executable file not found in $PATH")
		}
		return execx.Result{Stdout: []byte("ffmpeg version 7.1")}, nil
	}

	// Probe: last arg is the file path.
	if len(args) > 0 && args[0] == "-v" {
		path := args[len(args)-1]
		if codec, ok := r.codecs[filepath.Base(path)]; ok {
			return execx.Result{Stdout: []byte(codec + "\n")}, nil
		}
		return execx.Result{ExitCode: 1, Stderr: []byte("probe failed")}, nil
	}

	// Encode: -i <input> ... <output>
	if len(args) > 1 && args[0] == "-i" {
		r.encodeCount++
		input := args[1]
		output := args[len(args)-1]
		if r.failEncodeOn[filepath.Base(input)] {
			return execx.Result{ExitCode: 1, Stderr: []byte("simulated encode failure")}, nil
		}
		if err := os.WriteFile(output, []byte("encoded"), 0644); err != nil {
			return execx.Result{}, err
		}
		return execx.Result{}, nil
	}

	return execx.Result{}, fmt.Errorf("unexpected invocation: %s %v", name, args)
}

func stubRunner(t *testing.T, r execx.Runner) {
	t.Helper()
	orig := runnerFactory
	runnerFactory = func() execx.Runner { return r }
	t.Cleanup(func() { runnerFactory = orig })
}

// writeTestConfig points state and tool paths into the test sandbox.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vidnorm.yaml")
	content := fmt.Sprintf("state_dir: %s\nlog_level: error\n", filepath.Join(dir, "state"))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("source"), 0644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunRequiresRootFolder(t *testing.T) {
	runner := &scriptedRunner{}
	stubRunner(t, runner)

	_, err := execute(t, "", "run")
	if err == nil {
		t.Fatal("expected error when no folder is given")
	}
	if runner.encodeCount != 0 {
		t.Error("no encoder invocation should happen without a folder")
	}
}

func TestRunConflictingFlags(t *testing.T) {
	runner := &scriptedRunner{}
	stubRunner(t, runner)
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.avi"))

	_, err := execute(t, "", "run", root,
		"--config", cfgPath,
		"--output-folder", t.TempDir(),
		"--replace-original")
	if !errors.Is(err, errConflictingFlags) {
		t.Fatalf("expected errConflictingFlags, got: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("conflicting flags must abort before any tool invocation, saw %v", runner.calls)
	}
	// Zero files touched
	if _, err := os.Stat(filepath.Join(root, "a_h264.mp4")); !os.IsNotExist(err) {
		t.Error("no output should exist after an aborted run")
	}
}

func TestRunEncoderUnavailable(t *testing.T) {
	stubRunner(t, &scriptedRunner{failVersion: true})
	cfgPath := writeTestConfig(t)

	_, err := execute(t, "", "run", t.TempDir(), "--config", cfgPath)
	if !errors.Is(err, ffmpeg.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got: %v", err)
	}
}

func TestRunMissingRoot(t *testing.T) {
	stubRunner(t, &scriptedRunner{})
	cfgPath := writeTestConfig(t)

	_, err := execute(t, "", "run", filepath.Join(t.TempDir(), "nope"), "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected not-found error, got: %v", err)
	}
}

func TestRunDeclinedConfirmation(t *testing.T) {
	runner := &scriptedRunner{}
	stubRunner(t, runner)
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.avi"))

	out, err := execute(t, "n\n", "run", root, "--config", cfgPath, "--replace-original")
	if err != nil {
		t.Fatalf("declined confirmation should abort cleanly, got: %v", err)
	}
	if !strings.Contains(out, "Cancelled.") {
		t.Errorf("expected cancellation message, got:\n%s", out)
	}
	if runner.encodeCount != 0 {
		t.Error("declining the prompt must prevent all encodes")
	}
	if _, err := os.Stat(filepath.Join(root, "a.avi")); err != nil {
		t.Error("original must be untouched after a cancelled run")
	}
}

func TestRunEndToEnd(t *testing.T) {
	// Root contains a.avi (converted), b.mp4 already h264 (skipped),
	// c.txt (ignored).
	runner := &scriptedRunner{codecs: map[string]string{"b.mp4": "h264"}}
	stubRunner(t, runner)
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.avi"))
	writeFile(t, filepath.Join(root, "b.mp4"))
	writeFile(t, filepath.Join(root, "c.txt"))

	out, err := execute(t, "", "run", root, "--config", cfgPath)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}

	if _, err := os.Stat(filepath.Join(root, "a_h264.mp4")); err != nil {
		t.Errorf("expected a_h264.mp4 alongside the input: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "a.avi")); err != nil {
		t.Error("default placement must leave the original in place")
	}
	if runner.encodeCount != 1 {
		t.Errorf("expected exactly 1 encode, got %d", runner.encodeCount)
	}
	if !strings.Contains(out, "Transcoding complete: 1/1 successful") {
		t.Errorf("unexpected summary output:\n%s", out)
	}
	if !strings.Contains(out, "Skipped 1 file(s)") {
		t.Errorf("expected skip report for b.mp4:\n%s", out)
	}
}

func TestRunReportsFailuresAndContinues(t *testing.T) {
	runner := &scriptedRunner{failEncodeOn: map[string]bool{"bad.avi": true}}
	stubRunner(t, runner)
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad.avi"))
	writeFile(t, filepath.Join(root, "good.mkv"))

	out, err := execute(t, "", "run", root, "--config", cfgPath)
	if err != nil {
		t.Fatalf("a per-file failure must not fail the command: %v", err)
	}
	if !strings.Contains(out, "Transcoding complete: 1/2 successful") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "simulated encode failure") {
		t.Errorf("failure detail should be reported:\n%s", out)
	}
	if runner.encodeCount != 2 {
		t.Errorf("both files should be attempted, got %d encodes", runner.encodeCount)
	}
}

func TestRunNothingToDo(t *testing.T) {
	runner := &scriptedRunner{codecs: map[string]string{"b.mp4": "h264"}}
	stubRunner(t, runner)
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.mp4"))

	out, err := execute(t, "", "run", root, "--config", cfgPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "No videos found that need transcoding.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHistoryAfterRun(t *testing.T) {
	runner := &scriptedRunner{}
	stubRunner(t, runner)
	cfgPath := writeTestConfig(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.avi"))

	if _, err := execute(t, "", "run", root, "--config", cfgPath); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	out, err := execute(t, "", "history", "--config", cfgPath)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, root) {
		t.Errorf("history should list the run root:\n%s", out)
	}
	if !strings.Contains(out, "suffixed-sibling") {
		t.Errorf("history should list the policy:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "vidnorm v") {
		t.Errorf("unexpected version output: %q", out)
	}
}

func TestConfirmReplace(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		assumeYes bool
		want      bool
	}{
		{"affirmative", "y\n", false, true},
		{"uppercase affirmative", "Y\n", false, true},
		{"declined", "n\n", false, false},
		{"empty line declines", "\n", false, false},
		{"anything else declines", "yes\n", false, false},
		{"assume yes skips prompt", "", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := confirmReplace(strings.NewReader(tt.input), &out, tt.assumeYes)
			if err != nil {
				t.Fatalf("confirmReplace failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if !tt.assumeYes && !strings.Contains(out.String(), "Continue?") {
				t.Error("prompt should be printed")
			}
		})
	}
}
