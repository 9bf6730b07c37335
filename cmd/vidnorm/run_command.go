package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/gpeterson/vidnorm/internal/execx"
	"github.com/gpeterson/vidnorm/internal/ffmpeg"
	"github.com/gpeterson/vidnorm/internal/logger"
	"github.com/gpeterson/vidnorm/internal/scan"
	"github.com/gpeterson/vidnorm/internal/store"
	"github.com/gpeterson/vidnorm/internal/transcode"
)

// Precondition errors, each a hard stop before any file is touched.
var (
	errConflictingFlags = errors.New("cannot use --replace-original together with --output-folder")
	errRunInProgress    = errors.New("another vidnorm run is already in progress")
)

// runnerFactory is replaced in tests to script external tool behavior.
var runnerFactory = func() execx.Runner { return execx.OSRunner{} }

func newRunCommand(configFlag *string) *cobra.Command {
	var outputFolder string
	var replaceOriginal bool
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "run <folder>",
		Short: "Convert every video under a folder to H.264/AAC MP4",
		Long: `Recursively finds video files under <folder> and converts each one to
H.264/AAC MP4. Files already in the target format are skipped. By default
the converted file is written alongside the original as <name>_h264.mp4.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], *configFlag, outputFolder, replaceOriginal, assumeYes)
		},
	}

	cmd.Flags().StringVar(&outputFolder, "output-folder", "", "Write converted files to a separate folder, mirroring the source layout")
	cmd.Flags().BoolVar(&replaceOriginal, "replace-original", false, "Replace original files with the converted output (destructive)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt for --replace-original")

	return cmd
}

func runConvert(cmd *cobra.Command, rootDir, configPath, outputFolder string, replaceOriginal, assumeYes bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.LogLevel)
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	// Preconditions, in order: conflicting flags, encoder availability,
	// destructive-operation confirmation. Each aborts before any file is
	// touched.
	if outputFolder != "" && replaceOriginal {
		return errConflictingFlags
	}

	runner := runnerFactory()
	encoder := ffmpeg.NewEncoder(runner, cfg.FFmpegPath, cfg.EncodeTimeout())
	if err := encoder.CheckAvailable(ctx); err != nil {
		return fmt.Errorf("%w; install FFmpeg and ensure it is in your PATH", err)
	}

	policy := transcode.Policy{Mode: transcode.SuffixedSibling}
	switch {
	case outputFolder != "":
		policy = transcode.Policy{Mode: transcode.SeparateOutput, OutputRoot: outputFolder}
	case replaceOriginal:
		policy = transcode.Policy{Mode: transcode.ReplaceOriginal}
	}

	if replaceOriginal {
		ok, err := confirmReplace(cmd.InOrStdin(), out, assumeYes)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	// One run at a time per state dir: encodes saturate the host on
	// their own, and the history database is single-writer.
	if err := os.MkdirAll(cfg.StateDir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	lock := flock.New(filepath.Join(cfg.StateDir, "vidnorm.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return errRunInProgress
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", "error", err)
		}
	}()

	history, err := store.Open(cfg.StateDir)
	if err != nil {
		// History is reporting only; a broken store must not block
		// conversions.
		logger.Warn("run history unavailable", "error", err)
		history = nil
	} else {
		defer history.Close()
	}

	fmt.Fprintf(out, "Scanning for videos in: %s\n", rootDir)

	prober := ffmpeg.NewProber(runner, cfg.FFprobePath, cfg.ProbeTimeout())
	exclude := ""
	if policy.Mode == transcode.SeparateOutput {
		exclude = policy.OutputRoot
	}
	scanned, err := scan.New(prober).Scan(ctx, rootDir, exclude)
	if err != nil {
		return err
	}

	if scanned.Skipped > 0 {
		fmt.Fprintf(out, "Skipped %d file(s) already in H.264 MP4 format\n", scanned.Skipped)
	}
	if len(scanned.Candidates) == 0 {
		fmt.Fprintln(out, "No videos found that need transcoding.")
		return nil
	}

	fmt.Fprintf(out, "\nFound %d video(s) to transcode:\n", len(scanned.Candidates))
	for i, c := range scanned.Candidates {
		fmt.Fprintf(out, "  %d. %s\n", i+1, c.Path)
	}
	fmt.Fprintln(out)

	var run *store.Run
	if history != nil {
		if run, err = history.BeginRun(rootDir, policy.Mode.String()); err != nil {
			logger.Warn("could not record run", "error", err)
			run = nil
		}
	}

	driver := transcode.NewDriver(encoder, policy)
	summary, outcomes := driver.Run(ctx, rootDir, scanned.Candidates, scanned.Skipped)

	if history != nil && run != nil {
		recordRun(history, run, summary, outcomes)
	}

	fmt.Fprintln(out, renderSummary(summary, outcomes))
	fmt.Fprintf(out, "Transcoding complete: %d/%d successful\n", summary.Succeeded, summary.Found)
	return ctx.Err()
}

// recordRun persists the run and its per-file outcomes; failures here
// only warn, the conversion work is already done.
func recordRun(history *store.SQLiteStore, run *store.Run, summary *transcode.Summary, outcomes []transcode.Outcome) {
	for _, o := range outcomes {
		rec := &store.FileRecord{
			RunID:      run.ID,
			Input:      o.Input,
			Output:     o.Output,
			Status:     store.StatusSucceeded,
			InputSize:  o.InputSize,
			OutputSize: o.OutputSize,
			DurationMS: o.Took.Milliseconds(),
		}
		if !o.Succeeded() {
			rec.Status = store.StatusFailed
			rec.Error = o.Detail
		}
		if err := history.RecordFile(rec); err != nil {
			logger.Warn("could not record file outcome", "input", o.Input, "error", err)
		}
	}

	run.Found = summary.Found
	run.Skipped = summary.Skipped
	run.Succeeded = summary.Succeeded
	run.Failed = summary.Failed
	run.SpaceSaved = summary.SpaceSaved
	if err := history.FinishRun(run); err != nil {
		logger.Warn("could not finalize run record", "error", err)
	}
}
