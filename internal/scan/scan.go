// Package scan walks a directory tree and produces the ordered list of
// files that need converting to H.264/AAC MP4.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gpeterson/vidnorm/internal/logger"
)

// Sentinel errors for root validation, checked with errors.Is().
var (
	ErrNotFound      = errors.New("folder does not exist")
	ErrNotADirectory = errors.New("not a directory")
)

// Candidate is a file that needs transcoding.
type Candidate struct {
	Path string // Absolute or root-relative path as walked
	Ext  string // Lowercased extension, including the dot
}

// Result is the outcome of a tree scan.
type Result struct {
	Candidates []Candidate // In stable walk order
	Skipped    int         // Files already in the target format
}

// CodecProber identifies the primary video stream codec of a file.
// Implemented by ffmpeg.Prober; faked in tests.
type CodecProber interface {
	VideoCodec(ctx context.Context, path string) (string, error)
}

// Scanner enumerates conversion candidates under a root directory.
type Scanner struct {
	prober CodecProber
}

// New creates a Scanner using the given prober for mp4 codec checks.
func New(prober CodecProber) *Scanner {
	return &Scanner{prober: prober}
}

// Scan walks root and classifies every regular file. Files inside
// exclude (if non-empty) are not visited, so a run whose output folder
// sits under the scanned root never rescans its own outputs. The walk
// is lexical, so ordering is stable within a run. Directory symlinks
// are not followed.
func (s *Scanner) Scan(ctx context.Context, root, exclude string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}

	var excludeAbs string
	if exclude != "" {
		if excludeAbs, err = filepath.Abs(exclude); err != nil {
			excludeAbs = filepath.Clean(exclude)
		}
	}

	result := &Result{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entries are logged and skipped, not fatal.
			logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if excludeAbs != "" {
				abs, err := filepath.Abs(path)
				if err == nil && abs == excludeAbs {
					logger.Debug("excluding output folder from scan", "path", path)
					return fs.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !IsVideoCandidate(path) {
			return nil
		}

		if s.alreadyTargetFormat(ctx, path) {
			logger.Info("skipping, already H.264 MP4", "path", path)
			result.Skipped++
			return nil
		}

		result.Candidates = append(result.Candidates, Candidate{
			Path: path,
			Ext:  strings.ToLower(filepath.Ext(path)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// alreadyTargetFormat reports whether path is an mp4 whose primary video
// stream is already the target codec. Any probe failure means "needs
// transcoding": re-encoding a conforming file is recoverable, silently
// skipping a non-conforming one is not.
func (s *Scanner) alreadyTargetFormat(ctx context.Context, path string) bool {
	if !isMP4(path) {
		return false
	}
	codec, err := s.prober.VideoCodec(ctx, path)
	if err != nil {
		logger.Debug("probe failed, assuming file needs transcoding", "path", path, "error", err)
		return false
	}
	return strings.EqualFold(codec, TargetCodec)
}
