package transcode

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Mode selects where a converted file is written relative to its input.
type Mode int

const (
	// SuffixedSibling writes <stem>_h264.mp4 next to the input (default).
	SuffixedSibling Mode = iota
	// SeparateOutput mirrors the input's relative path under OutputRoot.
	SeparateOutput
	// ReplaceOriginal writes over the input path (extension swapped to
	// .mp4) and deletes the original on success.
	ReplaceOriginal
)

func (m Mode) String() string {
	switch m {
	case SeparateOutput:
		return "separate-output"
	case ReplaceOriginal:
		return "replace-original"
	default:
		return "suffixed-sibling"
	}
}

// Policy is the placement rule for a run, selected once from CLI flags.
type Policy struct {
	Mode       Mode
	OutputRoot string // Only set for SeparateOutput
}

// OutputPath computes the final destination for input under the policy.
// root is the scanned root, used to preserve relative structure in
// SeparateOutput mode. The result always carries a .mp4 extension.
func (p Policy) OutputPath(input, root string) (string, error) {
	switch p.Mode {
	case SeparateOutput:
		rel, err := filepath.Rel(root, input)
		if err != nil {
			return "", fmt.Errorf("compute relative path for %s: %w", input, err)
		}
		return filepath.Join(p.OutputRoot, replaceExt(rel, ".mp4")), nil
	case ReplaceOriginal:
		return replaceExt(input, ".mp4"), nil
	default:
		dir := filepath.Dir(input)
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		return filepath.Join(dir, stem+"_h264.mp4"), nil
	}
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// tempPath returns the temporary encode destination for a final output
// path, in the same directory so the finalizing rename never crosses a
// filesystem. Encoding always goes through the temp path: when the
// output equals the input (replace-original on an mp4), ffmpeg must not
// write the file it is still reading.
func tempPath(finalPath string) string {
	dir := filepath.Dir(finalPath)
	stem := strings.TrimSuffix(filepath.Base(finalPath), filepath.Ext(finalPath))
	return filepath.Join(dir, stem+".vidnorm.tmp.mp4")
}
