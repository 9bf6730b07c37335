package scan

import (
	"path/filepath"
	"strings"
)

// TargetCodec is the video codec a file must already carry to be skipped.
const TargetCodec = "h264"

// videoExtensions is the fixed allow-list of recognized video container
// extensions. Extension matching is case-insensitive. .mp4 is included:
// an mp4 with a non-H.264 stream is still a conversion candidate.
var videoExtensions = map[string]struct{}{
	".avi": {}, ".mkv": {}, ".mov": {}, ".wmv": {}, ".flv": {},
	".webm": {}, ".m4v": {}, ".mp4": {}, ".mpg": {}, ".mpeg": {},
	".3gp": {}, ".asf": {}, ".rm": {}, ".rmvb": {}, ".vob": {},
	".ts": {}, ".mts": {}, ".m2ts": {}, ".divx": {}, ".xvid": {},
	".ogv": {},
}

// IsVideoCandidate reports whether the path's extension belongs to the
// video allow-list. Pure string inspection, no I/O.
func IsVideoCandidate(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// isMP4 reports whether the path has an .mp4 extension, case-insensitive.
func isMP4(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp4")
}
