package entity

import (
	"path/filepath"
	"strings"
)

// MediaKind discriminates the two supported media types.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// videoExtensions is the fixed set of recognized video file extensions.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".avi":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".m4v":  {},
}

// DetectMediaKind discriminates media by file extension. Anything not in
// the video extension set is treated as an image.
func DetectMediaKind(path string) MediaKind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := videoExtensions[ext]; ok {
		return MediaKindVideo
	}
	return MediaKindImage
}
