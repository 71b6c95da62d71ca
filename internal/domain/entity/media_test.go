package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMediaKind(t *testing.T) {
	tests := []struct {
		path string
		want MediaKind
	}{
		{"clip.mp4", MediaKindVideo},
		{"CLIP.MP4", MediaKindVideo},
		{"movie.mkv", MediaKindVideo},
		{"old.avi", MediaKindVideo},
		{"web.webm", MediaKindVideo},
		{"apple.mov", MediaKindVideo},
		{"apple.m4v", MediaKindVideo},
		{"photo.jpg", MediaKindImage},
		{"photo.webp", MediaKindImage},
		{"noext", MediaKindImage},
		{"dir.mp4/photo.png", MediaKindImage},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectMediaKind(tt.path), tt.path)
	}
}
