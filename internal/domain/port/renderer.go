package port

import (
	"context"

	"github.com/pangeans/unprompted/internal/domain/entity"
)

// MediaInfo holds the probed dimensions of a still image.
type MediaInfo struct {
	Width  int
	Height int
}

// ImageLoader validates that a still image can be decoded, before
// acquisition begins.
type ImageLoader interface {
	ProbeImage(ctx context.Context, path string) (MediaInfo, error)
}

// ImageVariantRequest renders one combination of a still image. Pixelate
// holds the masks whose regions are pixelated, in bit-index order; an
// empty slice is the identity variant.
type ImageVariantRequest struct {
	SourcePath string
	OutputStem string
	Pixelate   []entity.Mask
}

// VideoLayer is one pixelated bit of a video variant: the propagated
// per-frame segments for a single object.
type VideoLayer struct {
	ObjectID int
	Segments entity.VideoSegments
}

// VideoVariantRequest renders one combination of a video as a re-encoded
// clip over the extracted frame sequence.
type VideoVariantRequest struct {
	FramePaths []string
	FPS        float64
	OutputStem string
	Layers     []VideoLayer
}

// VariantRenderer produces one artifact per combination. RenderImage and
// RenderVideo return the path actually written (the extension depends on
// the encoder that succeeded).
type VariantRenderer interface {
	RenderImage(ctx context.Context, req ImageVariantRequest) (string, error)
	RenderVideo(ctx context.Context, req VideoVariantRequest) (string, error)
}

// MaskWriter persists the per-keyword mask dump.
type MaskWriter interface {
	WriteMask(path string, mask entity.Mask) error
}
