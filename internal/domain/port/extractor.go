package port

import "context"

// FrameExtractionResult describes an extracted, ordered frame sequence.
type FrameExtractionResult struct {
	FramePaths []string
	FrameCount int
	FPS        float64
	Width      int
	Height     int
}

// FrameExtractor converts a source video into an ordered, zero-padded,
// sequentially numbered frame sequence on disk.
type FrameExtractor interface {
	Extract(ctx context.Context, videoPath string, outputDir string) (*FrameExtractionResult, error)
}
