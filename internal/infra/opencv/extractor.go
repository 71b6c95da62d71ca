package opencv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/pangeans/unprompted/internal/domain/entity"
	"github.com/pangeans/unprompted/internal/domain/port"
	"github.com/pangeans/unprompted/internal/infra/metrics"
)

type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract decodes every frame of the source video into outputDir as
// zero-padded, sequentially numbered JPEG files. The returned FPS is the
// source's measured frame rate and is reused for encoded output.
func (e *Extractor) Extract(ctx context.Context, videoPath string, outputDir string) (*port.FrameExtractionResult, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}

	capture, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return nil, &entity.MediaLoadError{Path: videoPath, Err: err}
	}
	defer capture.Close()

	if !capture.IsOpened() {
		return nil, &entity.MediaLoadError{Path: videoPath, Err: errors.New("could not open video")}
	}

	fps := capture.Get(gocv.VideoCaptureFPS)

	frame := gocv.NewMat()
	defer frame.Close()

	var (
		paths         []string
		width, height int
	)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if ok := capture.Read(&frame); !ok {
			break
		}
		if frame.Empty() {
			continue
		}

		framePath := filepath.Join(outputDir, fmt.Sprintf("%05d.jpg", len(paths)))
		if ok := gocv.IMWrite(framePath, frame); !ok {
			return nil, fmt.Errorf("write frame %d to %s", len(paths), framePath)
		}
		width, height = frame.Cols(), frame.Rows()
		paths = append(paths, framePath)
	}

	if len(paths) == 0 {
		return nil, &entity.MediaLoadError{Path: videoPath, Err: errors.New("zero frames extracted")}
	}

	metrics.FramesExtractedTotal.Add(float64(len(paths)))

	e.logger.Info("frames extracted",
		zap.Int("count", len(paths)),
		zap.Float64("fps", fps),
		zap.Int("width", width),
		zap.Int("height", height),
	)

	return &port.FrameExtractionResult{
		FramePaths: paths,
		FrameCount: len(paths),
		FPS:        fps,
		Width:      width,
		Height:     height,
	}, nil
}
