package opencv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/pangeans/unprompted/internal/domain/entity"
	"github.com/pangeans/unprompted/internal/domain/port"
	"github.com/pangeans/unprompted/internal/infra/metrics"
)

// Renderer produces combination artifacts: webp (png fallback) stills and
// codec-fallback videos. It is safe for concurrent use; every call works
// on its own Mats.
type Renderer struct {
	compositor  *Compositor
	encoder     *Encoder
	webpQuality int
	logger      *zap.Logger
}

type RendererConfig struct {
	PixelationFactor int
	WebpQuality      int
}

func NewRenderer(cfg RendererConfig, logger *zap.Logger) *Renderer {
	return &Renderer{
		compositor:  NewCompositor(cfg.PixelationFactor),
		encoder:     NewEncoder(logger),
		webpQuality: cfg.WebpQuality,
		logger:      logger,
	}
}

// ProbeImage decodes the still image to confirm it is readable and
// reports its dimensions.
func (r *Renderer) ProbeImage(ctx context.Context, path string) (port.MediaInfo, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return port.MediaInfo{}, &entity.MediaLoadError{Path: path, Err: errors.New("could not decode image")}
	}
	return port.MediaInfo{Width: img.Cols(), Height: img.Rows()}, nil
}

// RenderImage composites one still-image combination and writes it as
// webp, falling back to png when the webp encode fails.
func (r *Renderer) RenderImage(ctx context.Context, req port.ImageVariantRequest) (string, error) {
	src := gocv.IMRead(req.SourcePath, gocv.IMReadColor)
	if src.Empty() {
		src.Close()
		return "", &entity.MediaLoadError{Path: req.SourcePath, Err: errors.New("could not decode image")}
	}
	defer src.Close()

	result := src.Clone()
	defer result.Close()

	for _, mask := range req.Pixelate {
		if err := r.compositor.Compose(&result, mask); err != nil {
			return "", err
		}
	}

	webpPath := req.OutputStem + ".webp"
	params := []int{gocv.IMWriteWebpQuality, r.webpQuality}
	if ok := gocv.IMWriteWithParams(webpPath, result, params); ok {
		return webpPath, nil
	}

	r.logger.Warn("webp encode failed, falling back to png", zap.String("stem", req.OutputStem))
	pngPath := req.OutputStem + ".png"
	if ok := gocv.IMWrite(pngPath, result); !ok {
		return "", fmt.Errorf("write %s", pngPath)
	}
	return pngPath, nil
}

// RenderVideo composites one combination across the whole frame sequence
// and encodes it through the codec fallback chain. Unreadable frames are
// skipped with a warning; a frame with no propagated mask for a layer
// leaves that layer's region untouched in that frame.
func (r *Renderer) RenderVideo(ctx context.Context, req port.VideoVariantRequest) (string, error) {
	key := filepath.Base(req.OutputStem)

	frames := make([]gocv.Mat, 0, len(req.FramePaths))
	defer func() {
		for i := range frames {
			frames[i].Close()
		}
	}()

	for idx, framePath := range req.FramePaths {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		frame := gocv.IMRead(framePath, gocv.IMReadColor)
		if frame.Empty() {
			frame.Close()
			frameErr := &entity.FrameReadError{Path: framePath, FrameIndex: idx}
			r.logger.Warn("skipping unreadable frame",
				zap.String("combination", key),
				zap.Int("frame", idx),
				zap.String("path", framePath),
				zap.Error(frameErr),
			)
			metrics.FramesSkippedTotal.Inc()
			continue
		}

		if err := r.compositeLayers(&frame, idx, key, req.Layers); err != nil {
			frame.Close()
			return "", err
		}
		frames = append(frames, frame)
	}

	if len(frames) == 0 {
		return "", &entity.EncodingError{Key: key, Err: errors.New("no readable frames")}
	}

	writtenPath, err := r.encoder.Encode(req.OutputStem, frames, req.FPS)
	if err != nil {
		return "", &entity.EncodingError{Key: key, Err: err}
	}
	return writtenPath, nil
}

func (r *Renderer) compositeLayers(frame *gocv.Mat, frameIdx int, key string, layers []port.VideoLayer) error {
	for _, layer := range layers {
		objects, ok := layer.Segments[frameIdx]
		if !ok {
			r.logger.Debug("no propagated masks for frame, leaving region clear",
				zap.String("combination", key),
				zap.Int("frame", frameIdx),
				zap.Int("object", layer.ObjectID),
			)
			continue
		}
		mask, ok := objects[layer.ObjectID]
		if !ok {
			r.logger.Debug("no mask for object in frame, leaving region clear",
				zap.String("combination", key),
				zap.Int("frame", frameIdx),
				zap.Int("object", layer.ObjectID),
			)
			continue
		}
		if err := r.compositor.Compose(frame, mask); err != nil {
			return fmt.Errorf("composite frame %d: %w", frameIdx, err)
		}
	}
	return nil
}

// WriteMask persists one accepted keyword mask as an 8-bit PNG (255
// inside the region, 0 outside).
func (r *Renderer) WriteMask(path string, mask entity.Mask) error {
	buf := make([]byte, len(mask.Bits))
	for i, b := range mask.Bits {
		if b != 0 {
			buf[i] = 255
		}
	}

	mat, err := gocv.NewMatFromBytes(mask.Height, mask.Width, gocv.MatTypeCV8U, buf)
	if err != nil {
		return fmt.Errorf("mask to mat: %w", err)
	}
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("write mask %s", path)
	}
	return nil
}
