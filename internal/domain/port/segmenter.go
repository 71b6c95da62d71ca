package port

import (
	"context"

	"github.com/pangeans/unprompted/internal/domain/entity"
)

// ImagePredictor is the image-mode contract of the external segmentation
// model. Predict is stateless per call with respect to point sets: the
// caller resubmits the entire accumulated point list every time.
type ImagePredictor interface {
	SetImage(ctx context.Context, imagePath string) error
	Predict(ctx context.Context, points []entity.Point, labels []int) (entity.Mask, error)
}

// PropagationFunc receives one propagated frame: the frame index and the
// masks keyed by object ID. Returning an error stops propagation.
type PropagationFunc func(frameIndex int, masks map[int]entity.Mask) error

// VideoPredictor is the video-mode contract of the external segmentation
// model. Unlike the image predictor it is stateful: points accumulate in
// a per-object, per-frame inference state until propagation.
type VideoPredictor interface {
	InitState(ctx context.Context, framesDir string) error
	ResetState(ctx context.Context) error
	AddPoints(ctx context.Context, frameIndex, objectID int, points []entity.Point, labels []int) (entity.Mask, error)
	Propagate(ctx context.Context, fn PropagationFunc) error
}
