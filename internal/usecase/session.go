package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/pangeans/unprompted/internal/domain/entity"
	"github.com/pangeans/unprompted/internal/domain/port"
	"github.com/pangeans/unprompted/internal/infra/metrics"
)

// SessionState is the acquisition state machine:
// Idle -> CollectingPoints -> {Accepted | Reset -> CollectingPoints | Abandoned}.
// Accepted and Abandoned are terminal per keyword.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionCollecting
	SessionAccepted
	SessionAbandoned
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionCollecting:
		return "collecting"
	case SessionAccepted:
		return "accepted"
	case SessionAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// promptFrameIndex is the frame the user annotates in video mode. Always
// the first frame, for consistency across keywords.
const promptFrameIndex = 0

func onesLabels(n int) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = 1
	}
	return labels
}

// ImageSession acquires one keyword's mask over a still image. Each added
// point resubmits the entire accumulated point list to the predictor.
type ImageSession struct {
	keyword   string
	predictor port.ImagePredictor
	prompts   port.PromptSource
	logger    *zap.Logger

	state     SessionState
	points    []entity.Point
	candidate *entity.Mask
}

func NewImageSession(keyword string, predictor port.ImagePredictor, prompts port.PromptSource, logger *zap.Logger) *ImageSession {
	return &ImageSession{
		keyword:   keyword,
		predictor: predictor,
		prompts:   prompts,
		logger:    logger.With(zap.String("keyword", keyword)),
		state:     SessionIdle,
	}
}

func (s *ImageSession) State() SessionState { return s.state }

// Run drives the session to a terminal state. It returns the accepted
// mask, or nil when the keyword was abandoned. The returned error is only
// non-nil for prompt-source failures (for example context cancellation);
// segmentation failures abandon the keyword and are recovered locally.
func (s *ImageSession) Run(ctx context.Context) (*entity.Mask, error) {
	s.state = SessionCollecting

	for {
		prompt, err := s.prompts.Next(ctx, s.keyword)
		if err != nil {
			return nil, err
		}

		switch prompt.Action {
		case entity.PromptPoint:
			if err := s.addPoint(ctx, prompt.Point); err != nil {
				s.logger.Warn("segmentation failed, abandoning keyword", zap.Error(err))
				metrics.KeywordsAbandonedTotal.WithLabelValues("segmentation_error").Inc()
				s.state = SessionAbandoned
				return nil, nil
			}

		case entity.PromptAccept:
			if s.candidate == nil {
				s.logger.Info("accept ignored, no candidate mask yet")
				continue
			}
			s.state = SessionAccepted
			return s.candidate, nil

		case entity.PromptReset:
			s.reset()

		case entity.PromptAbandon:
			metrics.KeywordsAbandonedTotal.WithLabelValues("skipped").Inc()
			s.state = SessionAbandoned
			return nil, nil
		}
	}
}

func (s *ImageSession) addPoint(ctx context.Context, p entity.Point) error {
	s.points = append(s.points, p)
	mask, err := s.predictor.Predict(ctx, s.points, onesLabels(len(s.points)))
	if err != nil {
		return &entity.SegmentationError{Keyword: s.keyword, Err: err}
	}
	s.candidate = &mask
	s.logger.Debug("candidate mask updated",
		zap.Int("points", len(s.points)),
		zap.Int("region_pixels", mask.Count()),
	)
	return nil
}

func (s *ImageSession) reset() {
	s.points = nil
	s.candidate = nil
	s.state = SessionCollecting
	s.logger.Info("session reset")
}

// VideoSession acquires one keyword's mask over the first frame of a
// video and, on acceptance, propagates the object across all frames.
// Points accumulate in the predictor's per-object inference state.
type VideoSession struct {
	keyword   string
	objectID  int
	predictor port.VideoPredictor
	prompts   port.PromptSource
	logger    *zap.Logger

	state     SessionState
	points    []entity.Point
	candidate *entity.Mask
}

func NewVideoSession(keyword string, objectID int, predictor port.VideoPredictor, prompts port.PromptSource, logger *zap.Logger) *VideoSession {
	return &VideoSession{
		keyword:   keyword,
		objectID:  objectID,
		predictor: predictor,
		prompts:   prompts,
		logger:    logger.With(zap.String("keyword", keyword), zap.Int("object_id", objectID)),
		state:     SessionIdle,
	}
}

func (s *VideoSession) State() SessionState { return s.state }

// Run drives the session to a terminal state. On acceptance the object is
// propagated across every frame; propagation failure abandons the keyword
// retroactively (nothing is returned for it).
func (s *VideoSession) Run(ctx context.Context) (*entity.Mask, entity.VideoSegments, error) {
	s.state = SessionCollecting

	for {
		prompt, err := s.prompts.Next(ctx, s.keyword)
		if err != nil {
			return nil, nil, err
		}

		switch prompt.Action {
		case entity.PromptPoint:
			if err := s.addPoint(ctx, prompt.Point); err != nil {
				s.logger.Warn("segmentation failed, abandoning keyword", zap.Error(err))
				metrics.KeywordsAbandonedTotal.WithLabelValues("segmentation_error").Inc()
				s.state = SessionAbandoned
				return nil, nil, nil
			}

		case entity.PromptAccept:
			if s.candidate == nil {
				s.logger.Info("accept ignored, no candidate mask yet")
				continue
			}
			segments, err := s.propagate(ctx)
			if err != nil {
				perr := &entity.PropagationError{Keyword: s.keyword, Err: err}
				s.logger.Warn("propagation failed, abandoning keyword", zap.Error(perr))
				metrics.KeywordsAbandonedTotal.WithLabelValues("propagation_error").Inc()
				s.state = SessionAbandoned
				return nil, nil, nil
			}
			s.state = SessionAccepted
			return s.candidate, segments, nil

		case entity.PromptReset:
			s.reset()

		case entity.PromptAbandon:
			metrics.KeywordsAbandonedTotal.WithLabelValues("skipped").Inc()
			s.state = SessionAbandoned
			return nil, nil, nil
		}
	}
}

func (s *VideoSession) addPoint(ctx context.Context, p entity.Point) error {
	s.points = append(s.points, p)
	mask, err := s.predictor.AddPoints(ctx, promptFrameIndex, s.objectID, s.points, onesLabels(len(s.points)))
	if err != nil {
		return &entity.SegmentationError{Keyword: s.keyword, Err: err}
	}
	s.candidate = &mask
	s.logger.Debug("candidate mask updated",
		zap.Int("points", len(s.points)),
		zap.Int("region_pixels", mask.Count()),
	)
	return nil
}

func (s *VideoSession) reset() {
	s.points = nil
	s.candidate = nil
	s.state = SessionCollecting
	s.logger.Info("session reset")
}

func (s *VideoSession) propagate(ctx context.Context) (entity.VideoSegments, error) {
	s.logger.Info("propagating object across video frames")

	segments := make(entity.VideoSegments)
	err := s.predictor.Propagate(ctx, func(frameIndex int, masks map[int]entity.Mask) error {
		segments[frameIndex] = masks
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, errors.New("propagation produced no frames")
	}

	s.logger.Info("propagation complete", zap.Int("frames", len(segments)))
	return segments, nil
}
