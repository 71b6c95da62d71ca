package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pangeans/unprompted/internal/domain/entity"
	"github.com/pangeans/unprompted/internal/domain/port"
	"github.com/pangeans/unprompted/internal/infra/metrics"
)

// SegmentVideoUseCase runs the full video pipeline: frame extraction,
// sequential per-keyword mask acquisition with propagation, metadata
// write, then per-combination re-encoding over the extracted frames.
type SegmentVideoUseCase struct {
	predictor  port.VideoPredictor
	prompts    port.PromptSource
	extractor  port.FrameExtractor
	renderer   port.VariantRenderer
	maskWriter port.MaskWriter
	logger     *zap.Logger
	dirs       Dirs
	workers    int
}

func NewSegmentVideoUseCase(
	predictor port.VideoPredictor,
	prompts port.PromptSource,
	extractor port.FrameExtractor,
	renderer port.VariantRenderer,
	maskWriter port.MaskWriter,
	logger *zap.Logger,
	dirs Dirs,
	workers int,
) *SegmentVideoUseCase {
	return &SegmentVideoUseCase{
		predictor:  predictor,
		prompts:    prompts,
		extractor:  extractor,
		renderer:   renderer,
		maskWriter: maskWriter,
		logger:     logger,
		dirs:       dirs,
		workers:    workers,
	}
}

func (uc *SegmentVideoUseCase) Execute(ctx context.Context, run *entity.Run) (*Report, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "SegmentVideoUseCase.Execute")
	defer span.End()

	span.SetAttributes(
		attribute.String("run.id", run.ID.String()),
		attribute.String("run.media", run.MediaPath),
	)

	log := uc.logger.With(zap.String("run_id", run.ID.String()), zap.String("media", run.MediaPath))

	if err := ensureDirs(uc.dirs.Masks, uc.dirs.Combinations, uc.dirs.Frames); err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	// Frame extraction must succeed before any acquisition begins;
	// failure here is the only fatal error class.
	exStart := time.Now()
	ctxEx, spanEx := tracer.Start(ctx, "extract_frames")
	extraction, err := uc.extractor.Extract(ctxEx, run.MediaPath, uc.dirs.Frames)
	spanEx.End()
	metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(exStart).Seconds())
	if err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	run.FrameCount = extraction.FrameCount
	run.FPS = extraction.FPS
	log.Info("video loaded",
		zap.Int("frames", extraction.FrameCount),
		zap.Float64("fps", extraction.FPS),
		zap.Int("width", extraction.Width),
		zap.Int("height", extraction.Height),
	)

	if err := uc.predictor.InitState(ctx, uc.dirs.Frames); err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("prepare segmentation model: %w", err)
	}
	if err := uc.predictor.ResetState(ctx); err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("reset inference state: %w", err)
	}

	store, err := uc.acquire(ctx, run, extraction, log)
	if err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	if err := WriteMetadata(uc.dirs.Masks, store.Keywords()); err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	run.MarkGenerating(store.Len())

	genStart := time.Now()
	ctxGen, spanGen := tracer.Start(ctx, "generate_combinations")
	gen := NewGenerator(uc.renderer, uc.workers, log)
	report, err := gen.GenerateVideo(ctxGen, GenerateVideoInput{
		FramePaths: extraction.FramePaths,
		FPS:        extraction.FPS,
		OutputDir:  uc.dirs.Combinations,
		Store:      store,
	})
	spanGen.End()
	metrics.StageDuration.WithLabelValues("generate").Observe(time.Since(genStart).Seconds())
	if err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return report, err
	}

	run.MarkCompleted(report.Written)
	metrics.RunsTotal.WithLabelValues("completed").Inc()
	log.Info("run completed",
		zap.Int("accepted_masks", run.AcceptedMasks),
		zap.Int("expected_artifacts", report.Expected),
		zap.Int("written_artifacts", report.Written),
	)

	if report.Written == 0 {
		return report, ErrNoArtifacts
	}
	return report, nil
}

func (uc *SegmentVideoUseCase) acquire(ctx context.Context, run *entity.Run, extraction *port.FrameExtractionResult, log *zap.Logger) (*entity.MaskStore, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "acquire_masks")
	defer span.End()

	run.MarkAcquiring()
	acqStart := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("acquire").Observe(time.Since(acqStart).Seconds())
	}()

	store := entity.NewMaskStore()
	for _, keyword := range run.Keywords {
		// Object IDs start at 1 and follow the acceptance count, so an
		// abandoned keyword's ID is reused by the next one.
		objectID := store.Len() + 1

		session := NewVideoSession(keyword, objectID, uc.predictor, uc.prompts, log)
		mask, segments, err := session.Run(ctx)
		if err != nil {
			return nil, err
		}
		if mask == nil {
			log.Info("keyword skipped, no mask accepted", zap.String("keyword", keyword))
			continue
		}

		if err := mask.Validate(extraction.Width, extraction.Height); err != nil {
			log.Warn("rejecting mask with wrong dimensions, keyword abandoned",
				zap.String("keyword", keyword),
				zap.Error(err),
			)
			metrics.KeywordsAbandonedTotal.WithLabelValues("bad_mask").Inc()
			continue
		}

		if err := store.AcceptVideo(keyword, objectID, *mask, segments); err != nil {
			return nil, err
		}
		metrics.MasksAcceptedTotal.Inc()

		maskPath := filepath.Join(uc.dirs.Masks, maskFileName(keyword))
		if err := uc.maskWriter.WriteMask(maskPath, *mask); err != nil {
			log.Warn("failed to dump mask", zap.String("keyword", keyword), zap.Error(err))
		}

		log.Info("mask accepted",
			zap.String("keyword", keyword),
			zap.Int("bit_index", store.Len()-1),
			zap.Int("object_id", objectID),
			zap.Int("propagated_frames", len(segments)),
		)
	}
	return store, nil
}
