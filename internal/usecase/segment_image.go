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

// SegmentImageUseCase runs the full image pipeline: sequential per-keyword
// mask acquisition, metadata write, then combination generation over the
// immutable mask store.
type SegmentImageUseCase struct {
	predictor  port.ImagePredictor
	prompts    port.PromptSource
	loader     port.ImageLoader
	renderer   port.VariantRenderer
	maskWriter port.MaskWriter
	logger     *zap.Logger
	dirs       Dirs
	workers    int
}

func NewSegmentImageUseCase(
	predictor port.ImagePredictor,
	prompts port.PromptSource,
	loader port.ImageLoader,
	renderer port.VariantRenderer,
	maskWriter port.MaskWriter,
	logger *zap.Logger,
	dirs Dirs,
	workers int,
) *SegmentImageUseCase {
	return &SegmentImageUseCase{
		predictor:  predictor,
		prompts:    prompts,
		loader:     loader,
		renderer:   renderer,
		maskWriter: maskWriter,
		logger:     logger,
		dirs:       dirs,
		workers:    workers,
	}
}

func (uc *SegmentImageUseCase) Execute(ctx context.Context, run *entity.Run) (*Report, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "SegmentImageUseCase.Execute")
	defer span.End()

	span.SetAttributes(
		attribute.String("run.id", run.ID.String()),
		attribute.String("run.media", run.MediaPath),
	)

	log := uc.logger.With(zap.String("run_id", run.ID.String()), zap.String("media", run.MediaPath))

	// Media must load before any acquisition begins; failure here is the
	// only fatal error class.
	info, err := uc.loader.ProbeImage(ctx, run.MediaPath)
	if err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	log.Info("media loaded", zap.Int("width", info.Width), zap.Int("height", info.Height))

	if err := ensureDirs(uc.dirs.Masks, uc.dirs.Combinations); err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	if err := uc.predictor.SetImage(ctx, run.MediaPath); err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("prepare segmentation model: %w", err)
	}

	store, err := uc.acquire(ctx, run, info, log)
	if err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	// Metadata uses only accepted keywords, in acquisition order.
	if err := WriteMetadata(uc.dirs.Masks, store.Keywords()); err != nil {
		run.MarkFailed(err.Error())
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	run.MarkGenerating(store.Len())

	genStart := time.Now()
	ctxGen, spanGen := tracer.Start(ctx, "generate_combinations")
	gen := NewGenerator(uc.renderer, uc.workers, log)
	report, err := gen.GenerateImage(ctxGen, GenerateImageInput{
		SourcePath: run.MediaPath,
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

func (uc *SegmentImageUseCase) acquire(ctx context.Context, run *entity.Run, info port.MediaInfo, log *zap.Logger) (*entity.MaskStore, error) {
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
		session := NewImageSession(keyword, uc.predictor, uc.prompts, log)
		mask, err := session.Run(ctx)
		if err != nil {
			return nil, err
		}
		if mask == nil {
			log.Info("keyword skipped, no mask accepted", zap.String("keyword", keyword))
			continue
		}

		if err := mask.Validate(info.Width, info.Height); err != nil {
			log.Warn("rejecting mask with wrong dimensions, keyword abandoned",
				zap.String("keyword", keyword),
				zap.Error(err),
			)
			metrics.KeywordsAbandonedTotal.WithLabelValues("bad_mask").Inc()
			continue
		}

		if err := store.Accept(keyword, *mask); err != nil {
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
			zap.Int("region_pixels", mask.Count()),
		)
	}
	return store, nil
}
