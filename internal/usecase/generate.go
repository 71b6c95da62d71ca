package usecase

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/pangeans/unprompted/internal/domain/entity"
	"github.com/pangeans/unprompted/internal/domain/port"
	"github.com/pangeans/unprompted/internal/infra/metrics"
)

// Generator produces the 2^n combination artifacts from an immutable mask
// store. Variants composite independently, so rendering runs on a bounded
// worker pool; n stays small in practice (it is bounded by the number of
// human-acquired masks per media item, typically no more than ~6).
type Generator struct {
	renderer port.VariantRenderer
	workers  int
	logger   *zap.Logger
}

func NewGenerator(renderer port.VariantRenderer, workers int, logger *zap.Logger) *Generator {
	if workers < 1 {
		workers = 1
	}
	return &Generator{renderer: renderer, workers: workers, logger: logger}
}

// Report summarizes one generation pass. Artifacts maps artifact file
// names to their absolute paths.
type Report struct {
	Expected  int
	Written   int
	Artifacts map[string]string
}

type GenerateImageInput struct {
	SourcePath string
	OutputDir  string
	Store      *entity.MaskStore
}

type GenerateVideoInput struct {
	FramePaths []string
	FPS        float64
	OutputDir  string
	Store      *entity.MaskStore
}

// GenerateImage renders every combination of the still image. Per-variant
// failures are reported and skipped; they never abort sibling variants.
func (g *Generator) GenerateImage(ctx context.Context, in GenerateImageInput) (*Report, error) {
	n := in.Store.Len()
	keywords := in.Store.Keywords()

	render := func(ctx context.Context, i int) (string, error) {
		var masks []entity.Mask
		for _, j := range entity.PixelatedBits(i, n) {
			mask, _ := in.Store.Mask(keywords[j])
			masks = append(masks, mask)
		}
		return g.renderer.RenderImage(ctx, port.ImageVariantRequest{
			SourcePath: in.SourcePath,
			OutputStem: filepath.Join(in.OutputDir, combinationStem(i, n)),
			Pixelate:   masks,
		})
	}

	return g.run(ctx, n, "image", render)
}

// GenerateVideo renders every combination of the extracted frame
// sequence, one encoded clip per combination.
func (g *Generator) GenerateVideo(ctx context.Context, in GenerateVideoInput) (*Report, error) {
	n := in.Store.Len()
	keywords := in.Store.Keywords()

	render := func(ctx context.Context, i int) (string, error) {
		var layers []port.VideoLayer
		for _, j := range entity.PixelatedBits(i, n) {
			objectID, _ := in.Store.ObjectID(keywords[j])
			segments, _ := in.Store.Segments(keywords[j])
			layers = append(layers, port.VideoLayer{ObjectID: objectID, Segments: segments})
		}
		return g.renderer.RenderVideo(ctx, port.VideoVariantRequest{
			FramePaths: in.FramePaths,
			FPS:        in.FPS,
			OutputStem: filepath.Join(in.OutputDir, combinationStem(i, n)),
			Layers:     layers,
		})
	}

	return g.run(ctx, n, "video", render)
}

// combinationStem is the artifact file stem for combination i. With zero
// accepted masks the combination key is empty, which would produce a
// dotfile; the single identity artifact is named "identity" instead.
func combinationStem(i, n int) string {
	if n == 0 {
		return "identity"
	}
	return entity.CombinationKey(i, n)
}

func (g *Generator) run(ctx context.Context, n int, kind string, render func(ctx context.Context, i int) (string, error)) (*Report, error) {
	total := 1 << n

	g.logger.Info("generating combinations",
		zap.Int("masks", n),
		zap.Int("combinations", total),
		zap.Int("workers", g.workers),
	)

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Rendering combinations"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(50),
	)

	report := &Report{Expected: total, Artifacts: make(map[string]string, total)}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		indices = make(chan int)
	)

	for w := 0; w < g.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			metrics.ActiveRenderWorkers.Inc()
			defer metrics.ActiveRenderWorkers.Dec()

			for i := range indices {
				writtenPath, err := render(ctx, i)
				_ = bar.Add(1)

				if err != nil {
					metrics.ArtifactFailuresTotal.WithLabelValues(kind).Inc()
					g.logger.Warn("combination failed",
						zap.Int("worker_id", workerID),
						zap.String("combination", combinationStem(i, n)),
						zap.Error(err),
					)
					continue
				}

				metrics.ArtifactsWrittenTotal.WithLabelValues(kind).Inc()
				abs, absErr := filepath.Abs(writtenPath)
				if absErr != nil {
					abs = writtenPath
				}
				mu.Lock()
				report.Written++
				report.Artifacts[filepath.Base(writtenPath)] = abs
				mu.Unlock()
			}
		}(w)
	}

feed:
	for i := 0; i < total; i++ {
		select {
		case indices <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indices)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}

	g.logger.Info("generation finished",
		zap.Int("expected", report.Expected),
		zap.Int("written", report.Written),
	)
	return report, nil
}
