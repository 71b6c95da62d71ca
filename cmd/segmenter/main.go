package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/pangeans/unprompted/internal/domain/entity"
	"github.com/pangeans/unprompted/internal/infra/config"
	"github.com/pangeans/unprompted/internal/infra/metrics"
	"github.com/pangeans/unprompted/internal/infra/opencv"
	"github.com/pangeans/unprompted/internal/infra/prompt"
	"github.com/pangeans/unprompted/internal/infra/sam"
	"github.com/pangeans/unprompted/internal/infra/tracing"
	"github.com/pangeans/unprompted/internal/usecase"
	"github.com/pangeans/unprompted/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	root := &cli.Command{
		Name:  "segmenter",
		Usage: "Segment keyword regions in media and generate pixelated combinations",
		Commands: []*cli.Command{
			mediaCommand(entity.MediaKindImage, cfg, log),
			mediaCommand(entity.MediaKindVideo, cfg, log),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.Run(ctx, os.Args); err != nil {
		log.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func mediaCommand(kind entity.MediaKind, cfg *config.Config, log *zap.Logger) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "media",
			Aliases:  []string{"m"},
			Usage:    "Path to the source " + string(kind),
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:     "keywords",
			Aliases:  []string{"k"},
			Usage:    "Ordered keywords to segment, one mask each",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "masks-dir",
			Usage: "Directory for per-keyword mask dumps and metadata",
			Value: cfg.MasksDir,
		},
		&cli.StringFlag{
			Name:  "combinations-dir",
			Usage: "Directory for pixelated combination artifacts",
			Value: cfg.CombinationsDir,
		},
	}
	if kind == entity.MediaKindVideo {
		flags = append(flags, &cli.StringFlag{
			Name:  "frames-dir",
			Usage: "Directory for extracted video frames",
			Value: cfg.FramesDir,
		})
	}

	return &cli.Command{
		Name:  string(kind),
		Usage: fmt.Sprintf("Process a single %s", kind),
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runPipeline(ctx, cmd, kind, cfg, log)
		},
	}
}

func runPipeline(ctx context.Context, cmd *cli.Command, kind entity.MediaKind, cfg *config.Config, log *zap.Logger) error {
	mediaPath := cmd.String("media")
	keywords := cmd.StringSlice("keywords")
	if len(keywords) == 0 {
		return cli.Exit("at least one keyword is required", 2)
	}
	if detected := entity.DetectMediaKind(mediaPath); detected != kind {
		return cli.Exit(fmt.Sprintf("%s looks like a %s, not a %s", mediaPath, detected, kind), 2)
	}

	dirs := usecase.Dirs{
		Masks:        cmd.String("masks-dir"),
		Combinations: cmd.String("combinations-dir"),
	}
	if kind == entity.MediaKindVideo {
		dirs.Frames = cmd.String("frames-dir")
	}

	// Tracing is best effort: a missing collector never blocks a run.
	if cfg.OTLPEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(ctx)
		}
	}

	if cfg.MetricsPort > 0 {
		srv := metrics.Serve(cfg.MetricsPort, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	samClient := sam.NewClient(sam.ClientConfig{
		BaseURL: cfg.SAMURL,
		Device:  cfg.SAMDevice,
		Timeout: time.Duration(cfg.SAMTimeout) * time.Second,
	}, log)
	renderer := opencv.NewRenderer(opencv.RendererConfig{
		PixelationFactor: cfg.PixelationFactor,
		WebpQuality:      cfg.WebpQuality,
	}, log)
	prompts := prompt.NewTerminalSource(os.Stdin, os.Stdout)

	run := entity.NewRun(kind, mediaPath, keywords)
	log.Info("starting run",
		zap.String("run_id", run.ID.String()),
		zap.String("kind", string(kind)),
		zap.String("media", mediaPath),
		zap.Strings("keywords", keywords),
	)

	var (
		report *usecase.Report
		err    error
	)
	switch kind {
	case entity.MediaKindImage:
		uc := usecase.NewSegmentImageUseCase(
			samClient, prompts, renderer, renderer, renderer,
			log, dirs, cfg.RenderWorkers,
		)
		report, err = uc.Execute(ctx, run)
	case entity.MediaKindVideo:
		uc := usecase.NewSegmentVideoUseCase(
			samClient, prompts, opencv.NewExtractor(log), renderer, renderer,
			log, dirs, cfg.RenderWorkers,
		)
		report, err = uc.Execute(ctx, run)
	}
	if err != nil {
		var loadErr *entity.MediaLoadError
		if errors.As(err, &loadErr) || errors.Is(err, usecase.ErrNoArtifacts) {
			return cli.Exit(err.Error(), 1)
		}
		return err
	}

	printReport(report)
	return nil
}

func printReport(report *usecase.Report) {
	fmt.Printf("\nGenerated %d of %d combinations:\n", report.Written, report.Expected)

	names := make([]string, 0, len(report.Artifacts))
	for name := range report.Artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s -> %s\n", name, report.Artifacts[name])
	}
}
