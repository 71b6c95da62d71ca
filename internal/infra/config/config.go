package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	SAMURL     string `env:"SAM_URL"         envDefault:"http://localhost:7332"`
	SAMDevice  string `env:"SAM_DEVICE"      envDefault:"cuda"`
	SAMTimeout int    `env:"SAM_TIMEOUT_SEC" envDefault:"120"`

	PixelationFactor int `env:"PIXELATION_FACTOR" envDefault:"20"`
	WebpQuality      int `env:"WEBP_QUALITY"      envDefault:"90"`
	RenderWorkers    int `env:"RENDER_WORKERS"    envDefault:"1"`

	MasksDir        string `env:"MASKS_DIR"        envDefault:"masked_images"`
	CombinationsDir string `env:"COMBINATIONS_DIR" envDefault:"blurry_combinations"`
	FramesDir       string `env:"FRAMES_DIR"       envDefault:"video_frames"`

	MetricsPort  int    `env:"METRICS_PORT"  envDefault:"0"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT" envDefault:""`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.PixelationFactor < 2 {
		return nil, fmt.Errorf("PIXELATION_FACTOR must be at least 2, got %d", cfg.PixelationFactor)
	}
	if cfg.RenderWorkers < 1 {
		return nil, fmt.Errorf("RENDER_WORKERS must be at least 1, got %d", cfg.RenderWorkers)
	}
	return cfg, nil
}
