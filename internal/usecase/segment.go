package usecase

import (
	"errors"
	"fmt"
	"os"
)

// Dirs are the output locations of a run.
type Dirs struct {
	Masks        string
	Combinations string
	Frames       string
}

// ErrNoArtifacts is returned when a run completes without writing a
// single combination artifact. The CLI exits non-zero on it.
var ErrNoArtifacts = errors.New("zero combination artifacts were written")

func ensureDirs(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(p, 0755); err != nil {
			return fmt.Errorf("create output dir %s: %w", p, err)
		}
	}
	return nil
}

func maskFileName(keyword string) string {
	return keyword + "_mask.png"
}
