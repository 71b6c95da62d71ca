package opencv

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// codecCandidate is one (fourcc, container) pair of the fallback chain.
type codecCandidate struct {
	Codec string
	Ext   string
}

// defaultCandidates is tried in order: H.264 in MP4, then the baseline
// MP4 codec, then XVID in AVI as a legacy last resort.
var defaultCandidates = []codecCandidate{
	{Codec: "avc1", Ext: ".mp4"},
	{Codec: "mp4v", Ext: ".mp4"},
	{Codec: "XVID", Ext: ".avi"},
}

type Encoder struct {
	candidates []codecCandidate
	logger     *zap.Logger
}

func NewEncoder(logger *zap.Logger) *Encoder {
	return &Encoder{candidates: defaultCandidates, logger: logger}
}

func newEncoderWithCandidates(logger *zap.Logger, candidates []codecCandidate) *Encoder {
	return &Encoder{candidates: candidates, logger: logger}
}

// Encode writes frames to stem plus the container extension of the first
// codec candidate that opens, writes every frame, and leaves a non-empty
// file on disk. The error covers all candidates failing; callers decide
// whether that aborts more than the one artifact.
func (e *Encoder) Encode(stem string, frames []gocv.Mat, fps float64) (string, error) {
	if len(frames) == 0 {
		return "", errors.New("no frames to encode")
	}

	width, height := frames[0].Cols(), frames[0].Rows()

	var lastErr error
	for _, cand := range e.candidates {
		outPath := stem + cand.Ext

		writtenPath, err := e.tryCandidate(outPath, cand, frames, fps, width, height)
		if err != nil {
			lastErr = err
			e.logger.Warn("codec candidate failed",
				zap.String("codec", cand.Codec),
				zap.String("path", outPath),
				zap.Error(err),
			)
			continue
		}

		e.logger.Info("encoded video",
			zap.String("codec", cand.Codec),
			zap.String("path", writtenPath),
			zap.Int("frames", len(frames)),
			zap.Float64("fps", fps),
		)
		return writtenPath, nil
	}

	return "", fmt.Errorf("all codec candidates failed: %w", lastErr)
}

func (e *Encoder) tryCandidate(outPath string, cand codecCandidate, frames []gocv.Mat, fps float64, width, height int) (string, error) {
	writer, err := gocv.VideoWriterFile(outPath, cand.Codec, fps, width, height, true)
	if err != nil {
		return "", fmt.Errorf("open writer: %w", err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return "", fmt.Errorf("writer did not open for codec %s", cand.Codec)
	}

	writeErr := func() error {
		defer writer.Close()
		for i := range frames {
			if err := writer.Write(frames[i]); err != nil {
				return fmt.Errorf("write frame %d: %w", i, err)
			}
		}
		return nil
	}()
	if writeErr != nil {
		return "", writeErr
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return "", fmt.Errorf("verify output: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("codec %s produced an empty file", cand.Codec)
	}
	return outPath, nil
}
