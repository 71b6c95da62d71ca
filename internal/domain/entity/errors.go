package entity

import "fmt"

// MediaLoadError means the source media is missing, unreadable, or a
// video produced zero frames. It is the only fatal error class: it aborts
// the run before acquisition begins.
type MediaLoadError struct {
	Path string
	Err  error
}

func (e *MediaLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load media %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("load media %s", e.Path)
}

func (e *MediaLoadError) Unwrap() error { return e.Err }

// SegmentationError means the segmentation adapter failed for a keyword's
// point set. The keyword is abandoned and acquisition continues.
type SegmentationError struct {
	Keyword string
	Err     error
}

func (e *SegmentationError) Error() string {
	return fmt.Sprintf("segment keyword %q: %v", e.Keyword, e.Err)
}

func (e *SegmentationError) Unwrap() error { return e.Err }

// PropagationError means video propagation failed after a mask was
// accepted. The keyword is treated as abandoned retroactively.
type PropagationError struct {
	Keyword string
	Err     error
}

func (e *PropagationError) Error() string {
	return fmt.Sprintf("propagate keyword %q: %v", e.Keyword, e.Err)
}

func (e *PropagationError) Unwrap() error { return e.Err }

// FrameReadError means one extracted frame file could not be read during
// combination generation. The frame is skipped with a warning.
type FrameReadError struct {
	Path       string
	FrameIndex int
}

func (e *FrameReadError) Error() string {
	return fmt.Sprintf("read frame %d (%s)", e.FrameIndex, e.Path)
}

// EncodingError means every codec fallback candidate failed for one
// combination's video artifact. Only that artifact is skipped.
type EncodingError struct {
	Key string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode combination %q: %v", e.Key, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
