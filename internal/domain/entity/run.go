package entity

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusPending    RunStatus = "PENDING"
	RunStatusAcquiring  RunStatus = "ACQUIRING"
	RunStatusGenerating RunStatus = "GENERATING"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
)

// Run is one segmentation-and-pixelation run over a single media item.
type Run struct {
	ID        uuid.UUID
	Kind      MediaKind
	MediaPath string
	Keywords  []string
	Status    RunStatus

	AcceptedMasks     int
	FrameCount        int
	FPS               float64
	ExpectedArtifacts int
	WrittenArtifacts  int

	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewRun(kind MediaKind, mediaPath string, keywords []string) *Run {
	now := time.Now().UTC()
	return &Run{
		ID:        uuid.New(),
		Kind:      kind,
		MediaPath: mediaPath,
		Keywords:  keywords,
		Status:    RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Run) MarkAcquiring() {
	r.Status = RunStatusAcquiring
	r.UpdatedAt = time.Now().UTC()
}

func (r *Run) MarkGenerating(acceptedMasks int) {
	r.Status = RunStatusGenerating
	r.AcceptedMasks = acceptedMasks
	r.ExpectedArtifacts = 1 << acceptedMasks
	r.UpdatedAt = time.Now().UTC()
}

func (r *Run) MarkCompleted(written int) {
	now := time.Now().UTC()
	r.Status = RunStatusCompleted
	r.WrittenArtifacts = written
	r.UpdatedAt = now
	r.CompletedAt = &now
}

func (r *Run) MarkFailed(errMsg string) {
	r.Status = RunStatusFailed
	r.ErrorMessage = errMsg
	r.UpdatedAt = time.Now().UTC()
}
