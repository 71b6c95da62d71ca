package port

import (
	"context"

	"github.com/pangeans/unprompted/internal/domain/entity"
)

// PromptSource yields the user signals that drive one mask acquisition
// session. Next blocks until the next point, accept, reset, or abandon
// signal is available; it is the only blocking point in the core.
type PromptSource interface {
	Next(ctx context.Context, keyword string) (entity.Prompt, error)
}
