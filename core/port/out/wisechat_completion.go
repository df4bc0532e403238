package out

import (
	"context"

	"wisechat_server/core/domain"
)

// CompletionProvider is the optional remote classifier + reply generator.
type CompletionProvider interface {
	// IsAvailable is evaluated on every call, not cached.
	IsAvailable() bool
	// Complete returns a normalized result with a non-empty reply or an error.
	Complete(ctx context.Context, text string) (*domain.ClassificationResult, error)
}
