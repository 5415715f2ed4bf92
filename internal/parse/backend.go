package parse

import (
	"context"
	"time"

	"github.com/habitcards/assistant/internal/backend"
	"github.com/habitcards/assistant/internal/models"
)

// TierBackend names the primary remote tier.
const TierBackend = "backend"

// BackendTimeout bounds one primary-tier attempt.
const BackendTimeout = 15 * time.Second

// BackendTier asks the configured assistant backend to parse the transcript.
// It is skipped entirely when no backend endpoint is configured.
type BackendTier struct {
	client *backend.Client
}

// NewBackendTier creates the primary remote tier.
func NewBackendTier(client *backend.Client) *BackendTier {
	return &BackendTier{client: client}
}

func (t *BackendTier) Name() string { return TierBackend }

// Skip reports whether the tier should be skipped outright.
func (t *BackendTier) Skip() bool { return t.client == nil || !t.client.Configured() }

func (t *BackendTier) Parse(ctx context.Context, mode models.Mode, text string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, BackendTimeout)
	defer cancel()

	body, err := t.client.Parse(ctx, mode, text)
	if err != nil {
		return nil, err
	}
	return Decode(mode, body)
}
