package parse

import (
	"context"

	"github.com/habitcards/assistant/internal/models"
	"github.com/habitcards/assistant/internal/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Tier is one ranked parsing strategy. Each tier bounds its own attempt; the
// resolver never races tiers concurrently.
type Tier interface {
	Name() string
	Parse(ctx context.Context, mode models.Mode, text string) (Result, error)
}

// skippable lets a tier opt out entirely, e.g. the backend tier when no
// endpoint is configured.
type skippable interface {
	Skip() bool
}

// Resolver runs tiers strictly in order and returns the first success along
// with the producing tier's name. Tier failures fall through silently; they
// are logged but never surfaced, because the local tier cannot fail.
type Resolver struct {
	tiers  []Tier
	logger *zap.Logger
	tracer trace.Tracer
}

// NewResolver creates a resolver over the given tiers, tried in argument order.
func NewResolver(logger *zap.Logger, tiers ...Tier) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		tiers:  tiers,
		logger: logger,
		tracer: otel.Tracer("parse"),
	}
}

// Resolve produces exactly one structured result for the transcript. The
// returned tier name identifies the producing tier; it is observability data,
// not required for correctness.
func (r *Resolver) Resolve(ctx context.Context, mode models.Mode, text string) (Result, string) {
	text = validation.SanitizeTranscript(text)

	for _, tier := range r.tiers {
		if s, ok := tier.(skippable); ok && s.Skip() {
			r.logger.Debug("parse_tier_skipped",
				zap.String("tier", tier.Name()),
				zap.String("mode", mode.String()),
			)
			continue
		}

		tierCtx, span := r.tracer.Start(ctx, "parse.tier",
			trace.WithAttributes(
				attribute.String("tier", tier.Name()),
				attribute.String("mode", mode.String()),
			),
		)
		result, err := tier.Parse(tierCtx, mode, text)
		span.End()

		if err != nil {
			r.logger.Warn("parse_tier_failed",
				zap.String("tier", tier.Name()),
				zap.String("mode", mode.String()),
				zap.Error(err),
			)
			continue
		}

		r.logger.Info("parse_resolved",
			zap.String("tier", tier.Name()),
			zap.String("mode", mode.String()),
		)
		return result, tier.Name()
	}

	// Unreachable when the tier list ends with LocalTier. Kept total so a
	// misconfigured resolver still honors the always-terminates contract.
	return Fixture(mode), TierLocal
}
