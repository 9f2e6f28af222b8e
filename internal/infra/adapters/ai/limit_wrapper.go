package ai

import (
	"context"
	"fmt"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/adapter"
	"ai-tutor-backend/internal/infra/metrics"
)

// Compile-time check
var _ adapter.TutoringOracle = (*limitedOracle)(nil)

// limitedOracle caps concurrent oracle calls. Waiting for a slot honours ctx.
type limitedOracle struct {
	inner adapter.TutoringOracle
	sem   chan struct{}
}

func NewLimitedOracle(inner adapter.TutoringOracle, maxConcurrent int) adapter.TutoringOracle {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedOracle{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedOracle) acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		metrics.IncOracleInFlight()
		return func() {
			metrics.DecOracleInFlight()
			<-l.sem
		}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for a slot: %w", domain.ErrOracleUnavailable, ctx.Err())
	}
}

func (l *limitedOracle) Guide(ctx context.Context, exercise string) (string, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()
	return l.inner.Guide(ctx, exercise)
}

func (l *limitedOracle) Check(ctx context.Context, exercise, answer string) (*model.CheckResult, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.inner.Check(ctx, exercise, answer)
}

func (l *limitedOracle) Similar(ctx context.Context, exercise string) (string, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()
	return l.inner.Similar(ctx, exercise)
}

func (l *limitedOracle) Plan(ctx context.Context, profile model.Profile, target string) (*model.Roadmap, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.inner.Plan(ctx, profile, target)
}
