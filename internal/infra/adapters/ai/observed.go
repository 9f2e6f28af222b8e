package ai

import (
	"context"
	"time"

	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/adapter"
	"ai-tutor-backend/internal/infra/metrics"
)

var _ adapter.TutoringOracle = (*observedOracle)(nil)

// observedOracle records latency and outcome of every oracle operation.
type observedOracle struct {
	inner    adapter.TutoringOracle
	provider string
}

func NewObservedOracle(inner adapter.TutoringOracle, provider string) adapter.TutoringOracle {
	return &observedOracle{inner: inner, provider: provider}
}

func (o *observedOracle) observe(op string, start time.Time, err error) {
	metrics.ObserveOracleCall(o.provider, op, time.Since(start).Milliseconds(), err == nil)
}

func (o *observedOracle) Guide(ctx context.Context, exercise string) (s string, err error) {
	defer func(start time.Time) { o.observe("guide", start, err) }(time.Now())
	return o.inner.Guide(ctx, exercise)
}

func (o *observedOracle) Check(ctx context.Context, exercise, answer string) (r *model.CheckResult, err error) {
	defer func(start time.Time) { o.observe("check", start, err) }(time.Now())
	return o.inner.Check(ctx, exercise, answer)
}

func (o *observedOracle) Similar(ctx context.Context, exercise string) (s string, err error) {
	defer func(start time.Time) { o.observe("similar", start, err) }(time.Now())
	return o.inner.Similar(ctx, exercise)
}

func (o *observedOracle) Plan(ctx context.Context, profile model.Profile, target string) (r *model.Roadmap, err error) {
	defer func(start time.Time) { o.observe("plan", start, err) }(time.Now())
	return o.inner.Plan(ctx, profile, target)
}
