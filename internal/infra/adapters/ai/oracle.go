package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/adapter"
	"ai-tutor-backend/internal/infra/metrics"
)

var (
	_ adapter.TutoringOracle = (*Oracle)(nil)
	_ adapter.Provider       = (*Oracle)(nil)
)

type OracleOptions struct {
	DefaultModel    string
	GuideModel      string
	MaxOutputTokens int
}

// Oracle implements the tutoring operations on top of a Completer: it renders
// the prompt, calls the model and decodes the reply.
type Oracle struct {
	c    Completer
	opts OracleOptions
	log  *zerolog.Logger
}

func NewOracle(c Completer, opts OracleOptions, log *zerolog.Logger) *Oracle {
	if opts.GuideModel == "" {
		opts.GuideModel = opts.DefaultModel
	}
	return &Oracle{c: c, opts: opts, log: log}
}

func (o *Oracle) ProviderName() string { return o.c.Name() }
func (o *Oracle) ModelName() string    { return o.opts.DefaultModel }

func (o *Oracle) Guide(ctx context.Context, exercise string) (string, error) {
	prompt, err := render(guideTmpl, struct{ Exercise string }{exercise})
	if err != nil {
		return "", err
	}
	reply, err := o.call(ctx, Request{Model: o.opts.GuideModel, System: prompt})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (o *Oracle) Check(ctx context.Context, exercise, answer string) (*model.CheckResult, error) {
	prompt, err := render(checkTmpl, struct{ Exercise, Answer string }{exercise, answer})
	if err != nil {
		return nil, err
	}
	reply, err := o.call(ctx, Request{Model: o.opts.DefaultModel, Prompt: prompt, JSON: true})
	if err != nil {
		return nil, err
	}
	return decodeCheck(reply)
}

func (o *Oracle) Similar(ctx context.Context, exercise string) (string, error) {
	prompt, err := render(similarTmpl, struct{ Exercise string }{exercise})
	if err != nil {
		return "", err
	}
	reply, err := o.call(ctx, Request{Model: o.opts.DefaultModel, Prompt: prompt, JSON: true})
	if err != nil {
		return "", err
	}
	return decodeSimilar(reply)
}

func (o *Oracle) Plan(ctx context.Context, profile model.Profile, target string) (*model.Roadmap, error) {
	prompt, err := render(roadmapTmpl, newRoadmapPromptData(profile, target))
	if err != nil {
		return nil, err
	}
	reply, err := o.call(ctx, Request{Model: o.opts.DefaultModel, Prompt: prompt, JSON: true})
	if err != nil {
		return nil, err
	}
	rm, err := decodeRoadmap(reply)
	if err != nil {
		o.log.Warn().Err(err).Int("reply_len", len(reply)).Msg("roadmap reply rejected")
		return nil, err
	}
	return rm, nil
}

func (o *Oracle) call(ctx context.Context, req Request) (string, error) {
	req.MaxTokens = o.opts.MaxOutputTokens
	reply, usage, err := o.c.Complete(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrOracleUnavailable, ctx.Err())
		}
		return "", err
	}
	metrics.ObserveTokenUsage(o.c.Name(), req.Model, usage.PromptTokens, usage.CompletionTokens)
	return reply, nil
}
