// Package checker talks to the external grammar-correction and
// style-transform services.
package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"editflow.app/server/common/llm"
	"editflow.app/server/common/logger"
	"editflow.app/server/common/otel"
	"editflow.app/server/core/config"
	"editflow.app/server/internal/editor"
)

// ErrUpstream is returned when a correction or style service call fails at
// the transport level, answers with a non-2xx status or sends a body that
// cannot be decoded.
var ErrUpstream = errors.New("upstream service error")

// Checker is the contract the editor relies on. Check returns error spans in
// the order the service produced them.
type Checker interface {
	Check(ctx context.Context, text string) ([]editor.ErrorSpan, error)
	Transform(ctx context.Context, text string) (string, error)
}

// New builds the checker selected by cfg.Checker.Provider.
func New(cfg config.Config) (Checker, error) {
	switch cfg.Checker.Provider {
	case config.CheckerProviderHTTP, "":
		return NewHTTPChecker(HTTPConfig{
			BaseURL:  cfg.Checker.BaseURL,
			Timeout:  cfg.Checker.Timeout,
			RetryMax: cfg.Checker.RetryMax,
		})
	case config.CheckerProviderOpenAI:
		client, err := llm.New(llm.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.Model,
			MaxRetries: cfg.Checker.RetryMax,
		})
		if err != nil {
			return nil, fmt.Errorf("creating llm client: %w", err)
		}
		return NewLLMChecker(client), nil
	default:
		return nil, fmt.Errorf("unknown checker provider %q", cfg.Checker.Provider)
	}
}

type instrumented struct {
	next    Checker
	metrics *otel.Metrics
}

// WithMetrics records the latency and outcome of every call.
func WithMetrics(next Checker, metrics *otel.Metrics) Checker {
	if metrics == nil {
		return next
	}
	return &instrumented{next: next, metrics: metrics}
}

func (c *instrumented) Check(ctx context.Context, text string) ([]editor.ErrorSpan, error) {
	span := logger.StartSpan(ctx, "checker.check", trace.WithSpanKind(trace.SpanKindClient))
	start := time.Now()
	spans, err := c.next.Check(span.Context(), text)
	c.metrics.RecordChecker(ctx, "check", start, err)
	span.End(err)
	return spans, err
}

func (c *instrumented) Transform(ctx context.Context, text string) (string, error) {
	span := logger.StartSpan(ctx, "checker.transform", trace.WithSpanKind(trace.SpanKindClient))
	start := time.Now()
	out, err := c.next.Transform(span.Context(), text)
	c.metrics.RecordChecker(ctx, "transform", start, err)
	span.End(err)
	return out, err
}
