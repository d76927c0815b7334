package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "editflow.app/server"

// Metrics holds the instruments recorded by the editor and the worker. All
// fields are safe for concurrent use.
type Metrics struct {
	Submissions     metric.Int64Counter
	Corrections     metric.Int64Counter
	ReconcileMisses metric.Int64Counter
	TokensDebited   metric.Int64Counter
	CheckerDuration metric.Float64Histogram
	EventsProcessed metric.Int64Counter
	ActiveSessions  metric.Int64UpDownCounter
}

var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates the instruments on mp. Tests pass a provider with a
// manual reader; binaries pass the global one.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Submissions, err = m.Int64Counter("editflow.editor.submissions",
		metric.WithDescription("Texts submitted for correction."),
	); err != nil {
		return nil, err
	}
	if met.Corrections, err = m.Int64Counter("editflow.editor.corrections",
		metric.WithDescription("Reviewed corrections by outcome."),
	); err != nil {
		return nil, err
	}
	if met.ReconcileMisses, err = m.Int64Counter("editflow.editor.reconcile_misses",
		metric.WithDescription("Error spans discarded because they could not be located."),
	); err != nil {
		return nil, err
	}
	if met.TokensDebited, err = m.Int64Counter("editflow.tokens.debited",
		metric.WithDescription("Tokens debited by action."),
	); err != nil {
		return nil, err
	}
	if met.CheckerDuration, err = m.Float64Histogram("editflow.checker.duration",
		metric.WithDescription("Latency of grammar and style service calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EventsProcessed, err = m.Int64Counter("editflow.worker.events",
		metric.WithDescription("Stream events processed by type and status."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("editflow.editor.active_sessions",
		metric.WithDescription("Editing sessions opened and not yet closed by this process."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// DefaultMetrics builds the instruments on the global meter provider. It
// falls back to a no-op set if instrument creation fails.
func DefaultMetrics() *Metrics {
	m, err := NewMetrics(otel.GetMeterProvider())
	if err != nil {
		m, _ = NewMetrics(noop.NewMeterProvider())
	}
	return m
}

func (m *Metrics) RecordCorrection(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.Corrections.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordDebit(ctx context.Context, action string, amount int) {
	if m == nil || amount <= 0 {
		return
	}
	m.TokensDebited.Add(ctx, int64(amount), metric.WithAttributes(attribute.String("action", action)))
}

func (m *Metrics) RecordChecker(ctx context.Context, op string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CheckerDuration.Record(ctx, time.Since(started).Seconds(), metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordEvent(ctx context.Context, eventType string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EventsProcessed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("status", status),
	))
}

// RecordSubmission counts one reconciled submission and the spans it had to
// discard.
func (m *Metrics) RecordSubmission(ctx context.Context, discarded int) {
	if m == nil {
		return
	}
	m.Submissions.Add(ctx, 1)
	if discarded > 0 {
		m.ReconcileMisses.Add(ctx, int64(discarded))
	}
}

func (m *Metrics) SessionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, 1)
}

func (m *Metrics) SessionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, -1)
}
