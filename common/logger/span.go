package logger

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "editflow.app/server"

// Span is a started span together with the context that carries it.
type Span struct {
	ctx  context.Context
	span trace.Span
}

// StartSpan starts a child of whatever span ctx carries.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) *Span {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, opts...)
	return &Span{ctx: ctx, span: span}
}

// StartSpanFromTraceID continues a trace that crossed the redis stream. The
// producer stored the hex trace id on the event; anything else (empty, or a
// caller-supplied request id) starts a fresh root span.
func StartSpanFromTraceID(ctx context.Context, traceIDHex, name string, opts ...trace.SpanStartOption) *Span {
	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if err != nil {
		return StartSpan(ctx, name, opts...)
	}

	remote := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	opts = append(opts, trace.WithLinks(trace.Link{SpanContext: remote}))
	return StartSpan(trace.ContextWithRemoteSpanContext(ctx, remote), name, opts...)
}

func (s *Span) Context() context.Context {
	return s.ctx
}

// End finishes the span, marking it failed when err is non-nil.
func (s *Span) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}
