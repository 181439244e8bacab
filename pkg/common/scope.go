package common

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	traceIDLogField = "traceID"
	tracerName      = "retention-service"
)

// Scope combines a trace span with a trace-scoped logger. Handlers open a
// scope per request so every log line and span carries the same trace id.
type Scope struct {
	Ctx     context.Context
	TraceID string
	Log     *log.Entry
	span    oteltrace.Span
}

// NewScope starts a span under the caller's context and returns a scope
// wrapping it.
func NewScope(ctx context.Context, name string) *Scope {
	tracer := otel.Tracer(tracerName)
	tracerCtx, span := tracer.Start(ctx, name)
	traceID := span.SpanContext().TraceID().String()

	return &Scope{
		Ctx:     tracerCtx,
		TraceID: traceID,
		span:    span,
		Log:     log.WithField(traceIDLogField, traceID),
	}
}

// Finish ends the scope's span.
func (s *Scope) Finish() {
	s.span.End()
}

// TraceEvent records a human-readable event on the span.
func (s *Scope) TraceEvent(eventMessage string) {
	s.span.AddEvent(eventMessage)
}

// TraceError records an error and sets the span status.
func (s *Scope) TraceError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// AddBaggage adds a string attribute to the span.
func (s *Scope) AddBaggage(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

// NewChildScope creates a child scope under this one.
func (s *Scope) NewChildScope(name string) *Scope {
	tracer := s.span.TracerProvider().Tracer(tracerName)
	ctx, span := tracer.Start(s.Ctx, name)

	return &Scope{
		Ctx:     ctx,
		TraceID: s.TraceID,
		span:    span,
		Log:     log.WithField(traceIDLogField, s.TraceID),
	}
}
