// Package otel holds the span helpers and attribute keys of a badge sync run.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Run keys go on the root span, page keys on every fetch span and artifact
// keys on every render span.
const (
	AttrRunID      = attribute.Key("badge_sync.run.id")
	AttrStopReason = attribute.Key("badge_sync.run.stop_reason")
	AttrPreviousTS = attribute.Key("badge_sync.run.previous_ts")
	AttrNewTS      = attribute.Key("badge_sync.run.new_ts")

	AttrPage        = attribute.Key("badge_sync.page.number")
	AttrPageSize    = attribute.Key("badge_sync.page.size")
	AttrResultCount = attribute.Key("badge_sync.page.records")

	AttrArtifact        = attribute.Key("maven.coordinate")
	AttrArtifactVersion = attribute.Key("maven.version")
)

// StartSpan starts a child span. With a nil tracer it returns ctx unchanged
// together with whatever span ctx already carries.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError marks span as failed and tags it with the Go type of err.
// The status description stays generic; file paths and registry responses
// only reach the exception event.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(semconv.ErrorTypeKey.String(fmt.Sprintf("%T", err)))
	span.SetStatus(codes.Error, "operation failed")
}
