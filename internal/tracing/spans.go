package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys for catalog tracing.
const (
	// Slot store attributes
	AttrSlotKey     = "slot.key"
	AttrSlotBytes   = "slot.bytes"
	AttrSlotFound   = "slot.found"
	AttrSlotBackend = "slot.backend"

	// Registry attributes
	AttrEntityKind   = "entity.kind"
	AttrEntityCount  = "entity.count"
	AttrEntitySkips  = "entity.skipped"
	AttrEntityNextID = "entity.next_id"

	// Error attributes
	AttrErrorMessage = "error.message"
)

// Span name prefixes for consistent naming.
const (
	SpanPrefixSlot     = "slot."
	SpanPrefixRegistry = "registry."
	SpanPrefixCatalog  = "catalog."
)

// Start opens a span on the globally installed tracer. With tracing disabled
// the global tracer is a no-op and the span costs nothing.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(DefaultServiceName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
