package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// spanPrinter writes one line per finished model request span.
type spanPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *spanPrinter) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *spanPrinter) OnEnd(span sdktrace.ReadOnlySpan) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := "ok"
	if span.Status().Code == codes.Error {
		status = "error: " + span.Status().Description
	}
	elapsed := span.EndTime().Sub(span.StartTime()).Round(time.Millisecond)

	extra := ""
	attrs := span.Attributes()
	if attributeValue(attrs, "ai.cache_hit").AsBool() {
		extra = " (cached)"
	} else if n := attributeValue(attrs, "ai.attempts").AsInt64(); n > 1 {
		extra = fmt.Sprintf(" (%d attempts)", n)
	}
	fmt.Fprintf(p.out, "  [trace] %s %s%s %s\n", span.Name(), elapsed, extra, status)
}

func (p *spanPrinter) Shutdown(context.Context) error   { return nil }
func (p *spanPrinter) ForceFlush(context.Context) error { return nil }

func attributeValue(attrs []attribute.KeyValue, key string) attribute.Value {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value
		}
	}
	return attribute.Value{}
}

// traceOutput owns a tracer provider whose spans are printed to out.
type traceOutput struct {
	provider *sdktrace.TracerProvider
}

func newTraceOutput(out io.Writer) *traceOutput {
	return &traceOutput{
		provider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&spanPrinter{out: out})),
	}
}

// Tracer returns a tracer, or nil when tracing is off.
func (o *traceOutput) Tracer(name string) trace.Tracer {
	if o == nil {
		return nil
	}
	return o.provider.Tracer(name)
}

func (o *traceOutput) Close() {
	if o == nil {
		return
	}
	_ = o.provider.Shutdown(context.Background())
}
