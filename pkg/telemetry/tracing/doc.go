// Package tracing provides OpenTelemetry tracing for evaluations.
//
// When telemetry.tracing.enabled is set, New builds an SDK tracer provider
// with a parent-based sampler and an OTLP gRPC exporter, and installs it
// globally together with the W3C trace context propagator. Otherwise every
// span is a noop.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(ctx)
//
//	ctx, span := tracer.Start(ctx, "calc.evaluate")
//	defer span.End()
package tracing
