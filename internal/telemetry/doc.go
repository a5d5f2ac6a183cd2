// Package telemetry configures OpenTelemetry for issuepilot runs.
//
// A run creates one Telemetry instance, which installs the tracer and meter
// providers as the process-wide defaults so that instruments created at
// package init time resolve against the real exporters:
//
//	tel, err := telemetry.New(ctx, telemetry.FromEnv())
//	if err != nil {
//		return err
//	}
//	defer tel.Shutdown(ctx)
//
// Telemetry is disabled by default. Set ISSUEPILOT_TELEMETRY_ENABLED=true
// and point OTEL_EXPORTER_OTLP_ENDPOINT at a collector to turn it on.
// Exporter failures degrade to no-op providers instead of failing the run.
//
// Tests use TestTelemetry, which records spans and metrics in memory:
//
//	tt := telemetry.NewTestTelemetry()
//	_, span := tt.Tracer("test").Start(ctx, "triage")
//	span.End()
//	tt.AssertSpanExists(t, "triage")
package telemetry
