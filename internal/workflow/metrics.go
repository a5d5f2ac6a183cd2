package workflow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/fyrsmithlabs/issuepilot/internal/workflow"

// Pipeline metrics
var (
	runCounter         metric.Int64Counter
	runDuration        metric.Float64Histogram
	stageCounter       metric.Int64Counter
	reviewCycleCounter metric.Int64Counter
	verdictCounter     metric.Int64Counter
	capabilityDuration metric.Float64Histogram
	capabilityErrorCtr metric.Int64Counter
)

// initMetrics initializes OpenTelemetry metrics for the pipeline.
// This is called once during package initialization.
func initMetrics() {
	meter := otel.Meter(instrumentationName)

	var err error

	runCounter, err = meter.Int64Counter(
		"issuepilot.workflow.runs",
		metric.WithDescription("Total number of issue-resolution runs by terminal stage"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create run counter: %v", err))
	}

	runDuration, err = meter.Float64Histogram(
		"issuepilot.workflow.run.duration",
		metric.WithDescription("Duration of issue-resolution runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create run duration: %v", err))
	}

	stageCounter, err = meter.Int64Counter(
		"issuepilot.workflow.stages",
		metric.WithDescription("Pipeline stages completed"),
		metric.WithUnit("{stage}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create stage counter: %v", err))
	}

	reviewCycleCounter, err = meter.Int64Counter(
		"issuepilot.workflow.review.cycles",
		metric.WithDescription("Review cycles executed"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create review cycle counter: %v", err))
	}

	verdictCounter, err = meter.Int64Counter(
		"issuepilot.workflow.review.verdicts",
		metric.WithDescription("Reviewer verdicts by outcome"),
		metric.WithUnit("{verdict}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create verdict counter: %v", err))
	}

	capabilityDuration, err = meter.Float64Histogram(
		"issuepilot.workflow.capability.duration",
		metric.WithDescription("Duration of capability invocations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create capability duration: %v", err))
	}

	capabilityErrorCtr, err = meter.Int64Counter(
		"issuepilot.workflow.capability.errors",
		metric.WithDescription("Capability invocation errors by failure kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create capability error counter: %v", err))
	}
}

func init() {
	initMetrics()
}

func recordRun(ctx context.Context, terminal Stage, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("stage", string(terminal)))
	runCounter.Add(ctx, 1, attrs)
	runDuration.Record(ctx, seconds, attrs)
}

func recordStage(ctx context.Context, stage Stage) {
	stageCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", string(stage))))
}

func recordReviewCycle(ctx context.Context, cycle int) {
	reviewCycleCounter.Add(ctx, 1, metric.WithAttributes(attribute.Int("cycle", cycle)))
}

func recordVerdict(ctx context.Context, reviewer string, outcome VerdictOutcome) {
	verdictCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reviewer", reviewer),
		attribute.String("outcome", string(outcome)),
	))
}

func recordCapability(ctx context.Context, name string, seconds float64, err error) {
	attrs := metric.WithAttributes(attribute.String("capability", name))
	capabilityDuration.Record(ctx, seconds, attrs)
	if err != nil {
		capabilityErrorCtr.Add(ctx, 1, metric.WithAttributes(
			attribute.String("capability", name),
			attribute.String("kind", string(KindOf(err))),
		))
	}
}
