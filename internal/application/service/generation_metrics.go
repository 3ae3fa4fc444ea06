package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	generationMeterName = "javadocgen/generation"

	metricGenerationRequests = "javadocgen_generation_requests_total"
	metricGenerationDuration = "javadocgen_generation_duration_seconds"

	attrOutcome = "outcome"
	attrKind    = "kind"

	outcomeSuccess = "success"
)

// GenerationMetrics records per-request generation outcomes.
// A nil *GenerationMetrics is valid and records nothing.
type GenerationMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewGenerationMetrics creates the generation instruments on the global meter provider.
func NewGenerationMetrics() (*GenerationMetrics, error) {
	return NewGenerationMetricsWithMeter(otel.Meter(generationMeterName))
}

// NewGenerationMetricsWithMeter creates the generation instruments on meter.
func NewGenerationMetricsWithMeter(meter metric.Meter) (*GenerationMetrics, error) {
	requests, err := meter.Int64Counter(
		metricGenerationRequests,
		metric.WithDescription("Total number of comment generation requests by outcome"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		metricGenerationDuration,
		metric.WithDescription("Duration of comment generation requests"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return nil, err
	}

	return &GenerationMetrics{requests: requests, duration: duration}, nil
}

// RecordRequest records one finished request. outcome is "success" or a skip reason.
func (m *GenerationMetrics) RecordRequest(ctx context.Context, kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrOutcome, outcome),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, duration.Seconds(), attrs)
}
