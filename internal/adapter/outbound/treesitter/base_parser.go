package treesitter

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ParserConfig holds configuration for the tree-sitter parser.
type ParserConfig struct {
	MaxSourceSize  int64         // Maximum source code size in bytes
	DefaultTimeout time.Duration // Parse timeout applied when ctx has no earlier deadline
	EnableMetrics  bool          // Enable OTEL metrics
}

// DefaultParserConfig returns the default parser configuration.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		MaxSourceSize:  DefaultMaxSourceSize,
		DefaultTimeout: DefaultParserTimeout,
		EnableMetrics:  true,
	}
}

func (c ParserConfig) withDefaults() ParserConfig {
	if c.MaxSourceSize <= 0 {
		c.MaxSourceSize = DefaultMaxSourceSize
	}
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = DefaultParserTimeout
	}
	return c
}

// ParserMetrics holds OTEL metrics for parser operations.
type ParserMetrics struct {
	parseOperationsTotal   metric.Int64Counter
	parseDurationHistogram metric.Float64Histogram
	syntaxErrorsTotal      metric.Int64Counter
}

func initParserMetrics() (*ParserMetrics, error) {
	meter := otel.Meter("javadocgen/treesitter_parser")

	parseOpsTotal, err := meter.Int64Counter(
		"javadocgen_parse_operations_total",
		metric.WithDescription("Total number of tree-sitter parse operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse operations counter: %w", err)
	}

	parseDurationHist, err := meter.Float64Histogram(
		"javadocgen_parse_duration_seconds",
		metric.WithDescription("Duration of tree-sitter parse operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse duration histogram: %w", err)
	}

	syntaxErrorsTotal, err := meter.Int64Counter(
		"javadocgen_parse_syntax_errors_total",
		metric.WithDescription("Total number of error nodes found in parsed sources"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create syntax errors counter: %w", err)
	}

	return &ParserMetrics{
		parseOperationsTotal:   parseOpsTotal,
		parseDurationHistogram: parseDurationHist,
		syntaxErrorsTotal:      syntaxErrorsTotal,
	}, nil
}

// RecordParseOperation records the outcome of one parse.
func (m *ParserMetrics) RecordParseOperation(
	ctx context.Context,
	language string,
	success bool,
	duration time.Duration,
	syntaxErrors int,
) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", success),
	)

	m.parseOperationsTotal.Add(ctx, 1, attrs)
	m.parseDurationHistogram.Record(ctx, duration.Seconds(), attrs)
	if syntaxErrors > 0 {
		m.syntaxErrorsTotal.Add(ctx, int64(syntaxErrors), metric.WithAttributes(attribute.String("language", language)))
	}
}
