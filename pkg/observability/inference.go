package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InferenceMetrics records scoring outcomes. A nil *InferenceMetrics is valid
// and records nothing.
type InferenceMetrics struct {
	inferences metric.Int64Counter
	failures   metric.Int64Counter
	scores     metric.Float64Histogram
}

// NewInferenceMetrics creates the inference instruments on meter.
func NewInferenceMetrics(meter metric.Meter) (*InferenceMetrics, error) {
	inferences, err := meter.Int64Counter("fraud.inferences",
		metric.WithDescription("Transactions scored, by explain mode and decision."),
	)
	if err != nil {
		return nil, fmt.Errorf("create fraud.inferences counter: %w", err)
	}

	failures, err := meter.Int64Counter("fraud.inference.failures",
		metric.WithDescription("Inference requests that did not produce a score, by reason."),
	)
	if err != nil {
		return nil, fmt.Errorf("create fraud.inference.failures counter: %w", err)
	}

	scores, err := meter.Float64Histogram("fraud.score",
		metric.WithDescription("Distribution of produced fraud scores."),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0),
	)
	if err != nil {
		return nil, fmt.Errorf("create fraud.score histogram: %w", err)
	}

	return &InferenceMetrics{
		inferences: inferences,
		failures:   failures,
		scores:     scores,
	}, nil
}

// RecordScore counts one successful inference.
func (m *InferenceMetrics) RecordScore(ctx context.Context, explain string, isFraud bool, score float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("explain", explain),
		attribute.Bool("is_fraud", isFraud),
	)
	m.inferences.Add(ctx, 1, attrs)
	m.scores.Record(ctx, score, metric.WithAttributes(attribute.String("explain", explain)))
}

// RecordFailure counts one inference that ended in an error response.
func (m *InferenceMetrics) RecordFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
