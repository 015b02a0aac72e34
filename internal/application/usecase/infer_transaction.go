package usecase

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fraudshield/fraud-analyzer/internal/application/dto"
	"github.com/fraudshield/fraud-analyzer/internal/domain/event"
	"github.com/fraudshield/fraud-analyzer/internal/domain/model"
	"github.com/fraudshield/fraud-analyzer/internal/domain/port"
	"github.com/fraudshield/fraud-analyzer/internal/domain/service"
	"github.com/fraudshield/fraud-analyzer/pkg/observability"
)

const tracerName = "github.com/fraudshield/fraud-analyzer/internal/application/usecase"

// Failure reasons recorded on inference metrics.
const (
	FailureValidation = "validation"
	FailureScoring    = "scoring"
)

// InferTransaction is the use case for scoring a single transaction.
type InferTransaction struct {
	engine    *service.ScoringEngine
	publisher port.EventPublisher
	metrics   *observability.InferenceMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewInferTransaction creates a new InferTransaction use case. publisher and
// metrics may be nil.
func NewInferTransaction(
	engine *service.ScoringEngine,
	publisher port.EventPublisher,
	metrics *observability.InferenceMetrics,
	logger *slog.Logger,
) *InferTransaction {
	return &InferTransaction{
		engine:    engine,
		publisher: publisher,
		metrics:   metrics,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
}

// Execute validates the request, extracts features, and scores them.
// It returns *dto.ValidationError for a bad payload and *service.ScoringError
// when the loaded model cannot score the features.
func (uc *InferTransaction) Execute(ctx context.Context, req dto.InferRequest) (dto.InferResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "InferTransaction")
	defer span.End()

	if err := dto.Validate(&req); err != nil {
		uc.metrics.RecordFailure(ctx, FailureValidation)
		span.SetStatus(codes.Error, "invalid request")
		return dto.InferResponse{}, err
	}

	tx := req.ToTransaction()
	span.SetAttributes(attribute.String("transaction.id", tx.TransactionID))

	features := service.ExtractFeatures(tx)
	outcome, err := uc.engine.Score(tx, features)
	if err != nil {
		uc.metrics.RecordFailure(ctx, FailureScoring)
		span.RecordError(err)
		span.SetStatus(codes.Error, "scoring failed")

		var scoringErr *service.ScoringError
		if errors.As(err, &scoringErr) {
			uc.logger.ErrorContext(ctx, "model failed to score transaction",
				slog.String("transaction_id", tx.TransactionID),
				slog.String("kind", scoringErr.Kind),
				slog.Int("n_features", len(features)),
				slog.String("error", err.Error()),
			)
		}
		return dto.InferResponse{}, err
	}

	result := model.NewScoreResult(tx.TransactionID, outcome.Score, outcome.Mode)
	span.SetAttributes(
		attribute.String("score.explain", result.Explain.String()),
		attribute.Float64("score.value", result.Score),
		attribute.Bool("score.is_fraud", result.IsFraud),
	)
	uc.metrics.RecordScore(ctx, result.Explain.String(), result.IsFraud, result.Score)

	uc.logger.DebugContext(ctx, "transaction scored",
		slog.String("transaction_id", result.TransactionID),
		slog.String("explain", result.Explain.String()),
		slog.Float64("score", result.Score),
		slog.Bool("is_fraud", result.IsFraud),
	)

	if result.IsFraud {
		uc.raiseAlert(ctx, tx, result)
	}

	return dto.FromScoreResult(result), nil
}

// raiseAlert is best-effort: a failure is logged and never changes the response.
func (uc *InferTransaction) raiseAlert(ctx context.Context, tx model.Transaction, result model.ScoreResult) {
	if uc.publisher == nil {
		return
	}

	alert := event.NewFraudAlertRaised(tx.TransactionID, tx.CardID, result.Score, result.Explain.String())
	if err := uc.publisher.Publish(ctx, alert); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish fraud alert",
			slog.String("transaction_id", tx.TransactionID),
			slog.String("error", err.Error()),
		)
	}
}
