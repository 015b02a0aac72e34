package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fraudshield/fraud-analyzer/internal/application/dto"
	"github.com/fraudshield/fraud-analyzer/internal/application/usecase"
	"github.com/fraudshield/fraud-analyzer/internal/domain/service"
)

// Compile-time assertion that FraudAnalyzerHandler implements FraudAnalyzerServer.
var _ FraudAnalyzerServer = (*FraudAnalyzerHandler)(nil)

// FraudAnalyzerHandler implements the gRPC FraudAnalyzerServer interface.
type FraudAnalyzerHandler struct {
	UnimplementedFraudAnalyzerServer
	infer  *usecase.InferTransaction
	rules  *usecase.EvaluateRules
	logger *slog.Logger
}

// NewFraudAnalyzerHandler creates a new gRPC handler.
func NewFraudAnalyzerHandler(
	infer *usecase.InferTransaction,
	rules *usecase.EvaluateRules,
	logger *slog.Logger,
) *FraudAnalyzerHandler {
	return &FraudAnalyzerHandler{
		infer:  infer,
		rules:  rules,
		logger: logger,
	}
}

// Infer scores one transaction.
func (h *FraudAnalyzerHandler) Infer(ctx context.Context, req *dto.InferRequest) (*dto.InferResponse, error) {
	resp, err := h.infer.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, MethodInfer, err)
	}
	return &resp, nil
}

// Evaluate applies the rule engine to a precomputed risk score.
func (h *FraudAnalyzerHandler) Evaluate(ctx context.Context, req *dto.RuleRequest) (*dto.RuleResponse, error) {
	resp, err := h.rules.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, MethodEvaluate, err)
	}
	return &resp, nil
}

func (h *FraudAnalyzerHandler) toStatus(ctx context.Context, method string, err error) error {
	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		return status.Error(codes.InvalidArgument, verr.Error())
	}

	var scoringErr *service.ScoringError
	if errors.As(err, &scoringErr) {
		return status.Error(codes.Internal, scoringErr.Error())
	}

	h.logger.ErrorContext(ctx, "gRPC call failed",
		slog.String("method", method),
		slog.String("error", err.Error()),
	)
	return status.Error(codes.Internal, err.Error())
}
