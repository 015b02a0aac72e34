package usecase

import (
	"context"
	"log/slog"

	"github.com/fraudshield/fraud-analyzer/internal/application/dto"
	"github.com/fraudshield/fraud-analyzer/internal/domain/service"
)

// EvaluateRules is the use case for turning a precomputed risk score into an action.
type EvaluateRules struct {
	rules  *service.RuleEngine
	logger *slog.Logger
}

// NewEvaluateRules creates a new EvaluateRules use case.
func NewEvaluateRules(rules *service.RuleEngine, logger *slog.Logger) *EvaluateRules {
	return &EvaluateRules{rules: rules, logger: logger}
}

// Execute validates the request and applies the rules.
func (uc *EvaluateRules) Execute(ctx context.Context, req dto.RuleRequest) (dto.RuleResponse, error) {
	if err := dto.Validate(&req); err != nil {
		return dto.RuleResponse{}, err
	}

	decision := uc.rules.Evaluate(req.ToRuleInput())

	uc.logger.DebugContext(ctx, "rules evaluated",
		slog.String("transaction_id", decision.TransactionID),
		slog.String("action", decision.Action.String()),
	)

	return dto.FromRuleDecision(decision), nil
}
