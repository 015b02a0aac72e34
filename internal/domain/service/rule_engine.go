package service

import (
	"github.com/shopspring/decimal"

	"github.com/fraudshield/fraud-analyzer/internal/domain/valueobject"
)

// RuleInput contains the data required for rule evaluation.
type RuleInput struct {
	TransactionID string
	UserID        string
	Amount        decimal.Decimal
	RiskScore     decimal.Decimal
}

// RuleDecision is the result of rule evaluation.
type RuleDecision struct {
	TransactionID string
	Reason        string
	Action        valueobject.RuleAction
}

// Reasons attached to each rule outcome.
const (
	ReasonHighRiskScore = "High risk score"
	ReasonHighAmount    = "High transaction amount"
	ReasonAllPassed     = "All checks passed"
)

// RuleEngine is a domain service that turns a precomputed risk score and an
// amount into an action. Rules are checked in order and the first match wins.
type RuleEngine struct {
	rejectAbove decimal.Decimal
	reviewAbove decimal.Decimal
}

// NewRuleEngine creates a RuleEngine with the default thresholds:
// reject when risk_score > 0.85, review when amount > 50,000.
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{
		rejectAbove: decimal.RequireFromString("0.85"),
		reviewAbove: decimal.NewFromInt(50000),
	}
}

// Evaluate applies the rules to input.
func (r *RuleEngine) Evaluate(input RuleInput) RuleDecision {
	decision := RuleDecision{TransactionID: input.TransactionID}

	switch {
	case input.RiskScore.GreaterThan(r.rejectAbove):
		decision.Action = valueobject.ActionReject
		decision.Reason = ReasonHighRiskScore
	case input.Amount.GreaterThan(r.reviewAbove):
		decision.Action = valueobject.ActionManualReview
		decision.Reason = ReasonHighAmount
	default:
		decision.Action = valueobject.ActionApprove
		decision.Reason = ReasonAllPassed
	}

	return decision
}
