package dto

import (
	"io"

	"github.com/shopspring/decimal"

	"github.com/fraudshield/fraud-analyzer/internal/domain/service"
)

// RuleRequest is the input DTO for the EvaluateRules use case.
type RuleRequest struct {
	TransactionID *string  `json:"transaction_id" validate:"required"`
	UserID        *string  `json:"user_id" validate:"required"`
	Amount        *float64 `json:"amount" validate:"required"`
	RiskScore     *float64 `json:"risk_score" validate:"required"`
}

// RuleResponse is the output DTO returned after rule evaluation.
type RuleResponse struct {
	TransactionID string `json:"transaction_id"`
	Action        string `json:"action"`
	Reason        string `json:"reason"`
}

// DecodeRuleRequest reads and validates a RuleRequest.
func DecodeRuleRequest(r io.Reader) (RuleRequest, error) {
	var req RuleRequest
	if err := DecodeJSON(r, &req); err != nil {
		return RuleRequest{}, err
	}
	return req, nil
}

// ToRuleInput maps a validated request to the domain service input.
func (r RuleRequest) ToRuleInput() service.RuleInput {
	var in service.RuleInput
	if r.TransactionID != nil {
		in.TransactionID = *r.TransactionID
	}
	if r.UserID != nil {
		in.UserID = *r.UserID
	}
	if r.Amount != nil {
		in.Amount = decimal.NewFromFloat(*r.Amount)
	}
	if r.RiskScore != nil {
		in.RiskScore = decimal.NewFromFloat(*r.RiskScore)
	}
	return in
}

// FromRuleDecision maps a domain decision to the response DTO.
func FromRuleDecision(d service.RuleDecision) RuleResponse {
	return RuleResponse{
		TransactionID: d.TransactionID,
		Action:        d.Action.String(),
		Reason:        d.Reason,
	}
}
