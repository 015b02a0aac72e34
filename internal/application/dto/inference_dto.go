package dto

import (
	"io"

	"github.com/fraudshield/fraud-analyzer/internal/domain/model"
)

// InferRequest is the input DTO for the InferTransaction use case. Pointer
// fields distinguish a missing or null value from a zero one.
type InferRequest struct {
	TransactionID *string        `json:"transaction_id" validate:"required"`
	Amount        *float64       `json:"amount" validate:"required"`
	CardID        *string        `json:"card_id" validate:"required"`
	Features      map[string]any `json:"features"`
}

// InferResponse is the output DTO returned after scoring.
type InferResponse struct {
	TransactionID string  `json:"transaction_id"`
	Explain       string  `json:"explain"`
	Score         float64 `json:"score"`
	IsFraud       bool    `json:"is_fraud"`
}

// DecodeInferRequest reads and validates an InferRequest.
func DecodeInferRequest(r io.Reader) (InferRequest, error) {
	var req InferRequest
	if err := DecodeJSON(r, &req); err != nil {
		return InferRequest{}, err
	}
	return req, nil
}

// ToTransaction maps a validated request to the domain model. A missing or
// null features object becomes an empty map.
func (r InferRequest) ToTransaction() model.Transaction {
	tx := model.Transaction{Features: r.Features}
	if tx.Features == nil {
		tx.Features = map[string]any{}
	}
	if r.TransactionID != nil {
		tx.TransactionID = *r.TransactionID
	}
	if r.CardID != nil {
		tx.CardID = *r.CardID
	}
	if r.Amount != nil {
		tx.Amount = *r.Amount
	}
	return tx
}

// FromScoreResult maps a domain result to the response DTO.
func FromScoreResult(r model.ScoreResult) InferResponse {
	return InferResponse{
		TransactionID: r.TransactionID,
		Score:         r.Score,
		IsFraud:       r.IsFraud,
		Explain:       r.Explain.String(),
	}
}
