package model

import "github.com/fraudshield/fraud-analyzer/internal/domain/valueobject"

// Transaction is a single scoring request. TransactionID and CardID are
// opaque: they are echoed and logged, never interpreted.
type Transaction struct {
	Features      map[string]any
	TransactionID string
	CardID        string
	Amount        float64
}

// FeatureVector is the numeric input handed to a classifier.
type FeatureVector []float64

// ScoreResult is the response for one scored transaction.
type ScoreResult struct {
	TransactionID string
	Explain       valueobject.ExplainMode
	Score         float64
	IsFraud       bool
}

// NewScoreResult derives IsFraud from score and the mode's threshold.
func NewScoreResult(transactionID string, score float64, mode valueobject.ExplainMode) ScoreResult {
	return ScoreResult{
		TransactionID: transactionID,
		Score:         score,
		Explain:       mode,
		IsFraud:       mode.IsFraud(score),
	}
}
