package ml

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/fraudshield/fraud-analyzer/internal/domain/port"
)

// Artifact kinds.
const (
	KindLogisticRegression = "logistic_regression"
	KindRandomForest       = "random_forest"
	KindLinearSVC          = "linear_svc"
)

// LinearParams are the parameters shared by the linear kinds.
type LinearParams struct {
	Coef      []float64 `json:"coef" yaml:"coef"`
	Intercept float64   `json:"intercept" yaml:"intercept"`
}

func decodeLinear(nFeatures int, raw json.RawMessage) (LinearParams, error) {
	var p LinearParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse params: %w", err)
	}
	if len(p.Coef) != nFeatures {
		return p, fmt.Errorf("coef has %d entries, n_features is %d", len(p.Coef), nFeatures)
	}
	for i, w := range p.Coef {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return p, fmt.Errorf("coef[%d] is not finite", i)
		}
	}
	if math.IsNaN(p.Intercept) || math.IsInf(p.Intercept, 0) {
		return p, fmt.Errorf("intercept is not finite")
	}
	return p, nil
}

// LogisticRegression scores with sigmoid(w·x + b).
type LogisticRegression struct {
	params LinearParams
}

func decodeLogistic(nFeatures int, raw json.RawMessage) (port.Classifier, error) {
	p, err := decodeLinear(nFeatures, raw)
	if err != nil {
		return nil, err
	}
	return &LogisticRegression{params: p}, nil
}

func (m *LogisticRegression) Kind() string     { return KindLogisticRegression }
func (m *LogisticRegression) NumFeatures() int { return len(m.params.Coef) }

// PredictProba returns [P(legit), P(fraud)].
func (m *LogisticRegression) PredictProba(x []float64) ([]float64, error) {
	if err := checkShape(KindLogisticRegression, len(m.params.Coef), x); err != nil {
		return nil, err
	}
	p := sigmoid(dot(m.params.Coef, x) + m.params.Intercept)
	return []float64{1 - p, p}, nil
}

// LinearSVC only yields hard labels.
type LinearSVC struct {
	params LinearParams
}

func decodeLinearSVC(nFeatures int, raw json.RawMessage) (port.Classifier, error) {
	p, err := decodeLinear(nFeatures, raw)
	if err != nil {
		return nil, err
	}
	return &LinearSVC{params: p}, nil
}

func (m *LinearSVC) Kind() string     { return KindLinearSVC }
func (m *LinearSVC) NumFeatures() int { return len(m.params.Coef) }

// Predict returns 1 when w·x + b > 0, else 0.
func (m *LinearSVC) Predict(x []float64) (float64, error) {
	if err := checkShape(KindLinearSVC, len(m.params.Coef), x); err != nil {
		return 0, err
	}
	if dot(m.params.Coef, x)+m.params.Intercept > 0 {
		return 1, nil
	}
	return 0, nil
}

func sigmoid(z float64) float64 {
	// split keeps exp from overflowing for large |z|
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
