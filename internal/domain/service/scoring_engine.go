package service

import (
	"fmt"
	"math"

	"github.com/fraudshield/fraud-analyzer/internal/domain/model"
	"github.com/fraudshield/fraud-analyzer/internal/domain/port"
	"github.com/fraudshield/fraud-analyzer/internal/domain/valueobject"
)

// HeuristicScale is the amount that maps to a heuristic score of 1.0.
const HeuristicScale = 10000.0

// Outcome is the raw result of scoring one transaction.
type Outcome struct {
	Mode  valueobject.ExplainMode
	Score float64
}

// ScoringError reports that the loaded classifier could not score a feature
// vector. Its message is the classifier's own description of the failure.
type ScoringError struct {
	Err  error
	Kind string
}

func (e *ScoringError) Error() string {
	return e.Err.Error()
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// ScoringEngine scores transactions against an immutable model handle.
// It is safe for concurrent use.
type ScoringEngine struct {
	handle *model.ModelHandle
}

// NewScoringEngine creates an engine bound to handle. A nil or absent handle
// selects heuristic mode.
func NewScoringEngine(handle *model.ModelHandle) *ScoringEngine {
	if handle == nil {
		handle = model.AbsentModel()
	}
	return &ScoringEngine{handle: handle}
}

// Mode reports which explain mode every Score call will use.
func (e *ScoringEngine) Mode() valueobject.ExplainMode {
	if e.handle.Present() {
		return valueobject.ExplainModel
	}
	return valueobject.ExplainHeuristic
}

// Handle returns the model handle the engine scores with.
func (e *ScoringEngine) Handle() *model.ModelHandle {
	return e.handle
}

// Score produces the fraud probability for tx. In heuristic mode features is
// ignored. In model mode a classifier failure is returned as *ScoringError and
// never replaced by the heuristic.
func (e *ScoringEngine) Score(tx model.Transaction, features model.FeatureVector) (Outcome, error) {
	if !e.handle.Present() {
		return Outcome{Score: HeuristicScore(tx.Amount), Mode: valueobject.ExplainHeuristic}, nil
	}

	score, err := invoke(e.handle.Classifier(), features)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Score: score, Mode: valueobject.ExplainModel}, nil
}

// HeuristicScore is min(1, amount/HeuristicScale).
func HeuristicScore(amount float64) float64 {
	return math.Min(1.0, amount/HeuristicScale)
}

func invoke(c port.Classifier, x model.FeatureVector) (score float64, err error) {
	kind := c.Kind()
	defer func() {
		if r := recover(); r != nil {
			err = &ScoringError{Kind: kind, Err: fmt.Errorf("%s failed: %v", kind, r)}
		}
	}()

	switch clf := c.(type) {
	case port.ProbabilisticScorer:
		proba, perr := clf.PredictProba(x)
		if perr != nil {
			return 0, &ScoringError{Kind: kind, Err: perr}
		}
		if len(proba) < 2 {
			return 0, &ScoringError{Kind: kind, Err: fmt.Errorf("%s returned %d class probabilities, expected at least 2", kind, len(proba))}
		}
		score = proba[1]
	case port.DecisionScorer:
		label, perr := clf.Predict(x)
		if perr != nil {
			return 0, &ScoringError{Kind: kind, Err: perr}
		}
		score = label
	default:
		return 0, &ScoringError{Kind: kind, Err: fmt.Errorf("%s exposes neither predict_proba nor predict", kind)}
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, &ScoringError{Kind: kind, Err: fmt.Errorf("%s produced a non-finite score: %v", kind, score)}
	}
	return score, nil
}
