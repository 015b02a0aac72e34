package valueobject

import "fmt"

// ExplainMode is an immutable value object naming how a score was produced.
type ExplainMode struct {
	value     string
	threshold float64
}

var (
	// ExplainHeuristic marks scores computed from the amount formula.
	ExplainHeuristic = ExplainMode{value: "heuristic", threshold: 0.7}
	// ExplainModel marks scores computed by the loaded classifier.
	ExplainModel = ExplainMode{value: "model", threshold: 0.5}
)

// ExplainModeFromString reconstructs an ExplainMode from its string representation.
func ExplainModeFromString(s string) (ExplainMode, error) {
	switch s {
	case "heuristic":
		return ExplainHeuristic, nil
	case "model":
		return ExplainModel, nil
	default:
		return ExplainMode{}, fmt.Errorf("invalid explain mode: %q", s)
	}
}

// String returns the string representation.
func (m ExplainMode) String() string {
	return m.value
}

// Threshold returns the score above which a transaction is flagged.
func (m ExplainMode) Threshold() float64 {
	return m.threshold
}

// IsFraud applies the mode's strict threshold to score.
func (m ExplainMode) IsFraud(score float64) bool {
	return score > m.threshold
}

// IsZero returns true if the ExplainMode has not been set.
func (m ExplainMode) IsZero() bool {
	return m.value == ""
}

// Equal checks equality with another ExplainMode.
func (m ExplainMode) Equal(other ExplainMode) bool {
	return m.value == other.value
}
