package port

// Classifier is a deserialized model artifact. Every classifier exposes at
// least one of ProbabilisticScorer or DecisionScorer.
type Classifier interface {
	// Kind names the artifact family, e.g. "logistic_regression".
	Kind() string
	// NumFeatures is the input width the classifier was fitted on.
	NumFeatures() int
}

// ProbabilisticScorer returns a class probability distribution for one sample.
type ProbabilisticScorer interface {
	Classifier
	PredictProba(x []float64) ([]float64, error)
}

// DecisionScorer returns a hard class label for one sample.
type DecisionScorer interface {
	Classifier
	Predict(x []float64) (float64, error)
}
