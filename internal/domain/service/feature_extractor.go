package service

import (
	"encoding/json"

	"github.com/fraudshield/fraud-analyzer/internal/domain/model"
)

// VectorKey is the features entry that carries a precomputed feature vector.
const VectorKey = "vector"

// ExtractFeatures maps a transaction to the classifier input. A well-formed
// numeric sequence under features["vector"] is used verbatim, without any
// length check; anything else falls back to [amount].
func ExtractFeatures(tx model.Transaction) model.FeatureVector {
	if raw, ok := tx.Features[VectorKey]; ok {
		if vec, ok := toVector(raw); ok {
			return vec
		}
	}
	return model.FeatureVector{tx.Amount}
}

func toVector(raw any) (model.FeatureVector, bool) {
	switch v := raw.(type) {
	case model.FeatureVector:
		return append(make(model.FeatureVector, 0, len(v)), v...), true
	case []float64:
		return append(make(model.FeatureVector, 0, len(v)), v...), true
	case []int:
		out := make(model.FeatureVector, 0, len(v))
		for _, n := range v {
			out = append(out, float64(n))
		}
		return out, true
	case []any:
		out := make(model.FeatureVector, 0, len(v))
		for _, elem := range v {
			f, ok := toFloat(elem)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	default:
		return nil, false
	}
}

// toFloat accepts the numeric types a decoded JSON payload can carry.
// Booleans are not numbers here.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
