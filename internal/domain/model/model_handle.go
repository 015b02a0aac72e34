package model

import (
	"time"

	"github.com/fraudshield/fraud-analyzer/internal/domain/port"
)

// Capability names recorded in ArtifactInfo.
const (
	CapabilityProbability = "predict_proba"
	CapabilityDecision    = "predict"
)

// ArtifactInfo describes where a loaded classifier came from.
type ArtifactInfo struct {
	LoadedAt    time.Time
	Metadata    map[string]string
	Source      string
	Kind        string
	Format      string
	Capability  string
	NumFeatures int
}

// ModelHandle is either a loaded classifier or the absent marker. It is built
// once at startup and never mutated afterwards.
type ModelHandle struct {
	classifier port.Classifier
	info       ArtifactInfo
}

// AbsentModel returns the handle used when no artifact could be loaded.
func AbsentModel() *ModelHandle {
	return &ModelHandle{}
}

// NewModelHandle wraps a loaded classifier. A nil classifier yields an absent handle.
func NewModelHandle(c port.Classifier, info ArtifactInfo) *ModelHandle {
	if c == nil {
		return AbsentModel()
	}
	if info.Kind == "" {
		info.Kind = c.Kind()
	}
	if info.NumFeatures == 0 {
		info.NumFeatures = c.NumFeatures()
	}
	if info.Capability == "" {
		info.Capability = CapabilityOf(c)
	}
	return &ModelHandle{classifier: c, info: info}
}

// CapabilityOf reports the scoring capability the engine will use for c,
// or "" when c exposes neither.
func CapabilityOf(c port.Classifier) string {
	switch c.(type) {
	case port.ProbabilisticScorer:
		return CapabilityProbability
	case port.DecisionScorer:
		return CapabilityDecision
	default:
		return ""
	}
}

// Present reports whether a classifier is loaded. Safe on a nil handle.
func (h *ModelHandle) Present() bool {
	return h != nil && h.classifier != nil
}

// Classifier returns the loaded classifier, or nil when absent.
func (h *ModelHandle) Classifier() port.Classifier {
	if h == nil {
		return nil
	}
	return h.classifier
}

// Info returns the artifact description. It is zero when absent.
func (h *ModelHandle) Info() ArtifactInfo {
	if h == nil {
		return ArtifactInfo{}
	}
	return h.info
}
