package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/fraudshield/fraud-analyzer/internal/domain/port"
)

const leaf = -1

// TreeNode is one node of a decision tree. Leaves have Left == Right == -1 and
// carry per-class sample weights in Value.
type TreeNode struct {
	Value     []float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Feature   int       `json:"feature" yaml:"feature"`
	Threshold float64   `json:"threshold" yaml:"threshold"`
	Left      int       `json:"left" yaml:"left"`
	Right     int       `json:"right" yaml:"right"`
}

// Tree is a flat array of nodes rooted at index 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes" yaml:"nodes"`
}

// ForestParams are the parameters of a random_forest artifact.
type ForestParams struct {
	Trees []Tree `json:"trees" yaml:"trees"`
}

// RandomForest averages the normalized leaf distributions of its trees.
type RandomForest struct {
	trees     []Tree
	nFeatures int
	nClasses  int
}

func decodeForest(nFeatures int, raw json.RawMessage) (port.Classifier, error) {
	var p ForestParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}
	if len(p.Trees) == 0 {
		return nil, errors.New("forest has no trees")
	}

	nClasses := 0
	for ti, tree := range p.Trees {
		n, err := validateTree(tree, nFeatures)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti, err)
		}
		if nClasses == 0 {
			nClasses = n
		} else if n != nClasses {
			return nil, fmt.Errorf("tree %d: leaves have %d classes, earlier trees have %d", ti, n, nClasses)
		}
	}

	return &RandomForest{trees: p.Trees, nFeatures: nFeatures, nClasses: nClasses}, nil
}

// validateTree checks that every split references a valid feature and that
// children always follow their parent, so traversal terminates. It returns
// the number of classes the leaves carry.
func validateTree(t Tree, nFeatures int) (int, error) {
	if len(t.Nodes) == 0 {
		return 0, errors.New("tree has no nodes")
	}

	nClasses := 0
	for i, n := range t.Nodes {
		if n.Left == leaf && n.Right == leaf {
			if len(n.Value) < 2 {
				return 0, fmt.Errorf("leaf %d has %d class weights, need at least 2", i, len(n.Value))
			}
			if nClasses != 0 && len(n.Value) != nClasses {
				return 0, fmt.Errorf("leaf %d has %d class weights, other leaves have %d", i, len(n.Value), nClasses)
			}
			nClasses = len(n.Value)

			var total float64
			for _, v := range n.Value {
				if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
					return 0, fmt.Errorf("leaf %d has an invalid class weight %v", i, v)
				}
				total += v
			}
			if total == 0 {
				return 0, fmt.Errorf("leaf %d has no weight", i)
			}
			continue
		}

		if n.Feature < 0 || n.Feature >= nFeatures {
			return 0, fmt.Errorf("node %d splits on feature %d, n_features is %d", i, n.Feature, nFeatures)
		}
		if math.IsNaN(n.Threshold) {
			return 0, fmt.Errorf("node %d has a NaN threshold", i)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return 0, fmt.Errorf("node %d has invalid child %d", i, child)
			}
		}
	}

	if nClasses == 0 {
		return 0, errors.New("tree has no leaves")
	}
	return nClasses, nil
}

func (m *RandomForest) Kind() string     { return KindRandomForest }
func (m *RandomForest) NumFeatures() int { return m.nFeatures }

// PredictProba returns the mean class distribution over all trees.
func (m *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if err := checkShape(KindRandomForest, m.nFeatures, x); err != nil {
		return nil, err
	}

	proba := make([]float64, m.nClasses)
	for _, tree := range m.trees {
		value := tree.leafFor(x)
		var total float64
		for _, v := range value {
			total += v
		}
		for c, v := range value {
			proba[c] += v / total
		}
	}

	for c := range proba {
		proba[c] /= float64(len(m.trees))
	}
	return proba, nil
}

func (t Tree) leafFor(x []float64) []float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left == leaf && n.Right == leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
