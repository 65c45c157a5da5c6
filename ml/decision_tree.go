package ml

import (
	"errors"
	"fmt"
)

// RegressionTree is a binary tree stored as a flat, pre-ordered node list.
// Node 0 is the root; a row goes left when x[FeatureIdx] <= Threshold.
type RegressionTree struct {
	features []string
	nodes    []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

func NewRegressionTree(featureNames []string, nodes []TreeNode) (*RegressionTree, error) {
	if len(featureNames) == 0 {
		return nil, errors.New("tree has no features")
	}
	if err := validateNodes(nodes, len(featureNames)); err != nil {
		return nil, err
	}
	return &RegressionTree{
		features: append([]string(nil), featureNames...),
		nodes:    append([]TreeNode(nil), nodes...),
	}, nil
}

func (t *RegressionTree) Predict(rows [][]float64) ([]float64, error) {
	if err := checkWidth(rows, len(t.features)); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = walk(t.nodes, row)
	}
	return out, nil
}

func (t *RegressionTree) FeatureNames() []string {
	return append([]string(nil), t.features...)
}

// walk assumes nodes passed validateNodes.
func walk(nodes []TreeNode, row []float64) float64 {
	idx := 0
	for {
		node := nodes[idx]
		if node.IsLeaf {
			return node.Value
		}
		if row[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

// validateNodes checks that every split references a real feature and that
// children always sit after their parent, so a walk always terminates.
func validateNodes(nodes []TreeNode, width int) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= width {
			return fmt.Errorf("node %d: feature index %d out of range [0,%d)", i, node.FeatureIdx, width)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(nodes) {
				return fmt.Errorf("node %d: invalid child %d", i, child)
			}
		}
	}
	return nil
}
