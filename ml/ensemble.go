package ml

import (
	"errors"
	"fmt"
	"math"
)

// Ensemble combines several trees over the same features.
//
// Averaged ensembles (random forests) return the mean of the tree outputs.
// Boosted ensembles return base + rate * sum of the tree outputs.
type Ensemble struct {
	features []string
	trees    [][]TreeNode
	average  bool
	base     float64
	rate     float64
}

// NewForest builds an averaging ensemble.
func NewForest(featureNames []string, trees [][]TreeNode) (*Ensemble, error) {
	if err := validateTrees(featureNames, trees); err != nil {
		return nil, err
	}
	return &Ensemble{
		features: append([]string(nil), featureNames...),
		trees:    trees,
		average:  true,
	}, nil
}

// NewBoosted builds a boosted ensemble. rate must be positive.
func NewBoosted(featureNames []string, trees [][]TreeNode, base, rate float64) (*Ensemble, error) {
	if err := validateTrees(featureNames, trees); err != nil {
		return nil, err
	}
	if !(rate > 0) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("learning rate must be positive and finite, got %v", rate)
	}
	return &Ensemble{
		features: append([]string(nil), featureNames...),
		trees:    trees,
		base:     base,
		rate:     rate,
	}, nil
}

func (e *Ensemble) Predict(rows [][]float64) ([]float64, error) {
	if err := checkWidth(rows, len(e.features)); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		var sum float64
		for _, nodes := range e.trees {
			sum += walk(nodes, row)
		}
		if e.average {
			out[i] = sum / float64(len(e.trees))
		} else {
			out[i] = e.base + e.rate*sum
		}
	}
	return out, nil
}

func (e *Ensemble) FeatureNames() []string {
	return append([]string(nil), e.features...)
}

func validateTrees(featureNames []string, trees [][]TreeNode) error {
	if len(featureNames) == 0 {
		return errors.New("ensemble has no features")
	}
	if len(trees) == 0 {
		return errors.New("ensemble has no trees")
	}
	for i, nodes := range trees {
		if err := validateNodes(nodes, len(featureNames)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
