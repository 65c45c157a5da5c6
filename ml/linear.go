package ml

import (
	"errors"
	"fmt"
)

// LinearModel computes intercept + sum(coef[i] * x[i]).
type LinearModel struct {
	features     []string
	coefficients []float64
	intercept    float64
}

// NewLinearModel builds a linear regressor. coefficients must line up with
// featureNames.
func NewLinearModel(featureNames []string, coefficients []float64, intercept float64) (*LinearModel, error) {
	if len(featureNames) == 0 {
		return nil, errors.New("linear model has no features")
	}
	if len(featureNames) != len(coefficients) {
		return nil, fmt.Errorf("linear model: %d feature names but %d coefficients", len(featureNames), len(coefficients))
	}
	return &LinearModel{
		features:     append([]string(nil), featureNames...),
		coefficients: append([]float64(nil), coefficients...),
		intercept:    intercept,
	}, nil
}

func (m *LinearModel) Predict(rows [][]float64) ([]float64, error) {
	if err := checkWidth(rows, len(m.coefficients)); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		y := m.intercept
		for j, x := range row {
			y += m.coefficients[j] * x
		}
		out[i] = y
	}
	return out, nil
}

func (m *LinearModel) FeatureNames() []string {
	return append([]string(nil), m.features...)
}
