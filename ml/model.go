// Package ml loads pre-fitted regression artifacts and runs inference on
// them. Training happens elsewhere; this package only reads.
package ml

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when a row's width differs from the
	// number of features the model was fitted on.
	ErrShapeMismatch = errors.New("feature matrix shape mismatch")
	// ErrUnsupportedModel is returned for unknown artifact types.
	ErrUnsupportedModel = errors.New("unsupported model type")
	// ErrColumnMismatch is returned when a schema's columns do not line up
	// with the model's recorded feature names.
	ErrColumnMismatch = errors.New("model columns do not match schema")
)

// Model is a fitted regressor. Implementations are immutable once loaded and
// safe for concurrent use.
type Model interface {
	// Predict returns one prediction per row.
	Predict(rows [][]float64) ([]float64, error)
	// FeatureNames returns the column labels in training order.
	FeatureNames() []string
}

func checkWidth(rows [][]float64, width int) error {
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d values, model expects %d", ErrShapeMismatch, i, len(row), width)
		}
	}
	return nil
}
