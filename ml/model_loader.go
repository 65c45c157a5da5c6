package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Artifact is the on-disk model format. FeatureNames records the columns in
// the order the model was fitted with.
type Artifact struct {
	ModelType    string       `json:"model_type"`
	FeatureNames []string     `json:"feature_names"`
	Coefficients []float64    `json:"coefficients,omitempty"`
	Intercept    float64      `json:"intercept,omitempty"`
	Nodes        []TreeNode   `json:"nodes,omitempty"`
	Trees        [][]TreeNode `json:"trees,omitempty"`
	BaseScore    float64      `json:"base_score,omitempty"`
	LearningRate *float64     `json:"learning_rate,omitempty"`
}

// LoadModel reads an artifact from disk and builds the matching model.
func LoadModel(path string) (Model, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var a Artifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	m, err := a.Build()
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return m, nil
}

// Build turns a decoded artifact into a model. An absent learning rate
// means 1.
func (a Artifact) Build() (Model, error) {
	switch a.ModelType {
	case "linear":
		return NewLinearModel(a.FeatureNames, a.Coefficients, a.Intercept)
	case "tree":
		return NewRegressionTree(a.FeatureNames, a.Nodes)
	case "forest":
		return NewForest(a.FeatureNames, a.Trees)
	case "boosted":
		rate := 1.0
		if a.LearningRate != nil {
			rate = *a.LearningRate
		}
		return NewBoosted(a.FeatureNames, a.Trees, a.BaseScore, rate)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, a.ModelType)
	}
}

// CheckColumns verifies that columns matches the model's feature names in
// count and order. Labels are compared in NFC form with surrounding spaces
// trimmed, since exporters disagree on both.
func CheckColumns(m Model, columns []string) error {
	want := m.FeatureNames()
	if len(want) != len(columns) {
		return fmt.Errorf("%w: schema maps %d columns, model was fitted on %d", ErrColumnMismatch, len(columns), len(want))
	}
	for i := range want {
		if canonical(want[i]) != canonical(columns[i]) {
			return fmt.Errorf("%w: column %d is %q in schema but %q in model", ErrColumnMismatch, i, columns[i], want[i])
		}
	}
	return nil
}

func canonical(label string) string {
	return norm.NFC.String(strings.TrimSpace(label))
}
