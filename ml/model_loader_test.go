package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeArtifact(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadModel(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{
			name: "linear",
			body: `{"model_type":"linear","feature_names":["x","y"],"coefficients":[2,1],"intercept":-1}`,
			want: 2*3 + 4 - 1,
		},
		{
			name: "tree",
			body: `{"model_type":"tree","feature_names":["x","y"],"nodes":[
				{"feature_idx":1,"threshold":5,"left_child":1,"right_child":2},
				{"is_leaf":true,"value":11},
				{"is_leaf":true,"value":22}]}`,
			want: 11,
		},
		{
			name: "boosted",
			body: `{"model_type":"boosted","feature_names":["x","y"],"base_score":1,"learning_rate":0.5,
				"trees":[[{"is_leaf":true,"value":4}],[{"is_leaf":true,"value":2}]]}`,
			want: 4,
		},
		{
			name: "boosted default rate",
			body: `{"model_type":"boosted","feature_names":["x","y"],"base_score":1,
				"trees":[[{"is_leaf":true,"value":4}],[{"is_leaf":true,"value":2}]]}`,
			want: 7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := LoadModel(writeArtifact(t, tt.body))
			if err != nil {
				t.Fatalf("LoadModel: %v", err)
			}
			got, err := m.Predict([][]float64{{3, 4}})
			if err != nil {
				t.Fatal(err)
			}
			if got[0] != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got[0])
			}
		})
	}
}

func TestLoadModelErrors(t *testing.T) {
	if _, err := LoadModel(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadModel(writeArtifact(t, `{not json`)); err == nil {
		t.Error("expected error for malformed artifact")
	}
	_, err := LoadModel(writeArtifact(t, `{"model_type":"svm","feature_names":["x"]}`))
	if !errors.Is(err, ErrUnsupportedModel) {
		t.Errorf("expected ErrUnsupportedModel, got %v", err)
	}
	zeroRate := `{"model_type":"boosted","feature_names":["x"],"learning_rate":0,"trees":[[{"is_leaf":true,"value":4}]]}`
	if _, err := LoadModel(writeArtifact(t, zeroRate)); err == nil {
		t.Error("expected error for zero learning rate")
	}
}

func TestCheckColumns(t *testing.T) {
	m, err := NewLinearModel([]string{"PT08.S1(CO)", "Caf\u00e9"}, []float64{1, 1}, 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := CheckColumns(m, []string{"PT08.S1(CO)", "Cafe\u0301 "}); err != nil {
		t.Errorf("equivalent labels should match: %v", err)
	}
	if err := CheckColumns(m, []string{"Caf\u00e9", "PT08.S1(CO)"}); !errors.Is(err, ErrColumnMismatch) {
		t.Errorf("transposed columns should fail, got %v", err)
	}
	if err := CheckColumns(m, []string{"PT08.S1(CO)"}); !errors.Is(err, ErrColumnMismatch) {
		t.Errorf("short column list should fail, got %v", err)
	}
}
