package ml

import (
	"errors"
	"testing"
)

// stump splits on feature 0 at 10: left 1.5, right 7.5.
func stump() []TreeNode {
	return []TreeNode{
		{FeatureIdx: 0, Threshold: 10, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: 1.5, IsLeaf: true},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: 7.5, IsLeaf: true},
	}
}

func TestRegressionTreePredict(t *testing.T) {
	tree, err := NewRegressionTree([]string{"a", "b"}, stump())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := tree.Predict([][]float64{{10, 0}, {10.1, 0}, {-3, 99}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1.5, 7.5, 1.5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestRegressionTreeRejectsBadNodes(t *testing.T) {
	tests := []struct {
		name  string
		nodes []TreeNode
	}{
		{"empty", nil},
		{"feature out of range", []TreeNode{
			{FeatureIdx: 5, LeftChild: 1, RightChild: 2},
			{IsLeaf: true}, {IsLeaf: true},
		}},
		{"child points backwards", []TreeNode{
			{FeatureIdx: 0, LeftChild: 0, RightChild: 1},
			{IsLeaf: true},
		}},
		{"child past end", []TreeNode{
			{FeatureIdx: 0, LeftChild: 1, RightChild: 7},
			{IsLeaf: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegressionTree([]string{"a"}, tt.nodes); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestShapeMismatch(t *testing.T) {
	tree, err := NewRegressionTree([]string{"a", "b"}, stump())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Predict([][]float64{{1}}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}

	lin, err := NewLinearModel([]string{"a", "b"}, []float64{1, 2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lin.Predict([][]float64{{1, 2, 3}}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestLinearModel(t *testing.T) {
	lin, err := NewLinearModel([]string{"a", "b"}, []float64{0.5, -2}, 3)
	if err != nil {
		t.Fatal(err)
	}
	got, err := lin.Predict([][]float64{{4, 1}, {0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 3 || got[1] != 3 {
		t.Fatalf("unexpected predictions %v", got)
	}
	if _, err := NewLinearModel([]string{"a"}, []float64{1, 2}, 0); err == nil {
		t.Error("expected error for coefficient count mismatch")
	}
}

func TestEnsembles(t *testing.T) {
	trees := [][]TreeNode{stump(), {{Value: 2.5, IsLeaf: true}}}

	forest, err := NewForest([]string{"a"}, trees)
	if err != nil {
		t.Fatal(err)
	}
	got, err := forest.Predict([][]float64{{0}, {20}})
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 2 || got[1] != 5 {
		t.Errorf("forest: unexpected predictions %v", got)
	}

	boosted, err := NewBoosted([]string{"a"}, trees, 0.5, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	got, err = boosted.Predict([][]float64{{0}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := got[0] - 0.9; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("boosted: expected 0.9, got %v", got[0])
	}

	if _, err := NewForest([]string{"a"}, nil); err == nil {
		t.Error("expected error for empty forest")
	}
}
