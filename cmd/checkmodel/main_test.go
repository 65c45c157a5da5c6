package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aqiserve/ml"
)

func writeModel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckMatch(t *testing.T) {
	path := writeModel(t, `{"model_type":"linear",
		"feature_names":["PT08.S2(NMHC)","PT08.S5(O3)","PT08.S4(NO2)","PT08.S1(CO)"],
		"coefficients":[0.1,0.05,-0.02,0.03],"intercept":-40}`)

	var out bytes.Buffer
	if err := check(&out, "reduced-4", path); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out.String(), "PT08_S1_CO") {
		t.Errorf("mapping not printed:\n%s", out.String())
	}
}

func TestCheckDrift(t *testing.T) {
	path := writeModel(t, `{"model_type":"linear",
		"feature_names":["PT08.S1(CO)","PT08.S2(NMHC)","PT08.S5(O3)","PT08.S4(NO2)"],
		"coefficients":[1,1,1,1]}`)

	err := check(&bytes.Buffer{}, "reduced-4", path)
	if !errors.Is(err, ml.ErrColumnMismatch) {
		t.Fatalf("expected ErrColumnMismatch, got %v", err)
	}
}
