package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreRecordRecent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	records := []PredictionRecord{
		{RequestID: "a", Schema: "reduced-4@v1", Features: map[string]float64{"PT08_S1_CO": 1046}, Raw: -5, Predicted: 0, CreatedAt: base},
		{RequestID: "b", Schema: "reduced-4@v1", Features: map[string]float64{"PT08_S1_CO": 1200}, Raw: 42.5, Predicted: 42.5, CreatedAt: base.Add(time.Minute)},
	}
	for _, rec := range records {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].RequestID != "b" || got[1].RequestID != "a" {
		t.Errorf("expected newest first, got %s, %s", got[0].RequestID, got[1].RequestID)
	}
	if got[1].Raw != -5 || got[1].Predicted != 0 {
		t.Errorf("unexpected values %+v", got[1])
	}
	if got[0].Features["PT08_S1_CO"] != 1200 {
		t.Errorf("features not round-tripped: %v", got[0].Features)
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 record, got %d", len(limited))
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
