package monitoring

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

func TestWatchArtifactReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan fsnotify.Event, 8)
	err := WatchArtifact(ctx, path, zap.NewNop(), func(ev fsnotify.Event) { events <- ev })
	if err != nil {
		t.Fatalf("WatchArtifact: %v", err)
	}

	// unrelated files in the same directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"model_type":"linear"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if filepath.Base(ev.Name) != "model.json" {
			t.Errorf("unexpected event for %s", ev.Name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change event received")
	}
}

func TestWatchArtifactMissingDir(t *testing.T) {
	err := WatchArtifact(context.Background(), filepath.Join(t.TempDir(), "nope", "model.json"), zap.NewNop(), nil)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
