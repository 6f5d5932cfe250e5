package reload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_DetectsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chatlist.yaml")
	if err := os.WriteFile(path, []byte("initial"), 0o644); err != nil {
		t.Fatalf("writing initial file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := NewWatcher(20*time.Millisecond, path).Watch(ctx)

	if err := os.WriteFile(path, []byte("modified content"), 0o644); err != nil {
		t.Fatalf("writing modified file: %v", err)
	}

	select {
	case evt := <-events:
		if evt.Path != path {
			t.Errorf("got path %q, want %q", evt.Path, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for file change event")
	}
}

func TestWatcher_DetectsCreatedFile(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "chatlist.yaml")
	dotenv := filepath.Join(dir, ".env")
	if err := os.WriteFile(config, []byte("version: \"1\""), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := NewWatcher(20*time.Millisecond, config, dotenv).Watch(ctx)

	if err := os.WriteFile(dotenv, []byte("A=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case evt := <-events:
		if evt.Path != dotenv {
			t.Errorf("got path %q, want %q", evt.Path, dotenv)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for .env creation event")
	}
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events := NewWatcher(10*time.Millisecond, filepath.Join(t.TempDir(), "x.yaml")).Watch(ctx)
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected no event before close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatcher_MissingFileQuiet(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	events := NewWatcher(10*time.Millisecond, filepath.Join(t.TempDir(), "absent.yaml")).Watch(ctx)

	for evt := range events {
		t.Fatalf("unexpected event for missing file: %+v", evt)
	}
}

func TestNewWatcher_DefaultInterval(t *testing.T) {
	if w := NewWatcher(0); w.interval != defaultPollInterval {
		t.Errorf("interval = %v, want %v", w.interval, defaultPollInterval)
	}
}
