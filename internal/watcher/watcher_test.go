package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	var reloads int64
	w := NewWatcher(dir, func() { atomic.AddInt64(&reloads, 1) }, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "vector.index"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 3*time.Second, func() bool { return atomic.LoadInt64(&reloads) == 1 }) {
		t.Fatalf("reloads=%d, want 1", atomic.LoadInt64(&reloads))
	}
}

func TestBurstCollapsesToOneReload(t *testing.T) {
	dir := t.TempDir()
	var reloads int64
	w := NewWatcher(dir, func() { atomic.AddInt64(&reloads, 1) }, WithDebounce(150*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for _, name := range []string{"embeddings.bin", "index_to_id.json", "vector.index"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if !waitFor(t, 3*time.Second, func() bool { return atomic.LoadInt64(&reloads) >= 1 }) {
		t.Fatal("no reload after burst")
	}
	time.Sleep(300 * time.Millisecond)
	if got := atomic.LoadInt64(&reloads); got != 1 {
		t.Errorf("reloads=%d, want 1", got)
	}
}

func TestCreatesMissingRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	w := NewWatcher(dir, func() {})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("root not created: %v", err)
	}
}

func TestStopIdempotent(t *testing.T) {
	w := NewWatcher(t.TempDir(), nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
