package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

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

func TestWatcherTriggersOnMatchingFile(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32
	w := New(dir, []string{".pdf", ".txt"}, true, func() { runs.Add(1) },
		WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(filepath.Join(dir, "specs.txt"), "Luminance: 1000 cd/m²"); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 2*time.Second, func() bool { return runs.Load() >= 1 }) {
		t.Fatal("onChange never fired for a matching file")
	}
}

func TestWatcherDebounceCoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32
	w := New(dir, []string{".txt"}, true, func() { runs.Add(1) },
		WithDebounce(150*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// A burst of writes inside the debounce window yields one run.
	for i := 0; i < 5; i++ {
		if err := writeFile(filepath.Join(dir, "a.txt"), "rev"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !waitFor(t, 2*time.Second, func() bool { return runs.Load() >= 1 }) {
		t.Fatal("onChange never fired")
	}
	time.Sleep(300 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want a single debounced trigger", got)
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32
	w := New(dir, []string{".pdf"}, true, func() { runs.Add(1) },
		WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(filepath.Join(dir, "notes.log"), "ignored"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("runs = %d, non-matching extension must not trigger", got)
	}
}

func TestWatcherNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32
	w := New(dir, []string{".txt"}, true, func() { runs.Add(1) },
		WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	sub := filepath.Join(dir, "vendor_b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to pick up the new directory.
	time.Sleep(100 * time.Millisecond)
	if err := writeFile(filepath.Join(sub, "offer.txt"), "Contrast 1500:1"); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 2*time.Second, func() bool { return runs.Load() >= 1 }) {
		t.Fatal("file in a new subdirectory never triggered a run")
	}
}

func TestWatcherCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "input")
	w := New(root, nil, true, func() {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root was not created: %v", err)
	}
}

func TestWatcherStopCancelsPendingTrigger(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32
	w := New(dir, []string{".txt"}, true, func() { runs.Add(1) },
		WithDebounce(200*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if err := writeFile(filepath.Join(dir, "a.txt"), "x"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	w.Stop()
	time.Sleep(400 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("runs = %d, pending trigger should be cancelled by Stop", got)
	}
}
